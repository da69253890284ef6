// Package dispatch delivers choice group changes to the outside world.
//
// A Bridge subscribes to groups and turns every choice.Change into an
// Envelope, which it hands to a Dispatcher. Dispatchers are small and
// composable:
//
//   - Hub streams envelopes to WebSocket clients, optionally filtered by group.
//   - Redis publishes envelopes on a pub/sub channel.
//   - Kafka produces envelopes to a topic, keyed by group name.
//   - Multi fans out to several dispatchers.
//   - Metrics.Instrument wraps any dispatcher with Prometheus counters,
//     a latency histogram and an OpenTelemetry span.
//
// Wiring a radio group to Redis and a WebSocket hub:
//
//	hub := dispatch.NewHub()
//	pub := dispatch.NewRedis(redisClient, "choicegroup.changes")
//	bridge := dispatch.NewBridge(dispatch.Multi{hub, pub})
//	defer bridge.Attach(group)()
package dispatch
