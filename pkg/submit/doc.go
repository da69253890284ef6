// Package submit stores form submissions.
//
// Every sink implements form.Sink and can load a submission back by id:
//
//   - DiskSink writes one JSON file per submission into a directory.
//   - S3Sink puts one JSON object per submission into a bucket.
//   - SQLSink inserts rows into a table on Postgres (lib/pq or pgx) or SQLite.
//
// Loaded submissions carry their values as decoded JSON: a checked
// single-select field comes back as map[string]any{"value": ..., "checked": true}.
package submit
