package server

import (
	"context"
	stderrors "errors"
	"log/slog"

	"github.com/vango-dev/choicegroup/internal/config"
	"github.com/vango-dev/choicegroup/internal/errors"
	"github.com/vango-dev/choicegroup/pkg/dispatch"
	"github.com/vango-dev/choicegroup/pkg/submit"
)

// NamedDispatcher is a dispatcher with the label used in metrics.
type NamedDispatcher struct {
	Name       string
	Dispatcher dispatch.Dispatcher
}

// Resources are the external connections opened from configuration.
type Resources struct {
	Dispatchers []NamedDispatcher
	Sink        submit.Multi

	closers []func() error
}

// Open dials the brokers and opens the sinks named in cfg. On error
// everything opened so far is closed again. Errors are E204.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Resources, error) {
	if logger == nil {
		logger = slog.Default()
	}
	res := &Resources{}
	fail := func(err error, hint string) (*Resources, error) {
		res.Close()
		return nil, errors.New("E204").Wrap(err).WithSuggestion(hint)
	}

	if rc := cfg.Dispatch.Redis; rc != nil {
		client, err := dispatch.DialRedis(ctx, rc.URL)
		if err != nil {
			return fail(err, "check dispatch.redis.url")
		}
		res.closers = append(res.closers, client.Close)
		res.Dispatchers = append(res.Dispatchers, NamedDispatcher{"redis", dispatch.NewRedis(client, rc.Channel)})
		logger.Info("dispatching to redis", "channel", rc.Channel)
	}

	if kc := cfg.Dispatch.Kafka; kc != nil {
		client, err := dispatch.DialKafka(kc.Brokers, kc.Topic)
		if err != nil {
			return fail(err, "check dispatch.kafka.brokers")
		}
		res.closers = append(res.closers, func() error {
			client.Close()
			return nil
		})
		if kc.CreateTopic {
			if err := dispatch.EnsureTopic(ctx, client, kc.Topic); err != nil {
				return fail(err, "create the topic by hand or disable dispatch.kafka.createTopic")
			}
		}
		res.Dispatchers = append(res.Dispatchers, NamedDispatcher{"kafka", dispatch.NewKafka(client, kc.Topic)})
		logger.Info("dispatching to kafka", "topic", kc.Topic, "brokers", kc.Brokers)
	}

	sc := cfg.Submit
	if sc.Dir != "" {
		sink, err := submit.NewDiskSink(sc.Dir)
		if err != nil {
			return fail(err, "check submit.dir")
		}
		res.Sink = append(res.Sink, sink)
		logger.Info("saving submissions to disk", "dir", sc.Dir)
	}

	if s3c := sc.S3; s3c != nil {
		client := submit.NewS3Client(submit.S3ClientConfig{
			Region:          s3c.Region,
			Endpoint:        s3c.Endpoint,
			PathStyle:       s3c.PathStyle,
			AccessKeyID:     s3c.AccessKeyID,
			SecretAccessKey: s3c.SecretAccessKey,
		})
		res.Sink = append(res.Sink, submit.NewS3Sink(client, s3c.Bucket, s3c.Prefix))
		logger.Info("saving submissions to s3", "bucket", s3c.Bucket, "prefix", s3c.Prefix)
	}

	if qc := sc.SQL; qc != nil {
		var opts []submit.SQLOption
		if qc.Table != "" {
			opts = append(opts, submit.WithTable(qc.Table))
		}
		sink, err := submit.OpenSQL(submit.Dialect(qc.Driver), qc.DSN, opts...)
		if err != nil {
			return fail(err, "check submit.sql")
		}
		res.closers = append(res.closers, sink.Close)
		if err := sink.Migrate(ctx); err != nil {
			return fail(err, "the database user needs CREATE TABLE rights")
		}
		res.Sink = append(res.Sink, sink)
		logger.Info("saving submissions to sql", "driver", qc.Driver)
	}

	return res, nil
}

// Close releases every connection in reverse order of opening.
func (r *Resources) Close() error {
	if r == nil {
		return nil
	}
	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	r.closers = nil
	return stderrors.Join(errs...)
}
