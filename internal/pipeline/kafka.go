package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"vitae/internal/platform/config"
)

const commitTimeout = 5 * time.Second

// KafkaSource consumes upload jobs from a topic as part of a consumer group.
// Offsets are committed only after the jobs they cover have finished, so a
// job interrupted by shutdown is delivered again.
type KafkaSource struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

// NewKafkaSource connects a group consumer for cfg.Topic.
func NewKafkaSource(cfg config.KafkaConfig, logger *slog.Logger, opts ...kgo.Opt) (*KafkaSource, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("kafka source: no brokers configured")
	}
	base := []kgo.Opt{
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ConsumerGroup(cfg.Group),
		kgo.ConsumeTopics(cfg.Topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
		kgo.DisableAutoCommit(),
	}
	client, err := kgo.NewClient(append(base, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("kafka source: %w", err)
	}
	return &KafkaSource{client: client, topic: cfg.Topic, logger: logger}, nil
}

// EnsureTopic creates the job topic when it does not exist yet.
func (k *KafkaSource) EnsureTopic(ctx context.Context, partitions int32, replication int16) error {
	adm := kadm.NewClient(k.client)
	_, err := adm.CreateTopic(ctx, partitions, replication, nil, k.topic)
	if err != nil && !errors.Is(err, kerr.TopicAlreadyExists) {
		return fmt.Errorf("create topic %s: %w", k.topic, err)
	}
	return nil
}

// Run polls the topic and forwards decoded jobs to out until ctx is done.
// Each poll is handed out as one batch; once its jobs finish, the processed
// prefix of every partition is committed. Malformed messages are logged,
// skipped and committed.
func (k *KafkaSource) Run(ctx context.Context, out chan<- Job) error {
	for {
		fetches := k.client.PollFetches(ctx)
		if fetches.IsClientClosed() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		fetches.EachError(func(topic string, partition int32, err error) {
			k.logger.WarnContext(ctx, "kafka fetch error", "topic", topic, "partition", partition, "error", err)
		})

		records := fetches.Records()
		if len(records) == 0 {
			continue
		}
		processed := k.dispatch(ctx, records, out)
		k.commit(ctx, committable(records, processed))
		if err := ctx.Err(); err != nil {
			return err
		}
	}
}

type finished struct {
	index     int
	processed bool
}

// dispatch sends the batch to out and waits until its jobs finish or ctx is
// done. The result marks which records may be committed.
func (k *KafkaSource) dispatch(ctx context.Context, records []*kgo.Record, out chan<- Job) []bool {
	processed := make([]bool, len(records))
	results := make(chan finished, len(records))

	pending := 0
send:
	for i, rec := range records {
		job, err := DecodeJob(rec.Value)
		if err != nil {
			k.logger.WarnContext(ctx, "skipping malformed job",
				"topic", rec.Topic,
				"partition", rec.Partition,
				"offset", rec.Offset,
				"error", err,
			)
			processed[i] = true
			continue
		}
		job.done = func(ok bool) { results <- finished{index: i, processed: ok} }
		select {
		case out <- job:
			pending++
		case <-ctx.Done():
			break send
		}
	}

	for ; pending > 0; pending-- {
		select {
		case r := <-results:
			processed[r.index] = r.processed
		case <-ctx.Done():
			return processed
		}
	}
	return processed
}

func (k *KafkaSource) commit(ctx context.Context, records []*kgo.Record) {
	if len(records) == 0 {
		return
	}
	commitCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), commitTimeout)
	defer cancel()
	if err := k.client.CommitRecords(commitCtx, records...); err != nil {
		k.logger.WarnContext(ctx, "kafka commit failed", "records", len(records), "error", err)
	}
}

// committable returns, per partition, the records up to the first one that
// was not processed. records must be in fetch order.
func committable(records []*kgo.Record, processed []bool) []*kgo.Record {
	type tp struct {
		topic     string
		partition int32
	}
	blocked := make(map[tp]bool)
	var out []*kgo.Record
	for i, rec := range records {
		key := tp{rec.Topic, rec.Partition}
		if blocked[key] {
			continue
		}
		if !processed[i] {
			blocked[key] = true
			continue
		}
		out = append(out, rec)
	}
	return out
}

// Close leaves the consumer group and closes the client.
func (k *KafkaSource) Close() {
	k.client.Close()
}
