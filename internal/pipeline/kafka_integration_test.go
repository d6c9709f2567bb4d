//go:build integration

package pipeline_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kgo"

	"vitae/internal/pipeline"
	"vitae/internal/platform/config"
	"vitae/internal/platform/logger"
	id "vitae/pkg/domain"
	"vitae/pkg/testutil/containers"
)

type KafkaSourceSuite struct {
	suite.Suite
	kafka *containers.KafkaContainer
}

func TestKafkaSourceSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(KafkaSourceSuite))
}

func (s *KafkaSourceSuite) SetupSuite() {
	s.kafka = containers.GetManager().GetKafka(s.T())
}

func (s *KafkaSourceSuite) TestConsumesJobs() {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	cfg := config.KafkaConfig{Brokers: s.kafka.Brokers, Topic: "cv-uploads-test", Group: "vitae-test"}
	source, err := pipeline.NewKafkaSource(cfg, logger.New("debug"))
	s.Require().NoError(err)
	defer source.Close()

	s.Require().NoError(source.EnsureTopic(ctx, 1, 1))
	s.Require().NoError(source.EnsureTopic(ctx, 1, 1), "creating an existing topic is not an error")

	producer, err := kgo.NewClient(kgo.SeedBrokers(s.kafka.Brokers...))
	s.Require().NoError(err)
	defer producer.Close()

	uploader := id.PersonID(5)
	payload, err := pipeline.Job{DocumentID: 42, UploadedBy: &uploader}.Encode()
	s.Require().NoError(err)
	results := producer.ProduceSync(ctx,
		&kgo.Record{Topic: cfg.Topic, Value: []byte("garbage")},
		&kgo.Record{Topic: cfg.Topic, Value: payload},
	)
	s.Require().NoError(results.FirstErr())

	jobs := make(chan pipeline.Job, 1)
	runCtx, stop := context.WithCancel(ctx)
	defer stop()
	go func() { _ = source.Run(runCtx, jobs) }()

	select {
	case job := <-jobs:
		job.Finish(true)
		s.Equal(id.DocumentID(42), job.DocumentID)
		s.Require().NotNil(job.UploadedBy)
		s.Equal(uploader, *job.UploadedBy)
	case <-ctx.Done():
		s.Fail("no job consumed")
	}
}
