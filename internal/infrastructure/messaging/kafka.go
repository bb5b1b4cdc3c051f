package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"staffing-hub/internal/config"
	"staffing-hub/internal/event"

	"github.com/IBM/sarama"
	"github.com/rs/zerolog"
)

// KafkaPublisher writes staffing events to a single topic, keyed by the
// event's aggregate key.
type KafkaPublisher struct {
	sp     sarama.SyncProducer
	topic  string
	source string
	log    zerolog.Logger
}

func NewKafkaPublisher(sp sarama.SyncProducer, topic, source string, logger zerolog.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		sp:     sp,
		topic:  topic,
		source: source,
		log:    logger.With().Str("component", "KafkaPublisher").Logger(),
	}
}

// DialKafka builds an idempotent sync producer from cfg.
func DialKafka(cfg config.KafkaConfig, logger zerolog.Logger) (*KafkaPublisher, error) {
	sCfg := sarama.NewConfig()
	sCfg.ClientID = cfg.ClientID
	sCfg.Version = sarama.V3_3_2_0
	sCfg.Producer.Return.Successes = true
	sCfg.Producer.RequiredAcks = sarama.WaitForAll
	sCfg.Producer.Idempotent = true
	sCfg.Net.MaxOpenRequests = 1
	sCfg.Producer.Retry.Max = 5
	sCfg.Producer.Retry.Backoff = 200 * time.Millisecond

	sp, err := sarama.NewSyncProducer(cfg.Brokers, sCfg)
	if err != nil {
		return nil, err
	}
	return NewKafkaPublisher(sp, cfg.Topic, cfg.ClientID, logger), nil
}

func (p *KafkaPublisher) Close() error {
	if p == nil || p.sp == nil {
		return nil
	}
	return p.sp.Close()
}

type envelope struct {
	event.Event
	Source string `json:"source"`
}

func (p *KafkaPublisher) Publish(_ context.Context, evt event.Event) error {
	if p == nil || p.sp == nil {
		return errors.New("sync producer is not initialized")
	}

	body, err := json.Marshal(envelope{Event: evt, Source: p.source})
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", evt.Kind, err)
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(evt.Key),
		Value: sarama.ByteEncoder(body),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event-kind"), Value: []byte(evt.Kind)},
			{Key: []byte("message-id"), Value: []byte(evt.MessageID.String())},
			{Key: []byte("source"), Value: []byte(p.source)},
			{Key: []byte("content-type"), Value: []byte("application/json")},
		},
	}

	part, off, err := p.sp.SendMessage(msg)
	if err != nil {
		p.log.Error().
			Err(err).
			Str("topic", p.topic).
			Str("kind", string(evt.Kind)).
			Str("key", evt.Key).
			Msg("failed to send kafka message")
		return fmt.Errorf("send kafka message: %w", err)
	}

	p.log.Debug().
		Str("topic", p.topic).
		Str("kind", string(evt.Kind)).
		Int32("partition", part).
		Int64("offset", off).
		Int("bytes", len(body)).
		Msg("kafka message sent")
	return nil
}
