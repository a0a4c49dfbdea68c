package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	kafkaGo "github.com/segmentio/kafka-go"
)

const (
	TopicOrderPlaced        = "orders.placed"
	TopicOrderStatusChanged = "orders.status_changed"
	TopicAdminAudit         = "admin.audit"
)

// EventPublisher diffuse les événements métier.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic, key string, event any) error
	Close() error
}

type KafkaPublisher struct {
	writer *kafkaGo.Writer
}

func NewKafkaPublisher(brokers []string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafkaGo.Writer{
			Addr:                   kafkaGo.TCP(brokers...),
			Balancer:               &kafkaGo.LeastBytes{},
			AllowAutoTopicCreation: true,
			WriteTimeout:           10 * time.Second,
		},
	}
}

func (p *KafkaPublisher) PublishEvent(ctx context.Context, topic, key string, event any) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encodage événement: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafkaGo.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: value,
		Time:  time.Now(),
	})
	if err != nil {
		return fmt.Errorf("publication %s: %w", topic, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// LogPublisher journalise les événements quand aucun broker n'est configuré.
type LogPublisher struct{}

func (LogPublisher) PublishEvent(_ context.Context, topic, key string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encodage événement: %w", err)
	}
	log.Printf("📣 [%s] %s %s", topic, key, data)
	return nil
}

func (LogPublisher) Close() error { return nil }
