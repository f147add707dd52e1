package infra

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
)

// Evento is the envelope published for every domain change.
type Evento struct {
	Tipo     string      `json:"tipo"`
	Chave    string      `json:"chave"`
	Ocorrido time.Time   `json:"ocorrido_em"`
	Dados    interface{} `json:"dados"`
}

// KafkaPublisher writes domain events to a single topic, keyed by aggregate id.
type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		MaxAttempts:  3,
		WriteTimeout: 10 * time.Second,
		ReadTimeout:  10 * time.Second,
	}
	return &KafkaPublisher{writer: writer}
}

// Publicar serializes the event and writes it synchronously.
func (p *KafkaPublisher) Publicar(ctx context.Context, tipo, chave string, dados interface{}) error {
	value, err := json.Marshal(Evento{Tipo: tipo, Chave: chave, Ocorrido: time.Now().UTC(), Dados: dados})
	if err != nil {
		return fmt.Errorf("kafka: marshal %s: %w", tipo, err)
	}

	msg := kafka.Message{
		Key:   []byte(chave),
		Value: value,
		Time:  time.Now(),
		Headers: []kafka.Header{
			{Key: "tipo", Value: []byte(tipo)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka: write %s: %w", tipo, err)
	}
	log.Debug().Str("tipo", tipo).Str("chave", chave).Msg("event published")
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
