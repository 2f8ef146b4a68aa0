package main

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/teamsync/realtime/pkg/model"
	"github.com/teamsync/realtime/pkg/realtime"
	"github.com/teamsync/realtime/pkg/snowflake"
)

// Pipeline is the gateway's side of the message bus: accepted chat messages
// go out to Kafka, and every gateway instance reads the topic back with a
// unique group id so connections on any instance see every message.
type Pipeline struct {
	writer  *kafka.Writer
	hub     *realtime.Hub
	node    *snowflake.Node
	brokers []string
	topic   string
}

func NewPipeline(brokers []string, topic string, hub *realtime.Hub, node *snowflake.Node) *Pipeline {
	return &Pipeline{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		},
		hub:     hub,
		node:    node,
		brokers: brokers,
		topic:   topic,
	}
}

// Publish stamps the message with an id and server timestamp and writes it
// to the topic. Delivery to connected clients happens when the fanout
// consumer reads the message back; persistence is the messaging service's
// job on the same topic.
func (p *Pipeline) Publish(ctx context.Context, msg *model.Message) error {
	if msg.ID == 0 {
		msg.ID = p.node.Generate()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}

	raw, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Value: raw,
		Time:  msg.Timestamp,
	})
}

// messageReader is what consume needs from a kafka.Reader.
type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

// RunFanout consumes the topic and relays each chat message to this
// instance's local connections through the hub.
func (p *Pipeline) RunFanout(ctx context.Context) {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     p.brokers,
		Topic:       p.topic,
		GroupID:     "gateway-fanout-" + uuid.NewString(), // unique per instance: every gateway sees every message
		StartOffset: kafka.LastOffset,
		MinBytes:    10e3,
		MaxBytes:    10e6,
	})
	defer reader.Close()

	p.consume(ctx, reader)
}

func (p *Pipeline) consume(ctx context.Context, reader messageReader) {
	for {
		m, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("Gateway fanout consumer error: %v. Retrying in 1s...", err)
			time.Sleep(1 * time.Second)
			continue
		}

		var msg model.Message
		if err := json.Unmarshal(m.Value, &msg); err != nil {
			log.Printf("Failed to unmarshal message from Kafka: %v", err)
			continue
		}

		p.hub.BroadcastMessage(msg)
	}
}

func (p *Pipeline) Close() error {
	return p.writer.Close()
}
