package main

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/teamsync/realtime/pkg/db"
	"github.com/teamsync/realtime/pkg/event"
	"github.com/teamsync/realtime/pkg/model"
)

type Consumer struct {
	reader *kafka.Reader
	db     *db.Session
}

func NewConsumer(brokers []string, topic string, groupID string, session *db.Session) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 10e3, // 10KB
		MaxBytes: 10e6, // 10MB
	})

	return &Consumer{reader: r, db: session}
}

// Consume reads chat messages off the topic and persists them. This is the
// source-of-truth write; the gateway fans the same message out to connected
// clients independently.
func (c *Consumer) Consume(ctx context.Context) {
	for {
		m, err := c.reader.ReadMessage(ctx)
		if err != nil {
			log.Printf("Error reading message: %v. Retrying in 1s...", err)
			time.Sleep(1 * time.Second)
			continue
		}

		var msg model.Message
		if err := json.Unmarshal(m.Value, &msg); err != nil {
			log.Printf("Failed to unmarshal message: %v", err)
			continue
		}

		if msg.Kind != event.KindGroup && msg.Kind != event.KindDirect {
			log.Printf("Skipping message %d with unknown kind %q", msg.ID, msg.Kind)
			continue
		}

		key := model.ConversationKey(msg.Kind, msg.ConversationID)
		query := `INSERT INTO messages (conversation_key, id, sender_id, sender_name, content, timestamp) VALUES (?, ?, ?, ?, ?, ?)`
		if err := c.db.Query(query, key, msg.ID, msg.SenderID, msg.SenderName, msg.Content, msg.Timestamp).Exec(); err != nil {
			log.Printf("Failed to save message to ScyllaDB: %v", err)
		}

		if msg.Kind == event.KindDirect {
			c.updateDirectConversation(msg)
		}
	}
}

// updateDirectConversation maintains the per-user conversation list and the
// recipient's unread counter for a direct message.
func (c *Consumer) updateDirectConversation(msg model.Message) {
	if msg.RecipientID == "" {
		log.Printf("Direct message %d has no recipient, skipping conversation update", msg.ID)
		return
	}

	sender := msg.SenderID
	recipient := msg.RecipientID

	q := `INSERT INTO user_conversations (user_id, other_user_id, last_updated) VALUES (?, ?, ?)`
	if err := c.db.Query(q, sender, recipient, msg.Timestamp).Exec(); err != nil {
		log.Printf("Failed to update conversation for %s: %v", sender, err)
	}
	if err := c.db.Query(q, recipient, sender, msg.Timestamp).Exec(); err != nil {
		log.Printf("Failed to update conversation for %s: %v", recipient, err)
	}

	qCounter := `UPDATE conversation_counters SET unread_count = unread_count + 1 WHERE user_id = ? AND other_user_id = ?`
	if err := c.db.Query(qCounter, recipient, sender).Exec(); err != nil {
		log.Printf("Failed to increment unread count for %s: %v", recipient, err)
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
