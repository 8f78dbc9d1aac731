package notifications

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Sender delivers one notification to one channel.
type Sender interface {
	Name() string
	Send(ctx context.Context, n Notification) error
}

// PostgresSender stores notifications in the user's inbox table.
type PostgresSender struct {
	db *sql.DB
}

// NewPostgresSender creates an inbox sender.
func NewPostgresSender(db *sql.DB) *PostgresSender {
	return &PostgresSender{db: db}
}

func (s *PostgresSender) Name() string { return "inbox" }

func (s *PostgresSender) Send(ctx context.Context, n Notification) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications(id, user_id, type, title, message, related_type, related_id, priority, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		n.ID, n.UserID, n.Type, n.Title, n.Message, n.RelatedType, n.RelatedID, n.Priority, n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

// StreamSender appends notifications to a redis stream for push consumers.
type StreamSender struct {
	client *redis.Client
	stream string
	maxLen int64
}

// NewStreamSender creates a sender publishing to stream. A positive maxLen
// caps the stream length approximately.
func NewStreamSender(client *redis.Client, stream string, maxLen int64) *StreamSender {
	return &StreamSender{client: client, stream: stream, maxLen: maxLen}
}

func (s *StreamSender) Name() string { return "stream" }

func (s *StreamSender) Send(ctx context.Context, n Notification) error {
	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: s.stream,
		Values: map[string]any{
			"user_id":   n.UserID.String(),
			"type":      string(n.Type),
			"priority":  string(n.Priority),
			"data":      string(data),
			"timestamp": n.CreatedAt.Unix(),
		},
	}
	if s.maxLen > 0 {
		args.MaxLen = s.maxLen
		args.Approx = true
	}

	if err := s.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("xadd %s: %w", s.stream, err)
	}
	return nil
}
