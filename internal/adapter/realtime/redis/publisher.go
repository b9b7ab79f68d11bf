package redispub

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"questgrid/internal/domain/quest"

	"github.com/redis/go-redis/v9"
)

// Publisher broadcasts exchange session snapshots over Redis pub/sub. Each
// session gets its own channel so clients subscribe to exactly the trade
// they are part of.
type Publisher struct {
	client *redis.Client
	logger *slog.Logger
}

func NewPublisher(client *redis.Client, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{client: client, logger: logger}
}

func NewClient(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: addr})
}

// ChannelFor returns the pub/sub channel carrying a session's updates.
func ChannelFor(sessionID string) string {
	return "exchange:" + sessionID
}

func (p *Publisher) Ping(ctx context.Context) error {
	if err := p.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// PublishSession sends the full session row. Subscribers always receive a
// complete snapshot, never a diff, so a missed message costs nothing.
func (p *Publisher) PublishSession(ctx context.Context, session quest.ExchangeSession) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	channel := ChannelFor(session.ID)
	if err := p.client.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", channel, err)
	}
	p.logger.Debug("exchange session published",
		"channel", channel, "session_id", session.ID, "status", session.Status)
	return nil
}

// Subscribe delivers session snapshots until the context is cancelled.
// Malformed payloads are logged and skipped.
func (p *Publisher) Subscribe(ctx context.Context, sessionID string) (<-chan quest.ExchangeSession, func(), error) {
	sub := p.client.Subscribe(ctx, ChannelFor(sessionID))
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, nil, fmt.Errorf("subscribe to session %s: %w", sessionID, err)
	}

	out := make(chan quest.ExchangeSession)
	go func() {
		defer close(out)
		for msg := range sub.Channel() {
			var session quest.ExchangeSession
			if err := json.Unmarshal([]byte(msg.Payload), &session); err != nil {
				p.logger.Warn("dropping malformed session payload",
					"session_id", sessionID, "error", err)
				continue
			}
			select {
			case out <- session:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, func() { _ = sub.Close() }, nil
}
