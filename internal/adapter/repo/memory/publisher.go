package memory

import (
	"context"
	"sync"

	"questgrid/internal/domain/quest"
)

// Publisher records published session rows in order, keyed by session id.
// Stands in for the realtime channel in unit tests and local runs.
type Publisher struct {
	mu       sync.Mutex
	sessions map[string][]quest.ExchangeSession
}

func NewPublisher() *Publisher {
	return &Publisher{sessions: make(map[string][]quest.ExchangeSession)}
}

func (p *Publisher) PublishSession(_ context.Context, session quest.ExchangeSession) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sessions[session.ID] = append(p.sessions[session.ID], session)
	return nil
}

// Published returns the rows broadcast for a session, oldest first.
func (p *Publisher) Published(sessionID string) []quest.ExchangeSession {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]quest.ExchangeSession, len(p.sessions[sessionID]))
	copy(out, p.sessions[sessionID])
	return out
}
