package ports

import (
	"context"

	"questgrid/internal/domain/quest"
)

// ExchangePublisher pushes the full current session row to both
// participants on every mutation, one logical topic per session. Protocol
// correctness does not depend on delivery; clients may equally poll.
type ExchangePublisher interface {
	PublishSession(ctx context.Context, session quest.ExchangeSession) error
}
