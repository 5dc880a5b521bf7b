package messaging

import (
	"context"

	"github.com/feral-file/ff-token-exchange/internal/domain"
)

// Publisher defines the interface for publishing exchange events to a message broker
//
//go:generate mockgen -source=publisher.go -destination=../mocks/publisher.go -package=mocks -mock_names=Publisher=MockPublisher
type Publisher interface {
	// PublishExchangeEvent publishes an exchange event
	PublishExchangeEvent(ctx context.Context, event *domain.ExchangeEvent) error
	// Close closes the connection
	Close()
}

type noopPublisher struct{}

// NewNoopPublisher returns a publisher that drops every event, used when no broker is configured
func NewNoopPublisher() Publisher {
	return noopPublisher{}
}

func (noopPublisher) PublishExchangeEvent(context.Context, *domain.ExchangeEvent) error {
	return nil
}

func (noopPublisher) Close() {}
