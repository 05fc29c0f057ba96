package notify

import (
	"context"
	"fmt"

	"github.com/feedwire-hq/feedharvest/internal/logger"
)

// queueSender abstracts provider-specific queue senders.
type queueSender interface {
	Send(ctx context.Context, evt RunEvent) error
}

// queueNotifier dispatches run events to a cloud queue provider.
type queueNotifier struct {
	id       string
	typ      string
	provider string
	sender   queueSender
	log      logger.Logger
}

// newQueueNotifier creates a queue notifier for the configured provider.
func newQueueNotifier(ctx context.Context, cfg SinkConfig, log logger.Logger) (Notifier, error) {
	if cfg.Queue == nil {
		return nil, fmt.Errorf("notifier %q missing queue configuration", cfg.ID)
	}

	if ctx == nil {
		ctx = context.Background()
	}

	var (
		sender queueSender
		err    error
	)

	switch cfg.Queue.Provider {
	case QueueProviderAWSSQS:
		sender, err = newAWSSQSSender(ctx, cfg.Queue.SQS, log)
	case QueueProviderAWSSNS:
		sender, err = newAWSSNSSender(ctx, cfg.Queue.SNS, log)
	case QueueProviderGCP:
		sender, err = newGCPPubSubSender(ctx, cfg.Queue.GCP, log)
	default:
		err = fmt.Errorf("queue provider %q is not supported", cfg.Queue.Provider)
	}
	if err != nil {
		return nil, err
	}

	return &queueNotifier{
		id:       cfg.ID,
		typ:      cfg.Type,
		provider: cfg.Queue.Provider,
		sender:   sender,
		log:      logger.Ensure(log),
	}, nil
}

func (n *queueNotifier) ID() string   { return n.id }
func (n *queueNotifier) Type() string { return n.typ }

// Notify forwards the event to the configured queue provider.
func (n *queueNotifier) Notify(ctx context.Context, evt RunEvent) error {
	if err := n.sender.Send(ctx, evt); err != nil {
		return fmt.Errorf("queue provider %s send failed: %w", n.provider, err)
	}
	return nil
}
