package notify

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/feedwire-hq/feedharvest/internal/logger"
)

// Builder creates a Notifier from a sink config entry.
type Builder func(ctx context.Context, cfg SinkConfig, log logger.Logger) (Notifier, error)

// Registry maps sink types to builders.
type Registry interface {
	Register(typ string, builder Builder)
	NotifierFor(ctx context.Context, cfg SinkConfig, log logger.Logger) (Notifier, error)
}

type registry struct {
	mu       sync.RWMutex
	builders map[string]Builder
}

// NewRegistry returns a registry with optional pre-registered builders.
func NewRegistry(builders map[string]Builder) Registry {
	r := &registry{
		builders: make(map[string]Builder),
	}
	for typ, b := range builders {
		r.Register(typ, b)
	}
	return r
}

// Register associates a builder with a sink type.
func (r *registry) Register(typ string, builder Builder) {
	if typ = strings.TrimSpace(strings.ToLower(typ)); typ == "" || builder == nil {
		return
	}

	r.mu.Lock()
	r.builders[typ] = builder
	r.mu.Unlock()
}

// NotifierFor returns the notifier built for the provided config.
func (r *registry) NotifierFor(ctx context.Context, cfg SinkConfig, log logger.Logger) (Notifier, error) {
	if cfg.Type == "" {
		return nil, fmt.Errorf("notifier %q has no type configured", cfg.ID)
	}

	r.mu.RLock()
	builder := r.builders[strings.ToLower(cfg.Type)]
	r.mu.RUnlock()

	if builder == nil {
		return nil, fmt.Errorf("no notifier registered for type %q", cfg.Type)
	}
	return builder(ctx, cfg, log)
}

// DefaultRegistry wires up the known sink types.
func DefaultRegistry() Registry {
	builders := map[string]Builder{
		TypeHTTP:  newHTTPNotifier,
		TypeQueue: newQueueNotifier,
	}
	return NewRegistry(builders)
}

// BuildAll instantiates notifiers for configs using the registry.
func BuildAll(ctx context.Context, reg Registry, cfgs []SinkConfig, log logger.Logger) ([]Notifier, error) {
	if reg == nil || len(cfgs) == 0 {
		return nil, nil
	}

	if ctx == nil {
		ctx = context.Background()
	}
	log = logger.Ensure(log)

	var sinks []Notifier
	for _, cfg := range cfgs {
		sink, err := reg.NotifierFor(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, sink)
	}
	return sinks, nil
}

// NotifyAll delivers the event to every sink. Delivery failures are logged
// per sink and never abort the run.
func NotifyAll(ctx context.Context, sinks []Notifier, evt RunEvent, log logger.Logger) {
	log = logger.Ensure(log)
	for _, sink := range sinks {
		if sink == nil {
			continue
		}
		if err := sink.Notify(ctx, evt); err != nil {
			log.WarnObj("run notification failed", "notify_error", map[string]any{
				"notifier_id": sink.ID(),
				"type":        sink.Type(),
				"error":       err.Error(),
			})
		}
	}
}
