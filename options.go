package slotter

import (
	"github.com/Black-Forest-Community/slotlist-reboot/types"
)

// Option configures optional Engine collaborators.
type Option func(*Engine)

// WithLogger sets the logger used by the engine.
//
// Parameters:
//   - logger: Logger implementation compatible with structured loggers like
//     zap.SugaredLogger (a no-op logger is used when omitted)
func WithLogger(logger types.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithMetrics sets the metrics collector used by the engine.
//
// Parameters:
//   - collector: Metrics implementation (NopMetrics is used when omitted)
func WithMetrics(collector types.MetricsCollector) Option {
	return func(e *Engine) {
		if collector != nil {
			e.metrics = collector
		}
	}
}

// WithEmitter sets the notification emitter receiving committed transition
// events.
//
// Parameters:
//   - em: Emitter implementation (events are discarded when omitted)
func WithEmitter(em types.NotificationEmitter) Option {
	return func(e *Engine) {
		if em != nil {
			e.emitter = em
		}
	}
}
