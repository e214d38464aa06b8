package logging

import "github.com/Black-Forest-Community/slotlist-reboot/types"

// NopLogger implements a no-op logger.
//
// All log messages are discarded. This is the default when no logger is
// provided, eliminating nil checks throughout the engine.
type NopLogger struct{}

// Compile-time assertion that NopLogger implements Logger.
var _ types.Logger = (*NopLogger)(nil)

// NewNop creates a new no-op logger.
func NewNop() *NopLogger {
	return &NopLogger{}
}

// Debug discards the message.
func (l *NopLogger) Debug(_ string, _ ...any) {}

// Info discards the message.
func (l *NopLogger) Info(_ string, _ ...any) {}

// Warn discards the message.
func (l *NopLogger) Warn(_ string, _ ...any) {}

// Error discards the message.
func (l *NopLogger) Error(_ string, _ ...any) {}

// Fatal discards the message without exiting.
//
// Unlike real implementations, the no-op logger does not terminate the
// process; tests rely on this.
func (l *NopLogger) Fatal(_ string, _ ...any) {}
