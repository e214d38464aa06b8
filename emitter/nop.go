package emitter

import (
	"context"

	"github.com/Black-Forest-Community/slotlist-reboot/types"
)

// Nop implements a no-op notification emitter.
//
// All events are discarded. This is the default when no emitter is provided,
// eliminating nil checks in the dispatch loop.
type Nop struct{}

// Compile-time assertion that Nop implements NotificationEmitter.
var _ types.NotificationEmitter = (*Nop)(nil)

// NewNop creates a new no-op emitter.
func NewNop() *Nop {
	return &Nop{}
}

// Emit discards the event.
func (n *Nop) Emit(_ context.Context, _ types.Event) error {
	return nil
}
