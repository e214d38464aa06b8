package slotter

import (
	"github.com/Black-Forest-Community/slotlist-reboot/types"
)

// Re-exported sentinel errors so callers can match engine failures without
// importing the types package. See the types package for full documentation.
var (
	ErrInvalidConfig           = types.ErrInvalidConfig
	ErrInvalidArgument         = types.ErrInvalidArgument
	ErrProfileProviderRequired = types.ErrProfileProviderRequired
	ErrAuthorizerRequired      = types.ErrAuthorizerRequired
	ErrAlreadyStarted          = types.ErrAlreadyStarted
	ErrNotStarted              = types.ErrNotStarted
	ErrNotFound                = types.ErrNotFound
	ErrUnauthorized            = types.ErrUnauthorized
	ErrConflict                = types.ErrConflict
	ErrContentionTimeout       = types.ErrContentionTimeout
	ErrIneligible              = types.ErrIneligible
	ErrDuplicateOrder          = types.ErrDuplicateOrder
)

// IneligibleError is re-exported for errors.As matching at the call site.
type IneligibleError = types.IneligibleError
