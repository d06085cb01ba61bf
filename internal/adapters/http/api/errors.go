package api

import "github.com/okian/applytrack/internal/domain/types"

// ErrBadRequest marks malformed request bodies and parameters.
var ErrBadRequest = types.ErrInvalidArgument
