package dates

import "github.com/okian/applytrack/internal/domain/types"

// ErrInvalidDate is returned for malformed or missing ISO dates.
var ErrInvalidDate = types.ErrInvalidArgument
