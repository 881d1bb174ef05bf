package gpu

import "github.com/cockroachdb/errors"

var (
	ErrAdapterUnavailable  = errors.New("no suitable adapter available")
	ErrDeviceRequestFailed = errors.New("device request failed")
	ErrMissingExtension    = errors.New("missing extension")
	ErrMissingLayer        = errors.New("missing layer")
)
