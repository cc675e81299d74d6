package cache

import "errors"

var (
	ErrNotFound = errors.New("cache: entry not found")
	ErrCodec    = errors.New("cache: failed to encode or decode value")
)
