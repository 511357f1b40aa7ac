package app

import "errors"

// ErrNoTokenSources indicates that every configured token source was
// disabled or failed to initialize, leaving nothing to fetch prices with.
var ErrNoTokenSources = errors.New("no token sources available")
