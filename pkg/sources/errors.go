// Package sources provides price source interfaces and implementations.
package sources

import "errors"

var (
	// ErrUnknownSource indicates that no factory is registered under the name.
	ErrUnknownSource = errors.New("unknown source")
	// ErrInvalidConfig indicates that the source configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrAPIKeyRequired indicates that an API key is required.
	ErrAPIKeyRequired = errors.New("API key is required")
	// ErrUnexpectedStatus indicates an unexpected HTTP status code.
	ErrUnexpectedStatus = errors.New("unexpected HTTP status code")
	// ErrRateLimitExceeded indicates that a rate limit has been exceeded.
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
	// ErrQuotaExceeded indicates that the provider's usage quota is spent.
	ErrQuotaExceeded = errors.New("quota exceeded")
	// ErrInvalidResponse indicates an invalid response from the source.
	ErrInvalidResponse = errors.New("invalid response")
	// ErrNoData indicates that the response carried no usable data.
	ErrNoData = errors.New("no data in response")
	// ErrNoRates indicates that a forex source returned no rates at all.
	ErrNoRates = errors.New("no rates fetched")
	// ErrAssetNotFound indicates that the asset is unknown to the source.
	ErrAssetNotFound = errors.New("asset not found")
)
