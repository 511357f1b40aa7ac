package sources

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/unytco/pricing-oracle/pkg/logging"
)

// DefaultTimeout bounds a single request against a provider. There is no
// retry layer; a failed fetch is reported and the pass moves on.
const DefaultTimeout = 10 * time.Second

// BaseSource provides common functionality for all price sources
type BaseSource struct {
	name   string
	client *http.Client
	logger *logging.Logger
}

// NewBaseSource creates a new base source with an HTTP client bound to the
// given timeout.
func NewBaseSource(name string, timeout time.Duration, logger *logging.Logger) *BaseSource {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &BaseSource{
		name: name,
		client: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Name returns the source name
func (b *BaseSource) Name() string {
	return b.name
}

// Logger returns the logger
func (b *BaseSource) Logger() *logging.Logger {
	return b.logger
}

// Client returns the HTTP client
func (b *BaseSource) Client() *http.Client {
	return b.client
}

// DoJSON executes the request, maps rate limiting and non-200 statuses to
// sentinel errors, and decodes the body into v.
func (b *BaseSource) DoJSON(req *http.Request, v interface{}) error {
	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusTooManyRequests {
		b.logger.Warn("Rate limit exceeded", "source", b.name)
		return fmt.Errorf("%w", ErrRateLimitExceeded)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
