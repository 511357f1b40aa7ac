package ledger

import "errors"

var (
	// ErrConnectionFailed indicates the conductor websocket could not be
	// dialed.
	ErrConnectionFailed = errors.New("conductor connection failed")

	// ErrConnectionClosed indicates the conductor websocket dropped while
	// calls were outstanding.
	ErrConnectionClosed = errors.New("conductor connection closed")

	// ErrConductorError indicates the conductor answered a request with an
	// error payload.
	ErrConductorError = errors.New("conductor returned error")

	// ErrUnexpectedResponse indicates the conductor answered with a payload
	// kind the call did not ask for.
	ErrUnexpectedResponse = errors.New("unexpected conductor response")

	// ErrRoleNotFound indicates the app carries no cell for the configured
	// role name.
	ErrRoleNotFound = errors.New("role not found in app")

	// ErrAppNotFound indicates the conductor has no app installed under the
	// configured app id.
	ErrAppNotFound = errors.New("app not found")

	// ErrInvalidSigningKey indicates the configured signing key material is
	// missing or malformed.
	ErrInvalidSigningKey = errors.New("invalid signing key")

	// ErrInvalidHash indicates bytes or text that do not form a valid holo
	// hash of the expected kind.
	ErrInvalidHash = errors.New("invalid hash")

	// ErrInvalidAmount indicates a value that cannot be represented as a
	// fuel amount.
	ErrInvalidAmount = errors.New("invalid amount")
)
