package domain

import "errors"

// RetriableError defines an interface for errors that can be retried
type RetriableError interface {
	error
	IsRetriable() bool
}

// IsRetriable checks if an error is retriable
func IsRetriable(err error) bool {
	var re RetriableError
	if errors.As(err, &re) {
		return re.IsRetriable()
	}
	return false
}

// NetworkError represents a network-related error that may be retriable
type NetworkError struct {
	Op        string // Operation that failed (e.g., "dial", "read")
	Err       error  // Underlying error
	Retriable bool   // Whether this error is retriable
}

func (e *NetworkError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *NetworkError) IsRetriable() bool {
	return e.Retriable
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// NewNetworkError creates a new retriable network error
func NewNetworkError(op string, err error) *NetworkError {
	return &NetworkError{Op: op, Err: err, Retriable: true}
}

// NewFatalNetworkError creates a non-retriable network error
func NewFatalNetworkError(op string, err error) *NetworkError {
	return &NetworkError{Op: op, Err: err, Retriable: false}
}

// Upstream fetch stages reported in UpstreamFetchError.Op
const (
	OpRequest  = "request"
	OpStatus   = "status"
	OpDecode   = "decode"
	OpValidate = "validate"
)

// UpstreamFetchError is returned by a failed refresh. The cached record is left untouched.
type UpstreamFetchError struct {
	Op  string
	Err error
}

func (e *UpstreamFetchError) Error() string {
	return "upstream fetch failed [" + e.Op + "]: " + e.Err.Error()
}

// IsRetriable is false for payloads that parsed but carried an unusable price.
// Otherwise a retriable cause decides.
func (e *UpstreamFetchError) IsRetriable() bool {
	if e.Op == OpValidate {
		return false
	}
	var re RetriableError
	if errors.As(e.Err, &re) {
		return re.IsRetriable()
	}
	return true
}

func (e *UpstreamFetchError) Unwrap() error {
	return e.Err
}

// InitializationError means the first fetch failed before any value was cached
type InitializationError struct {
	Err error
}

func (e *InitializationError) Error() string {
	return "price cache initialization failed: " + e.Err.Error()
}

func (e *InitializationError) Unwrap() error {
	return e.Err
}

// ConfigError represents a configuration error (never retriable)
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return "config error [" + e.Field + "]: " + e.Err.Error()
}

func (e *ConfigError) IsRetriable() bool {
	return false
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

var (
	// ErrInvalidPrice is returned when the upstream price is zero, negative or not finite
	ErrInvalidPrice = errors.New("invalid price")

	// ErrUnexpectedCurrency is returned when the upstream quotes in another currency
	ErrUnexpectedCurrency = errors.New("unexpected quote currency")

	// ErrEmptyQuote is returned when the upstream response carries no quote
	ErrEmptyQuote = errors.New("empty quote response")

	// ErrNoData is returned by readers when the cache has never been populated
	ErrNoData = errors.New("gold price data not available")

	// ErrConfigNotFound is returned when configuration file is missing
	ErrConfigNotFound = errors.New("configuration not found")

	// ErrAlreadyStarted is returned by Start on a scheduler that is running
	ErrAlreadyStarted = errors.New("already started")
)
