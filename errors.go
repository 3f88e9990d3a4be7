package thinkspaces

import (
	"errors"
	"fmt"
)

// Store sentinels.
var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)

// ErrConfig reports a provider that cannot be constructed because required
// configuration is missing or invalid. It is raised before any network call.
type ErrConfig struct {
	Provider string
	Message  string
}

func (e *ErrConfig) Error() string {
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

// ErrProviderUnavailable reports a provider name with no registration.
type ErrProviderUnavailable struct {
	Name      string
	Available []string
}

func (e *ErrProviderUnavailable) Error() string {
	return fmt.Sprintf("provider '%s' is not available", e.Name)
}

// ErrDuplicateProvider reports a second registration under the same name.
type ErrDuplicateProvider struct {
	Name string
}

func (e *ErrDuplicateProvider) Error() string {
	return fmt.Sprintf("provider '%s' already registered", e.Name)
}

// ErrLLM reports a generate-time failure inside a provider.
type ErrLLM struct {
	Provider string
	Message  string
	Err      error
}

func (e *ErrLLM) Error() string {
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

func (e *ErrLLM) Unwrap() error { return e.Err }

// ErrHTTP reports a non-success status from a remote inference endpoint.
type ErrHTTP struct {
	Status int
	Body   string
}

func (e *ErrHTTP) Error() string {
	return fmt.Sprintf("http %d: %s", e.Status, e.Body)
}

// ErrInvalidRequest reports caller input that fails validation.
type ErrInvalidRequest struct {
	Field   string
	Message string
}

func (e *ErrInvalidRequest) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// IsClientError reports whether err stems from caller-supplied or
// caller-configured input: bad provider name, missing credentials,
// unreachable inference service, or invalid request fields.
func IsClientError(err error) bool {
	var (
		cfg   *ErrConfig
		unav  *ErrProviderUnavailable
		llm   *ErrLLM
		httpE *ErrHTTP
		inv   *ErrInvalidRequest
	)
	return errors.As(err, &cfg) ||
		errors.As(err, &unav) ||
		errors.As(err, &llm) ||
		errors.As(err, &httpE) ||
		errors.As(err, &inv)
}
