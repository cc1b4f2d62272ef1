package llm

import "fmt"

// NetworkError wraps a transport-level failure reaching the provider.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("provider unreachable: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ProviderError is a non-2xx answer from the provider: auth, quota,
// overload, or a request the provider rejected.
type ProviderError struct {
	StatusCode int
	Type       string
	Message    string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider error (status %d, %s): %s", e.StatusCode, e.Type, e.Message)
}

// MalformedResponseError is a 2xx answer whose body did not match the
// messages API shape, or that carried no text content at all.
type MalformedResponseError struct {
	Reason string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed provider response: %s", e.Reason)
}
