package types

import "fmt"

// ConfigurationError is fatal and only raised while the process starts.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Reason)
}

func NewConfigError(field, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

type AnalysisErrorKind string

const (
	ErrMalformedResponse AnalysisErrorKind = "malformed_response"
	ErrTransportFailure  AnalysisErrorKind = "transport_failure"
	ErrCancelled         AnalysisErrorKind = "cancelled"
)

// AnalysisError is a per-item failure of the AI path. It never leaves the
// comparison engine; it is turned into a degraded AnalysisResult instead.
type AnalysisError struct {
	Kind      AnalysisErrorKind
	Retryable bool
	// Raw holds the unparsed model reply for malformed responses.
	Raw string
	Err error
}

func (e *AnalysisError) Error() string {
	switch e.Kind {
	case ErrTransportFailure:
		return fmt.Sprintf("transport failure (retryable=%t): %v", e.Retryable, e.Err)
	case ErrMalformedResponse:
		return fmt.Sprintf("malformed response: %v", e.Err)
	default:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
}

func (e *AnalysisError) Unwrap() error { return e.Err }

// Payload is the audit map stored on a degraded result.
func (e *AnalysisError) Payload() map[string]any {
	p := map[string]any{
		"error_kind": string(e.Kind),
		"retryable":  e.Retryable,
	}
	if e.Err != nil {
		p["error"] = e.Err.Error()
	}
	if e.Kind == ErrMalformedResponse {
		p["raw_response"] = e.Raw
	}
	return p
}
