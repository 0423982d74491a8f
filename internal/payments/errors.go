package payments

import "fmt"

// ValidationError means the request was refused before anything was sent upstream.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

// GatewayRejection is a structured refusal returned by the gateway.
type GatewayRejection struct {
	StatusCode int
	Message    string
}

func (e *GatewayRejection) Error() string {
	return fmt.Sprintf("gateway rejected transaction: http=%d message=%s", e.StatusCode, e.Message)
}

// TransportFailure means no usable response came back from the gateway.
type TransportFailure struct {
	Err error
}

func (e *TransportFailure) Error() string {
	return fmt.Sprintf("gateway transport failure: %v", e.Err)
}

func (e *TransportFailure) Unwrap() error {
	return e.Err
}
