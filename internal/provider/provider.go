package provider

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrUnknownProvider = errors.New("provider not found")
	ErrNotConfigured   = errors.New("provider credentials not configured")
)

// RequestError reports a failed or malformed upstream completion call.
type RequestError struct {
	Provider string
	Status   int
	Message  string
}

func (e *RequestError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s request failed: status %d: %s", e.Provider, e.Status, e.Message)
	}
	return fmt.Sprintf("%s request failed: %s", e.Provider, e.Message)
}

// Provider wraps one text-generation backend. Implementations are stateless
// per invocation; credential state is fixed at construction.
type Provider interface {
	Name() string
	Available() bool
	Invoke(ctx context.Context, prompt string) (string, error)
}

// Streamer is implemented by providers with native incremental output.
type Streamer interface {
	Stream(ctx context.Context, prompt string) (FragmentStream, error)
}

// FragmentStream yields assistant text incrementally. Recv returns io.EOF
// after the final fragment. Streams are finite and not restartable.
type FragmentStream interface {
	Recv() (string, error)
	Close()
}
