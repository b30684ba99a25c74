package bridgedns

import (
	"errors"
	"fmt"

	"github.com/yuriy-kovalchuk/yk-bridge-dns/internal/dns"
)

var (
	// ErrTimeout is returned when the provider did not acknowledge a change
	// within the configured bound. The change may still be applied later.
	ErrTimeout = errors.New("timed out waiting for DNS provider acknowledgement")

	// ErrInvalidRecord is returned when the record built for a bridge is not
	// a usable DNS record. No provider call is made.
	ErrInvalidRecord = errors.New("invalid DNS record")
)

// ProviderError is returned when the DNS provider rejected a change.
type ProviderError struct {
	Action dns.Action
	Name   string
	Err    error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("DNS provider rejected %s of %s: %v", e.Action, e.Name, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
