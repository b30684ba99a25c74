package dns

import (
	"context"
	"errors"
	"fmt"

	miekgdns "github.com/miekg/dns"
)

const (
	// RecordTypeCNAME is the only record type managed for bridges.
	RecordTypeCNAME = "CNAME"
	// RecordTTL is the TTL, in seconds, of every bridge record.
	RecordTTL int64 = 60
)

// ErrInvalidChangeBatch is returned by providers when the submitted change
// cannot be applied as-is, e.g. deleting a record that does not exist.
var ErrInvalidChangeBatch = errors.New("invalid change batch")

// Record represents a DNS record to be managed.
type Record struct {
	Name  string // FQDN, e.g. "bridge-123.apps.example.com"
	Type  string
	TTL   int64
	Value string // single alias target
}

// BuildRecord returns the CNAME record pointing hostName at target.
func BuildRecord(hostName, target string) Record {
	return Record{
		Name:  hostName,
		Type:  RecordTypeCNAME,
		TTL:   RecordTTL,
		Value: target,
	}
}

// Validate reports whether the record name and value are usable DNS names.
func (r Record) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("record name is empty")
	}
	if _, ok := miekgdns.IsDomainName(r.Name); !ok {
		return fmt.Errorf("record name %q is not a valid domain name", r.Name)
	}
	if r.Value == "" {
		return fmt.Errorf("record %s has no target", r.Name)
	}
	if _, ok := miekgdns.IsDomainName(r.Value); !ok {
		return fmt.Errorf("record target %q is not a valid domain name", r.Value)
	}
	return nil
}

// Action is the operation a Change applies to its record.
type Action string

const (
	ActionUpsert Action = "UPSERT"
	ActionDelete Action = "DELETE"
)

// Change is a single record operation.
type Change struct {
	Action Action
	Record Record
}

// ChangeBatch carries exactly one change for a hosted zone.
type ChangeBatch struct {
	HostedZoneID string
	Change       Change
}

// NewChangeBatch wraps a single change for the given hosted zone.
func NewChangeBatch(hostedZoneID string, action Action, record Record) ChangeBatch {
	return ChangeBatch{
		HostedZoneID: hostedZoneID,
		Change:       Change{Action: action, Record: record},
	}
}

// Provider is the interface that DNS providers must implement.
//
// Apply returns once the provider has accepted the batch. It does not wait
// for the change to propagate. Providers return an error wrapping
// ErrInvalidChangeBatch when the change is a no-op they refuse, notably a
// DELETE of an absent record.
type Provider interface {
	Apply(ctx context.Context, batch ChangeBatch) error
}
