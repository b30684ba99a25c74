// Package cloudflare implements dns.Provider on the Cloudflare DNS records API.
//
// Cloudflare has no change batches, so UPSERT and DELETE are expressed over
// individual record calls keyed by name and type. A DELETE that finds no
// record reports dns.ErrInvalidChangeBatch, the same signal Route 53 gives.
package cloudflare

import (
	"context"
	"fmt"
	"strconv"

	"github.com/cloudflare/cloudflare-go"
	"github.com/go-logr/logr"

	"github.com/yuriy-kovalchuk/yk-bridge-dns/internal/dns"
)

func init() {
	dns.Register("cloudflare", func(log logr.Logger, settings map[string]string) (dns.Provider, error) {
		return New(log, settings)
	})
}

// Provider implements dns.Provider for Cloudflare.
type Provider struct {
	api     *cloudflare.API
	proxied bool
	comment string
	log     logr.Logger
}

// New creates a Cloudflare DNS provider from the given settings map.
// Required settings: api_token.
// Optional settings: proxied (default false), base_url.
func New(log logr.Logger, settings map[string]string) (*Provider, error) {
	token := settings["api_token"]
	if token == "" {
		return nil, fmt.Errorf("cloudflare: missing required setting 'api_token'")
	}

	proxied := false
	if v := settings["proxied"]; v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("cloudflare: invalid proxied %q: %w", v, err)
		}
		proxied = parsed
	}

	var opts []cloudflare.Option
	if v := settings["base_url"]; v != "" {
		opts = append(opts, cloudflare.BaseURL(v))
	}

	api, err := cloudflare.NewWithAPIToken(token, opts...)
	if err != nil {
		return nil, fmt.Errorf("cloudflare: create api client: %w", err)
	}

	return &Provider{
		api:     api,
		proxied: proxied,
		comment: "managed by yk-bridge-dns",
		log:     log,
	}, nil
}

// Apply applies the single change in batch. HostedZoneID is the Cloudflare zone ID.
func (p *Provider) Apply(ctx context.Context, batch dns.ChangeBatch) error {
	rc := cloudflare.ZoneIdentifier(batch.HostedZoneID)
	rec := batch.Change.Record
	name := dns.CanonicalName(rec.Name)

	existing, _, err := p.api.ListDNSRecords(ctx, rc, cloudflare.ListDNSRecordsParams{
		Type: rec.Type,
		Name: name,
	})
	if err != nil {
		return fmt.Errorf("cloudflare: list %s records for %s: %w", rec.Type, name, err)
	}
	p.log.V(1).Info("found existing records", "name", name, "count", len(existing))

	switch batch.Change.Action {
	case dns.ActionUpsert:
		return p.upsert(ctx, rc, name, rec, existing)
	case dns.ActionDelete:
		return p.delete(ctx, rc, name, existing)
	default:
		return fmt.Errorf("cloudflare: unsupported change action %q", batch.Change.Action)
	}
}

func (p *Provider) upsert(ctx context.Context, rc *cloudflare.ResourceContainer, name string, rec dns.Record, existing []cloudflare.DNSRecord) error {
	if len(existing) == 0 {
		_, err := p.api.CreateDNSRecord(ctx, rc, cloudflare.CreateDNSRecordParams{
			Type:    rec.Type,
			Name:    name,
			Content: rec.Value,
			TTL:     int(rec.TTL),
			Proxied: &p.proxied,
			Comment: p.comment,
		})
		if err != nil {
			return fmt.Errorf("cloudflare: create %s: %w", name, err)
		}
		p.log.Info("record created", "name", name, "value", rec.Value)
		return nil
	}

	updated, err := p.api.UpdateDNSRecord(ctx, rc, cloudflare.UpdateDNSRecordParams{
		ID:      existing[0].ID,
		Type:    rec.Type,
		Name:    name,
		Content: rec.Value,
		TTL:     int(rec.TTL),
		Proxied: &p.proxied,
		Comment: p.comment,
	})
	if err != nil {
		return fmt.Errorf("cloudflare: update %s: %w", name, err)
	}
	p.log.Info("record updated", "name", name, "id", updated.ID, "value", rec.Value)

	// A CNAME owner holds a single record; anything beyond the first is stale.
	for _, extra := range existing[1:] {
		if err := p.api.DeleteDNSRecord(ctx, rc, extra.ID); err != nil {
			return fmt.Errorf("cloudflare: delete duplicate %s (%s): %w", name, extra.ID, err)
		}
		p.log.Info("duplicate record deleted", "name", name, "id", extra.ID)
	}
	return nil
}

func (p *Provider) delete(ctx context.Context, rc *cloudflare.ResourceContainer, name string, existing []cloudflare.DNSRecord) error {
	if len(existing) == 0 {
		return fmt.Errorf("cloudflare: delete %s: %w: no such record", name, dns.ErrInvalidChangeBatch)
	}
	for _, r := range existing {
		if err := p.api.DeleteDNSRecord(ctx, rc, r.ID); err != nil {
			return fmt.Errorf("cloudflare: delete %s (%s): %w", name, r.ID, err)
		}
		p.log.Info("record deleted", "name", name, "id", r.ID)
	}
	return nil
}
