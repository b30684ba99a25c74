// Package bridgedns keeps the public DNS name of each bridge pointing at the
// router of the shard that serves it.
//
// Every operation submits a single change and waits a bounded time for the
// provider to accept it. Nothing is cached; retries are left to the caller,
// which can rely on UPSERT and DELETE being idempotent.
package bridgedns

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-logr/logr"

	"github.com/yuriy-kovalchuk/yk-bridge-dns/internal/dns"
	"github.com/yuriy-kovalchuk/yk-bridge-dns/internal/shard"
)

const (
	// DefaultTimeout bounds how long callers wait for an acknowledgement.
	DefaultTimeout = 5 * time.Second

	// DefaultRequestTimeout bounds a provider request that outlived its caller.
	DefaultRequestTimeout = time.Minute
)

// Options configures a Service.
type Options struct {
	HostedZoneID string
	// Subdomain is appended to the bridge ID, e.g. ".apps.example.com".
	Subdomain string
	// Timeout defaults to DefaultTimeout.
	Timeout time.Duration
	// RequestTimeout defaults to DefaultRequestTimeout.
	RequestTimeout time.Duration
	// Path defaults to BrokerPath.
	Path PathFunc
}

// Service manages bridge DNS records. It holds no mutable state and is safe
// for concurrent use.
type Service struct {
	provider       dns.Provider
	resolver       shard.Resolver
	hostedZoneID   string
	subdomain      string
	timeout        time.Duration
	requestTimeout time.Duration
	path           PathFunc
	log            logr.Logger
}

// New returns a Service submitting changes to provider for hosts resolved by resolver.
func New(log logr.Logger, provider dns.Provider, resolver shard.Resolver, opts Options) *Service {
	s := &Service{
		provider:       provider,
		resolver:       resolver,
		hostedZoneID:   opts.HostedZoneID,
		subdomain:      opts.Subdomain,
		timeout:        opts.Timeout,
		requestTimeout: opts.RequestTimeout,
		path:           opts.Path,
		log:            log,
	}
	if s.timeout <= 0 {
		s.timeout = DefaultTimeout
	}
	if s.requestTimeout <= 0 {
		s.requestTimeout = DefaultRequestTimeout
	}
	if s.requestTimeout < s.timeout {
		s.requestTimeout = s.timeout
	}
	if s.path == nil {
		s.path = BrokerPath
	}
	return s
}

// BuildHost returns the DNS name of the bridge.
func (s *Service) BuildHost(bridgeID string) string {
	return bridgeID + s.subdomain
}

// CreateRecord points the bridge's DNS name at the router of its assigned shard.
// Calling it repeatedly converges on a single record.
//
// Errors from the shard resolver are returned unchanged.
func (s *Service) CreateRecord(ctx context.Context, bridgeID string) (bool, error) {
	log := s.log.WithValues("bridge", bridgeID)
	log.Info("creating DNS record")

	rec, err := s.buildRecord(ctx, bridgeID)
	if err != nil {
		return false, err
	}
	if err := s.apply(ctx, dns.ActionUpsert, rec); err != nil {
		return false, err
	}

	log.Info("DNS record upserted", "name", rec.Name, "target", rec.Value)
	return true, nil
}

// DeleteRecord removes the bridge's DNS record. A record that does not exist
// counts as deleted.
func (s *Service) DeleteRecord(ctx context.Context, bridgeID string) (bool, error) {
	log := s.log.WithValues("bridge", bridgeID)
	log.Info("deleting DNS record")

	rec, err := s.buildRecord(ctx, bridgeID)
	if err != nil {
		return false, err
	}
	err = s.apply(ctx, dns.ActionDelete, rec)
	switch {
	case err == nil:
		log.Info("DNS record deleted", "name", rec.Name)
		return true, nil
	case errors.Is(err, dns.ErrInvalidChangeBatch):
		log.Info("DNS record already absent", "name", rec.Name, "reason", err.Error())
		return true, nil
	default:
		return false, err
	}
}

func (s *Service) buildRecord(ctx context.Context, bridgeID string) (dns.Record, error) {
	sh, err := s.resolver.AssignedShard(ctx, bridgeID)
	if err != nil {
		return dns.Record{}, err
	}

	rec := dns.BuildRecord(s.BuildHost(bridgeID), sh.RouterCanonicalHostname)
	if err := rec.Validate(); err != nil {
		return dns.Record{}, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	s.log.V(1).Info("built DNS record", "bridge", bridgeID, "shard", sh.ID, "name", rec.Name, "target", rec.Value)
	return rec, nil
}

// apply submits a single change and waits for its acknowledgement. The
// provider request runs detached from ctx so that giving up on the wait does
// not abort a change the provider may already have accepted.
func (s *Service) apply(ctx context.Context, action dns.Action, rec dns.Record) error {
	batch := dns.NewChangeBatch(s.hostedZoneID, action, rec)

	reqCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.requestTimeout)
	done := make(chan error, 1)
	go func() {
		defer cancel()
		done <- s.provider.Apply(reqCtx, batch)
	}()

	timer := time.NewTimer(s.timeout)
	defer timer.Stop()

	select {
	case err := <-done:
		if err != nil {
			return &ProviderError{Action: action, Name: rec.Name, Err: err}
		}
		return nil
	case <-timer.C:
		s.log.Info("DNS provider did not acknowledge in time, change may still be applied",
			"action", action, "name", rec.Name, "timeout", s.timeout)
		return fmt.Errorf("%s %s: %w", action, rec.Name, ErrTimeout)
	case <-ctx.Done():
		return fmt.Errorf("%s %s: %w", action, rec.Name, ctx.Err())
	}
}
