// Package route53 implements dns.Provider on AWS Route 53.
package route53

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/route53"
	"github.com/aws/aws-sdk-go/service/route53/route53iface"
	"github.com/go-logr/logr"

	"github.com/yuriy-kovalchuk/yk-bridge-dns/internal/dns"
)

const defaultRegion = "us-east-1"

func init() {
	dns.Register("route53", func(log logr.Logger, settings map[string]string) (dns.Provider, error) {
		return New(log, settings)
	})
}

// Provider implements dns.Provider for AWS Route 53.
type Provider struct {
	api route53iface.Route53API
	log logr.Logger
}

// New creates a Route 53 provider from the given settings map.
// Optional settings: region (default us-east-1), access_key_id and
// secret_access_key (default credential chain when unset), endpoint.
func New(log logr.Logger, settings map[string]string) (*Provider, error) {
	// Retrying is the caller's decision; every Apply is a single request.
	cfg := aws.NewConfig().WithRegion(defaultRegion).WithMaxRetries(0)
	if v := settings["region"]; v != "" {
		cfg = cfg.WithRegion(v)
	}
	if v := settings["endpoint"]; v != "" {
		cfg = cfg.WithEndpoint(v)
	}

	keyID, secret := settings["access_key_id"], settings["secret_access_key"]
	switch {
	case keyID != "" && secret != "":
		cfg = cfg.WithCredentials(credentials.NewStaticCredentials(keyID, secret, settings["session_token"]))
	case keyID != "" || secret != "":
		return nil, fmt.Errorf("route53: access_key_id and secret_access_key must be set together")
	}

	sess, err := session.NewSession(cfg)
	if err != nil {
		return nil, fmt.Errorf("route53: create session: %w", err)
	}
	return NewWithAPI(log, route53.New(sess)), nil
}

// NewWithAPI creates a provider around an existing Route 53 client.
func NewWithAPI(log logr.Logger, api route53iface.Route53API) *Provider {
	return &Provider{api: api, log: log}
}

// Apply submits the batch as a ChangeResourceRecordSets request and returns
// once Route 53 has accepted it. The change is PENDING at that point.
func (p *Provider) Apply(ctx context.Context, batch dns.ChangeBatch) error {
	change := batch.Change
	action, err := changeAction(change.Action)
	if err != nil {
		return err
	}

	input := &route53.ChangeResourceRecordSetsInput{
		HostedZoneId: aws.String(batch.HostedZoneID),
		ChangeBatch: &route53.ChangeBatch{
			Changes: []*route53.Change{{
				Action:            aws.String(action),
				ResourceRecordSet: resourceRecordSet(change.Record),
			}},
		},
	}

	p.log.V(1).Info("submitting change", "zone", batch.HostedZoneID, "action", action,
		"name", change.Record.Name, "value", change.Record.Value)
	out, err := p.api.ChangeResourceRecordSetsWithContext(ctx, input)
	if err != nil {
		var aerr awserr.Error
		if errors.As(err, &aerr) && aerr.Code() == route53.ErrCodeInvalidChangeBatch {
			return fmt.Errorf("route53: %s %s: %w: %s", action, change.Record.Name, dns.ErrInvalidChangeBatch, aerr.Message())
		}
		return fmt.Errorf("route53: %s %s: %w", action, change.Record.Name, err)
	}

	if out.ChangeInfo != nil {
		p.log.V(1).Info("change accepted", "id", aws.StringValue(out.ChangeInfo.Id),
			"status", aws.StringValue(out.ChangeInfo.Status))
	}
	return nil
}

func changeAction(a dns.Action) (string, error) {
	switch a {
	case dns.ActionUpsert:
		return route53.ChangeActionUpsert, nil
	case dns.ActionDelete:
		return route53.ChangeActionDelete, nil
	default:
		return "", fmt.Errorf("route53: unsupported change action %q", a)
	}
}

func resourceRecordSet(r dns.Record) *route53.ResourceRecordSet {
	return &route53.ResourceRecordSet{
		Name: aws.String(r.Name),
		Type: aws.String(r.Type),
		TTL:  aws.Int64(r.TTL),
		ResourceRecords: []*route53.ResourceRecord{
			{Value: aws.String(r.Value)},
		},
	}
}
