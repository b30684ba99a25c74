// Command bridgednsctl manages a single bridge DNS record from the command line.
//
//	bridgednsctl [flags] create   <bridge-id>
//	bridgednsctl [flags] delete   <bridge-id>
//	bridgednsctl [flags] host     <bridge-id>
//	bridgednsctl [flags] endpoint <bridge-id> <owner-id>
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/go-logr/logr"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"

	"github.com/yuriy-kovalchuk/yk-bridge-dns/internal/bridgedns"
	"github.com/yuriy-kovalchuk/yk-bridge-dns/internal/config"
	"github.com/yuriy-kovalchuk/yk-bridge-dns/internal/dns"
	_ "github.com/yuriy-kovalchuk/yk-bridge-dns/internal/dns/providers"
)

var errUsage = errors.New("usage: bridgednsctl [flags] <create|delete|host|endpoint> <bridge-id> [owner-id]")

func main() {
	providerPath := flag.String("config", "configs/dns-provider.yaml", "path to the DNS provider config")
	shardsPath := flag.String("shards", "configs/shards.yaml", "path to the shard map")
	opts := zap.Options{
		Development: true,
	}
	opts.BindFlags(flag.CommandLine)
	flag.Parse()

	log := zap.New(zap.UseFlagOptions(&opts)).WithName("bridgednsctl")

	if err := run(context.Background(), log, os.Stdout, *providerPath, *shardsPath, flag.Args()); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		log.Error(err, "command failed")
		os.Exit(1)
	}
}

func run(ctx context.Context, log logr.Logger, out io.Writer, providerPath, shardsPath string, args []string) error {
	if len(args) < 2 {
		return errUsage
	}
	cmd, bridgeID := args[0], args[1]

	providerCfg, err := config.LoadProviderConfigFromPath(providerPath)
	if err != nil {
		return fmt.Errorf("unable to load provider config: %w", err)
	}
	opts := bridgedns.Options{
		HostedZoneID: providerCfg.HostedZoneID,
		Subdomain:    providerCfg.Subdomain,
		Timeout:      providerCfg.Timeout,
	}

	switch cmd {
	case "create", "delete":
		svc, err := newService(log, providerCfg, shardsPath, opts)
		if err != nil {
			return err
		}
		op := svc.CreateRecord
		if cmd == "delete" {
			op = svc.DeleteRecord
		}
		ok, err := op(ctx, bridgeID)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s %t\n", svc.BuildHost(bridgeID), ok)
	case "host":
		// Naming needs only the subdomain; no provider client is built.
		fmt.Fprintln(out, bridgedns.New(log, nil, nil, opts).BuildHost(bridgeID))
	case "endpoint":
		if len(args) < 3 {
			return errUsage
		}
		fmt.Fprintln(out, bridgedns.New(log, nil, nil, opts).BuildEndpointURL(bridgeID, args[2]))
	default:
		return fmt.Errorf("unknown command %q: %w", cmd, errUsage)
	}
	return nil
}

func newService(log logr.Logger, providerCfg *config.ProviderConfig, shardsPath string, opts bridgedns.Options) (*bridgedns.Service, error) {
	shards, err := config.LoadShardMap(shardsPath)
	if err != nil {
		return nil, fmt.Errorf("unable to load shard map: %w", err)
	}

	dnsProvider, err := dns.NewProvider(providerCfg.Provider, log.WithName("dns-"+providerCfg.Provider), providerCfg.Settings)
	if err != nil {
		return nil, fmt.Errorf("unable to create DNS provider: %w", err)
	}

	return bridgedns.New(log.WithName("bridge-dns"), dnsProvider, shards, opts), nil
}
