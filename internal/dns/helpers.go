package dns

import (
	"strings"

	miekgdns "github.com/miekg/dns"
)

// CanonicalName lowercases name and strips the trailing root dot, so that
// "Bridge-1.Example.com." and "bridge-1.example.com" compare equal.
func CanonicalName(name string) string {
	return strings.TrimSuffix(miekgdns.CanonicalName(name), ".")
}

