// Package identity resolves the owner of an incoming request. The
// authentication flow itself lives outside this service (an auth proxy or
// gateway); this package only extracts the identity it established.
package identity

import (
	"net/http"
	"strings"
)

// Provider supplies the current owner identifier for a request.
// An empty owner id means the request is unauthenticated.
type Provider interface {
	OwnerID(r *http.Request) string
}

// HeaderProvider trusts an upstream proxy to set the owner id header.
type HeaderProvider struct {
	Header string
}

// NewHeaderProvider builds a HeaderProvider with a default header name.
func NewHeaderProvider(header string) *HeaderProvider {
	if header == "" {
		header = "X-Owner-ID"
	}
	return &HeaderProvider{Header: header}
}

func (p *HeaderProvider) OwnerID(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(p.Header))
}

// StaticProvider pins every request to a single owner. Used for
// single-user deployments and in tests.
type StaticProvider struct {
	Owner string
}

func (p *StaticProvider) OwnerID(r *http.Request) string {
	return p.Owner
}
