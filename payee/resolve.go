// Package payee resolves payee handles of the form "alias@domain" into
// payment addresses.
//
// A domain hosting course creators publishes a capability document at
// /.well-known/coursepay; its payout-destination capability is a URL
// template that, given an alias, returns the creator's current payment
// address. Discovery endpoints can also be located through DNS SRV
// records, optionally with DNSSEC validation.
package payee

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// MaxResponseSize caps well-known and destination response bodies.
const MaxResponseSize = 1 << 20 // 1 MiB

// Capability names in the well-known document.
const (
	capPayoutDestination = "payout-destination"
	capPublicProfile     = "public-profile"
)

// HTTPClient defines the interface for HTTP requests.
// This allows tests to mock HTTP calls.
type HTTPClient interface {
	Get(url string) (*http.Response, error)
}

// DefaultHTTPClient is the production HTTP client with a 30-second timeout.
var DefaultHTTPClient HTTPClient = &http.Client{Timeout: 30 * time.Second}

// Capabilities holds a domain's discovered coursepay capabilities.
type Capabilities struct {
	PayoutDestination string // URL template for payout address lookup
	PublicProfile     string // URL template for creator profile info
}

// wellKnownResponse is the JSON structure of /.well-known/coursepay.
type wellKnownResponse struct {
	Version      string            `json:"version"`
	Capabilities map[string]string `json:"capabilities"`
}

// destinationResponse is the JSON envelope returned by the payout
// destination endpoint.
type destinationResponse struct {
	Handle  string `json:"handle"`
	Address string `json:"address"`
}

// SplitHandle splits an "alias@domain" handle into its parts.
func SplitHandle(handle string) (alias, domain string, err error) {
	at := strings.LastIndex(handle, "@")
	if at <= 0 || at == len(handle)-1 {
		return "", "", fmt.Errorf("%w: %q", ErrBadHandle, handle)
	}
	return handle[:at], handle[at+1:], nil
}

// DiscoverCapabilities fetches /.well-known/coursepay from a domain using
// the default HTTP client.
func DiscoverCapabilities(domain string) (*Capabilities, error) {
	return DiscoverCapabilitiesWithClient(domain, DefaultHTTPClient)
}

// DiscoverCapabilitiesWithClient fetches capabilities using the provided client.
func DiscoverCapabilitiesWithClient(domain string, client HTTPClient) (*Capabilities, error) {
	if domain == "" {
		return nil, fmt.Errorf("%w: empty domain", ErrDiscoveryFailed)
	}

	wkURL := "https://" + domain + "/.well-known/coursepay"
	resp, err := client.Get(wkURL)
	if err != nil {
		return nil, fmt.Errorf("%w: GET %s: %v", ErrDiscoveryFailed, wkURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: GET %s returned status %d", ErrDiscoveryFailed, wkURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", ErrDiscoveryFailed, err)
	}

	var wk wellKnownResponse
	if err := json.Unmarshal(body, &wk); err != nil {
		return nil, fmt.Errorf("%w: parsing JSON: %v", ErrDiscoveryFailed, err)
	}

	caps := &Capabilities{
		PayoutDestination: wk.Capabilities[capPayoutDestination],
		PublicProfile:     wk.Capabilities[capPublicProfile],
	}
	return caps, nil
}

// Resolver resolves payee handles through capability discovery.
// The zero value is not usable; use NewResolver.
type Resolver struct {
	client HTTPClient
	dns    DNSResolver
}

// NewResolver creates a resolver. A nil client selects DefaultHTTPClient;
// SRV endpoint discovery uses a DNSSEC-validating resolver.
func NewResolver(client HTTPClient) *Resolver {
	return NewResolverWithDNS(client, nil)
}

// NewResolverWithDNS creates a resolver with an explicit DNS resolver for
// SRV endpoint discovery. A nil dnsRes selects NewDNSSECResolver("").
func NewResolverWithDNS(client HTTPClient, dnsRes DNSResolver) *Resolver {
	if client == nil {
		client = DefaultHTTPClient
	}
	if dnsRes == nil {
		dnsRes = NewDNSSECResolver("")
	}
	return &Resolver{client: client, dns: dnsRes}
}

// ResolveAddress resolves an "alias@domain" handle to a payment address.
//
// The discovery host is located through _coursepay._tcp SRV records when
// the domain publishes them (validated by the configured DNS resolver),
// falling back to the domain itself otherwise. The domain's capabilities
// are then fetched from that host and the payout-destination URL template
// is expanded with the escaped alias and domain to obtain the address.
func (r *Resolver) ResolveAddress(handle string) (string, error) {
	alias, domain, err := SplitHandle(handle)
	if err != nil {
		return "", err
	}

	host := domain
	if endpoints, srvErr := ResolveEndpointsWithResolver(domain, r.dns); srvErr == nil {
		host = endpoints[0]
	}

	caps, err := DiscoverCapabilitiesWithClient(host, r.client)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrResolutionFailed, err)
	}
	if caps.PayoutDestination == "" {
		return "", fmt.Errorf("%w: %s", ErrNoPayoutCapability, domain)
	}

	// Expand the template, escaping variables to prevent path traversal.
	destURL := strings.ReplaceAll(caps.PayoutDestination, "{alias}", url.PathEscape(alias))
	destURL = strings.ReplaceAll(destURL, "{domain.tld}", url.PathEscape(domain))

	resp, err := r.client.Get(destURL)
	if err != nil {
		return "", fmt.Errorf("%w: GET %s: %v", ErrResolutionFailed, destURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: GET %s returned status %d", ErrResolutionFailed, destURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
	if err != nil {
		return "", fmt.Errorf("%w: reading response: %v", ErrResolutionFailed, err)
	}

	var dest destinationResponse
	if err := json.Unmarshal(body, &dest); err != nil {
		return "", fmt.Errorf("%w: parsing response: %v", ErrResolutionFailed, err)
	}
	if dest.Address == "" {
		return "", fmt.Errorf("%w: empty address for %s", ErrResolutionFailed, handle)
	}

	return dest.Address, nil
}
