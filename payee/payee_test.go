package payee

import (
	"bytes"
	"fmt"
	"io"
	"net"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Test doubles ---

// mockHTTPClient serves canned responses keyed by URL.
type mockHTTPClient struct {
	responses map[string]string
	status    map[string]int
}

func (m *mockHTTPClient) Get(url string) (*http.Response, error) {
	body, ok := m.responses[url]
	if !ok {
		return nil, fmt.Errorf("no response for %s", url)
	}
	status := http.StatusOK
	if s, ok := m.status[url]; ok {
		status = s
	}
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewReader([]byte(body))),
	}, nil
}

// mockDNSResolver serves canned SRV records.
type mockDNSResolver struct {
	srvs []*net.SRV
	err  error
}

func (m *mockDNSResolver) LookupSRV(service, proto, name string) (string, []*net.SRV, error) {
	return "", m.srvs, m.err
}

// --- SplitHandle tests ---

func TestSplitHandle(t *testing.T) {
	tests := []struct {
		handle     string
		alias      string
		domain     string
		wantErr    bool
	}{
		{"creator@school.example", "creator", "school.example", false},
		{"a.b@c.d", "a.b", "c.d", false},
		{"nodomain@", "", "", true},
		{"@noalias.example", "", "", true},
		{"plainaddress", "", "", true},
		{"", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.handle, func(t *testing.T) {
			alias, domain, err := SplitHandle(tt.handle)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrBadHandle)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.alias, alias)
			assert.Equal(t, tt.domain, domain)
		})
	}
}

// --- Discovery tests ---

const wellKnownDoc = `{
	"version": "1.0",
	"capabilities": {
		"payout-destination": "https://school.example/payout/{alias}@{domain.tld}",
		"public-profile": "https://school.example/profile/{alias}"
	}
}`

func TestDiscoverCapabilities(t *testing.T) {
	client := &mockHTTPClient{responses: map[string]string{
		"https://school.example/.well-known/coursepay": wellKnownDoc,
	}}

	caps, err := DiscoverCapabilitiesWithClient("school.example", client)
	require.NoError(t, err)
	assert.Equal(t, "https://school.example/payout/{alias}@{domain.tld}", caps.PayoutDestination)
	assert.Equal(t, "https://school.example/profile/{alias}", caps.PublicProfile)
}

func TestDiscoverCapabilities_Errors(t *testing.T) {
	_, err := DiscoverCapabilitiesWithClient("", &mockHTTPClient{})
	assert.ErrorIs(t, err, ErrDiscoveryFailed)

	// Unreachable domain.
	_, err = DiscoverCapabilitiesWithClient("down.example", &mockHTTPClient{})
	assert.ErrorIs(t, err, ErrDiscoveryFailed)

	// Non-200 status.
	client := &mockHTTPClient{
		responses: map[string]string{"https://school.example/.well-known/coursepay": "gone"},
		status:    map[string]int{"https://school.example/.well-known/coursepay": http.StatusNotFound},
	}
	_, err = DiscoverCapabilitiesWithClient("school.example", client)
	assert.ErrorIs(t, err, ErrDiscoveryFailed)

	// Bad JSON.
	client = &mockHTTPClient{responses: map[string]string{
		"https://school.example/.well-known/coursepay": "{not json",
	}}
	_, err = DiscoverCapabilitiesWithClient("school.example", client)
	assert.ErrorIs(t, err, ErrDiscoveryFailed)
}

// --- ResolveAddress tests ---

// noSRV is a DNS resolver for domains that publish no SRV records, so
// discovery falls back to the handle's domain.
func noSRV() *mockDNSResolver {
	return &mockDNSResolver{err: fmt.Errorf("NXDOMAIN")}
}

func TestResolveAddress(t *testing.T) {
	client := &mockHTTPClient{responses: map[string]string{
		"https://school.example/.well-known/coursepay": wellKnownDoc,
		"https://school.example/payout/creator@school.example": `{
			"handle": "creator@school.example",
			"address": "1BvBMSEYstWetqTFn5Au4m4GFg7xJaNVN2"
		}`,
	}}

	r := NewResolverWithDNS(client, noSRV())
	addr, err := r.ResolveAddress("creator@school.example")
	require.NoError(t, err)
	assert.Equal(t, "1BvBMSEYstWetqTFn5Au4m4GFg7xJaNVN2", addr)
}

func TestResolveAddress_SRVEndpoint(t *testing.T) {
	// The domain publishes an SRV record; discovery goes to that endpoint
	// while template variables still expand with the handle's domain.
	dns := &mockDNSResolver{srvs: []*net.SRV{
		{Target: "cap.school.example.", Port: 8443, Priority: 1, Weight: 1},
	}}
	client := &mockHTTPClient{responses: map[string]string{
		"https://cap.school.example:8443/.well-known/coursepay": wellKnownDoc,
		"https://school.example/payout/creator@school.example": `{
			"handle": "creator@school.example",
			"address": "1BvBMSEYstWetqTFn5Au4m4GFg7xJaNVN2"
		}`,
	}}

	r := NewResolverWithDNS(client, dns)
	addr, err := r.ResolveAddress("creator@school.example")
	require.NoError(t, err)
	assert.Equal(t, "1BvBMSEYstWetqTFn5Au4m4GFg7xJaNVN2", addr)
}

func TestResolveAddress_Errors(t *testing.T) {
	// Malformed handle.
	r := NewResolverWithDNS(&mockHTTPClient{}, noSRV())
	_, err := r.ResolveAddress("not-a-handle")
	assert.ErrorIs(t, err, ErrBadHandle)

	// Domain without the payout capability.
	client := &mockHTTPClient{responses: map[string]string{
		"https://school.example/.well-known/coursepay": `{"version":"1.0","capabilities":{}}`,
	}}
	r = NewResolverWithDNS(client, noSRV())
	_, err = r.ResolveAddress("creator@school.example")
	assert.ErrorIs(t, err, ErrNoPayoutCapability)

	// Destination endpoint returns an empty address.
	client = &mockHTTPClient{responses: map[string]string{
		"https://school.example/.well-known/coursepay":         wellKnownDoc,
		"https://school.example/payout/creator@school.example": `{"handle":"creator@school.example","address":""}`,
	}}
	r = NewResolverWithDNS(client, noSRV())
	_, err = r.ResolveAddress("creator@school.example")
	assert.ErrorIs(t, err, ErrResolutionFailed)
}

// --- DNS endpoint resolution tests ---

func TestResolveEndpoints_SortsByPriorityThenWeight(t *testing.T) {
	resolver := &mockDNSResolver{srvs: []*net.SRV{
		{Target: "c.example.", Port: 443, Priority: 10, Weight: 5},
		{Target: "a.example.", Port: 443, Priority: 1, Weight: 1},
		{Target: "b.example.", Port: 8443, Priority: 10, Weight: 50},
	}}

	endpoints, err := ResolveEndpointsWithResolver("school.example", resolver)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.example:443", "b.example:8443", "c.example:443"}, endpoints)
}

func TestResolveEndpoints_Errors(t *testing.T) {
	_, err := ResolveEndpointsWithResolver("", &mockDNSResolver{})
	assert.ErrorIs(t, err, ErrDNSLookupFailed)

	_, err = ResolveEndpointsWithResolver("school.example",
		&mockDNSResolver{err: fmt.Errorf("NXDOMAIN")})
	assert.ErrorIs(t, err, ErrDNSLookupFailed)

	_, err = ResolveEndpointsWithResolver("school.example", &mockDNSResolver{})
	assert.ErrorIs(t, err, ErrNoEndpoints)
}
