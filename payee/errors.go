package payee

import "errors"

var (
	// ErrBadHandle indicates the payee handle is not of the form alias@domain.
	ErrBadHandle = errors.New("payee: malformed payee handle")

	// ErrDiscoveryFailed indicates the well-known capability document could
	// not be fetched or parsed.
	ErrDiscoveryFailed = errors.New("payee: capability discovery failed")

	// ErrNoPayoutCapability indicates the domain advertises no payout
	// destination endpoint.
	ErrNoPayoutCapability = errors.New("payee: no payout destination capability")

	// ErrResolutionFailed indicates the payout destination endpoint failed.
	ErrResolutionFailed = errors.New("payee: payout destination resolution failed")

	// ErrDNSLookupFailed indicates a DNS query failed.
	ErrDNSLookupFailed = errors.New("payee: DNS lookup failed")

	// ErrDNSSECValidationFailed indicates the resolver response was not
	// DNSSEC-authenticated.
	ErrDNSSECValidationFailed = errors.New("payee: DNSSEC validation failed")

	// ErrNoEndpoints indicates no SRV endpoints exist for the domain.
	ErrNoEndpoints = errors.New("payee: no endpoints for domain")
)
