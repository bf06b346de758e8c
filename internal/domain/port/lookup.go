package port

import (
	"context"
	"time"
)

// HostResolver resolves a host name. It returns the number of addresses found;
// zero with a nil error means the name does not exist.
type HostResolver interface {
	LookupHost(ctx context.Context, host string) (int, error)
}

// CertificateVerifier performs a TLS handshake with host:port. It returns
// false with a nil error when the peer presented an invalid certificate, and a
// non-nil error when the handshake could not be evaluated.
type CertificateVerifier interface {
	VerifyCertificate(ctx context.Context, host string, port int) (bool, error)
}

// DomainAgeLookup returns the registration time of a registrable domain.
type DomainAgeLookup interface {
	CreatedAt(ctx context.Context, domain string) (time.Time, error)
}
