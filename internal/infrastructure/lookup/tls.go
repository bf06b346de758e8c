package lookup

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"net"
	"strconv"
)

// TLSVerifier implements port.CertificateVerifier with a verifying TLS handshake.
type TLSVerifier struct {
	rootCAs *x509.CertPool
}

// NewTLSVerifier creates a verifier. A nil pool uses the system roots.
func NewTLSVerifier(rootCAs *x509.CertPool) *TLSVerifier {
	return &TLSVerifier{rootCAs: rootCAs}
}

// VerifyCertificate dials host:port and verifies the certificate chain and
// host name. Certificate failures return false with a nil error; connection
// failures return an error.
func (v *TLSVerifier) VerifyCertificate(ctx context.Context, host string, port int) (bool, error) {
	dialer := &tls.Dialer{
		Config: &tls.Config{
			ServerName: host,
			RootCAs:    v.rootCAs,
			MinVersion: tls.VersionTLS12,
		},
	}

	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		if isCertificateError(err) {
			return false, nil
		}
		return false, err
	}
	_ = conn.Close()
	return true, nil
}

func isCertificateError(err error) bool {
	var verification *tls.CertificateVerificationError
	var unknownAuthority x509.UnknownAuthorityError
	var hostname x509.HostnameError
	var invalid x509.CertificateInvalidError
	return errors.As(err, &verification) ||
		errors.As(err, &unknownAuthority) ||
		errors.As(err, &hostname) ||
		errors.As(err, &invalid)
}
