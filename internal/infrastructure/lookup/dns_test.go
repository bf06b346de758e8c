package lookup

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startDNSServer serves a fixed zone on a random local UDP port.
func startDNSServer(t *testing.T, handler dns.HandlerFunc) string {
	t.Helper()

	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)

	started := make(chan struct{})
	server := &dns.Server{PacketConn: pc, Handler: handler, NotifyStartedFunc: func() { close(started) }}
	go func() { _ = server.ActivateAndServe() }()
	<-started
	t.Cleanup(func() { _ = server.Shutdown() })

	return pc.LocalAddr().String()
}

func zoneHandler(w dns.ResponseWriter, r *dns.Msg) {
	m := new(dns.Msg)
	m.SetReply(r)
	q := r.Question[0]
	hdr := dns.RR_Header{Name: q.Name, Rrtype: q.Qtype, Class: dns.ClassINET, Ttl: 60}

	switch q.Name {
	case "example.test.":
		if q.Qtype == dns.TypeA {
			m.Answer = append(m.Answer,
				&dns.A{Hdr: hdr, A: net.ParseIP("192.0.2.1")},
				&dns.A{Hdr: hdr, A: net.ParseIP("192.0.2.2")},
			)
		}
	case "v6only.test.":
		if q.Qtype == dns.TypeAAAA {
			m.Answer = append(m.Answer, &dns.AAAA{Hdr: hdr, AAAA: net.ParseIP("2001:db8::1")})
		}
	case "empty.test.":
	case "broken.test.":
		m.Rcode = dns.RcodeServerFailure
	default:
		m.Rcode = dns.RcodeNameError
	}
	_ = w.WriteMsg(m)
}

func TestDNSResolver_LookupHost(t *testing.T) {
	addr := startDNSServer(t, zoneHandler)
	r := NewDNSResolver([]string{addr}, time.Second, nil)

	tests := []struct {
		host    string
		want    int
		wantErr bool
	}{
		{host: "example.test", want: 2},
		{host: "v6only.test", want: 1},
		{host: "empty.test", want: 0},
		{host: "missing.test", want: 0},
		{host: "broken.test", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			n, err := r.LookupHost(context.Background(), tt.host)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "SERVFAIL")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, n)
		})
	}
}

func TestDNSResolver_FallsBackToNextServer(t *testing.T) {
	good := startDNSServer(t, zoneHandler)

	// Nothing listens on this port once the socket is closed.
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	dead := pc.LocalAddr().String()
	require.NoError(t, pc.Close())

	r := NewDNSResolver([]string{dead, good}, 200*time.Millisecond, nil)

	n, err := r.LookupHost(context.Background(), "example.test")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestDNSResolver_ContextTimeout(t *testing.T) {
	silent := startDNSServer(t, func(dns.ResponseWriter, *dns.Msg) {})
	r := NewDNSResolver([]string{silent}, 5*time.Second, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := r.LookupHost(ctx, "example.test")
	require.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestNewDNSResolver_DefaultsPort(t *testing.T) {
	r := NewDNSResolver([]string{"192.0.2.53", "[2001:db8::53]:5353"}, 0, nil)
	assert.Equal(t, []string{"192.0.2.53:53", "[2001:db8::53]:5353"}, r.servers)
	assert.Equal(t, defaultDNSTimeout, r.timeout)
}
