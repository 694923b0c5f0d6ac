package probe

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/miekg/dns"
)

const (
	defaultDNSTimeout  = 5 * time.Second
	fallbackNameserver = "1.1.1.1:53"
	resolvConfPath     = "/etc/resolv.conf"
)

// Lookup failures, as reported by the nameserver.
var (
	ErrNXDomain = errors.New("NXDOMAIN")
	ErrServFail = errors.New("SERVFAIL")
	ErrNoAnswer = errors.New("NOANSWER")
)

// DNSResolver implements engine.HostResolver by querying A and AAAA records
// directly against a single nameserver.
type DNSResolver struct {
	Server string // host:port
	client *dns.Client
}

// NewDNSResolver creates a resolver for server. An empty server uses
// DefaultNameserver.
func NewDNSResolver(server string, timeout time.Duration) *DNSResolver {
	if server == "" {
		server = DefaultNameserver()
	}
	if _, _, err := net.SplitHostPort(server); err != nil {
		server = net.JoinHostPort(server, "53")
	}
	if timeout <= 0 {
		timeout = defaultDNSTimeout
	}
	return &DNSResolver{
		Server: server,
		client: &dns.Client{Net: "udp", Timeout: timeout},
	}
}

// DefaultNameserver returns the first nameserver from the system resolver
// configuration, or a public fallback.
func DefaultNameserver() string {
	cfg, err := dns.ClientConfigFromFile(resolvConfPath)
	if err != nil || len(cfg.Servers) == 0 {
		return fallbackNameserver
	}
	return net.JoinHostPort(cfg.Servers[0], cfg.Port)
}

// Resolve returns nil if host has at least one A or AAAA record.
// IP literals always resolve.
func (r *DNSResolver) Resolve(ctx context.Context, host string) error {
	if net.ParseIP(host) != nil {
		return nil
	}

	var lastErr error
	for _, qtype := range []uint16{dns.TypeA, dns.TypeAAAA} {
		found, err := r.query(ctx, host, qtype)
		if found {
			return nil
		}
		if errors.Is(err, ErrNXDomain) {
			return err
		}
		if err != nil {
			lastErr = err
		}
	}

	if lastErr != nil {
		return lastErr
	}
	return ErrNoAnswer
}

func (r *DNSResolver) query(ctx context.Context, host string, qtype uint16) (bool, error) {
	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(host), qtype)
	msg.RecursionDesired = true

	in, _, err := r.client.ExchangeContext(ctx, msg, r.Server)
	if err != nil {
		return false, fmt.Errorf("query %s via %s: %w", host, r.Server, err)
	}
	if err := classifyRcode(in.Rcode); err != nil {
		return false, err
	}

	for _, rr := range in.Answer {
		switch rr.(type) {
		case *dns.A, *dns.AAAA:
			return true, nil
		}
	}
	return false, nil
}

// classifyRcode maps a response code to NXDOMAIN, SERVFAIL, or nil on success.
func classifyRcode(rcode int) error {
	switch rcode {
	case dns.RcodeSuccess:
		return nil
	case dns.RcodeNameError:
		return ErrNXDomain
	default:
		return fmt.Errorf("%w (%s)", ErrServFail, dns.RcodeToString[rcode])
	}
}
