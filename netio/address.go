package netio

import (
	"fmt"
	"net"

	"golang.org/x/sys/unix"

	"github.com/agata-borkowska-clark/reactorhttp/status"
)

// Address is a resolved IPv4 or IPv6 endpoint ready to pass to bind/connect.
// It is deliberately narrower than net.Addr: the reactor works in raw
// sockaddr terms, grounded on the teacher's toSockAddr (poller_epoll.go).
type Address struct {
	domain int
	sock   unix.Sockaddr
	host   string
	port   int
}

// ResolveTCP resolves host:port into an Address suitable for Bind or
// Socket.Connect. Resolution itself is a blocking syscall (as it is in the
// teacher); this module accepts that cost only at startup/accept time, not
// on the per-request hot path.
func ResolveTCP(host string, port int) (Address, error) {
	ips, err := net.LookupIP(host)
	if err != nil {
		if dnsErr, ok := err.(*net.DNSError); ok && dnsErr.IsTemporary {
			return Address{}, status.AddressInfoError(status.AddressInfoTemporaryFailure,
				fmt.Sprintf("resolve %s: %v", host, err))
		}
		return Address{}, status.AddressInfoError(status.AddressInfoNoSuchHost,
			fmt.Sprintf("resolve %s: %v", host, err))
	}
	for _, ip := range ips {
		if ipv4 := ip.To4(); len(ipv4) == net.IPv4len {
			return Address{
				domain: unix.AF_INET,
				sock:   &unix.SockaddrInet4{Port: port, Addr: [4]byte(ipv4)},
				host:   host,
				port:   port,
			}, nil
		}
	}
	for _, ip := range ips {
		if ipv6 := ip.To16(); len(ipv6) == net.IPv6len {
			return Address{
				domain: unix.AF_INET6,
				sock:   &unix.SockaddrInet6{Port: port, Addr: [16]byte(ipv6)},
				host:   host,
				port:   port,
			}, nil
		}
	}
	return Address{}, status.AddressInfoError(status.AddressInfoFamilyMismatch,
		fmt.Sprintf("%s has no usable A/AAAA record", host))
}

// String renders the address in host:port form.
func (a Address) String() string {
	return fmt.Sprintf("%s:%d", a.host, a.port)
}
