package app

import (
	"fmt"
	"net"
	"net/netip"
)

// NormalizeAddr reduces a remote address ("1.2.3.4:5678", "[::1]:80" or a
// bare IP) to its canonical IP string so blocklist comparisons are
// format-independent.
func NormalizeAddr(remote string) (string, error) {
	host := remote
	if h, _, err := net.SplitHostPort(remote); err == nil {
		host = h
	}
	ip, err := netip.ParseAddr(host)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrBadAddress, remote)
	}
	return ip.Unmap().String(), nil
}
