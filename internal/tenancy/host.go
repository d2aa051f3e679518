package tenancy

import (
	"net"
	"strings"

	"golang.org/x/net/idna"
)

// NormalizeHost turns a Host header value into the form stored in the
// domains table: no port, no trailing dot, lowercase ASCII (punycode).
func NormalizeHost(hostport string) (string, error) {
	host := strings.TrimSpace(hostport)
	if host == "" {
		return "", ErrInvalidHost
	}

	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	} else if strings.HasPrefix(host, "[") && strings.HasSuffix(host, "]") {
		host = host[1 : len(host)-1]
	}

	host = strings.ToLower(strings.TrimSuffix(host, "."))
	if host == "" {
		return "", ErrInvalidHost
	}

	if ip := net.ParseIP(host); ip != nil {
		return ip.String(), nil
	}

	ascii, err := idna.Lookup.ToASCII(host)
	if err != nil || ascii == "" {
		return "", ErrInvalidHost
	}

	return ascii, nil
}
