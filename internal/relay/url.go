package relay

import (
	"fmt"
	"net/url"
)

// ParseURL validates a base server URL. http, https, ws and wss are accepted.
func ParseURL(base string) (*url.URL, error) {
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("relay url %q: %w", base, err)
	}
	switch u.Scheme {
	case "http", "https", "ws", "wss":
	default:
		return nil, fmt.Errorf("relay url %q: unsupported scheme %q", base, u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("relay url %q: missing host", base)
	}
	return u, nil
}
