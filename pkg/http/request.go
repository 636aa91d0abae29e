package http

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// TimezoneHeader carries the caller's IANA zone name. It only matters for users
// without a stored timezone, whose daily application window follows it.
const TimezoneHeader = "X-Timezone"

// IPConfig lists the reverse proxies whose forwarding headers are believed.
// Entries are CIDR ranges or single addresses; unparsable entries are skipped.
type IPConfig struct {
	TrustedProxies []string

	once sync.Once
	nets []*net.IPNet
}

func (c *IPConfig) trusted(ip net.IP) bool {
	if c == nil || ip == nil {
		return false
	}
	c.once.Do(func() {
		for _, entry := range c.TrustedProxies {
			entry = strings.TrimSpace(entry)
			if !strings.Contains(entry, "/") {
				single := net.ParseIP(entry)
				if single == nil {
					continue
				}
				bits := 128
				if single.To4() != nil {
					bits = 32
				}
				c.nets = append(c.nets, &net.IPNet{IP: single, Mask: net.CIDRMask(bits, bits)})
				continue
			}
			if _, ipNet, err := net.ParseCIDR(entry); err == nil {
				c.nets = append(c.nets, ipNet)
			}
		}
	})
	for _, n := range c.nets {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

// ExtractClientIP returns the address rate limits and request logs are keyed on.
//
// Forwarding headers count only when the direct peer is a trusted proxy. In that
// case X-Forwarded-For is walked from the right, skipping trusted hops, so entries
// a client prepends itself are never reached. X-Real-IP is the fallback.
func ExtractClientIP(r *http.Request, config *IPConfig) string {
	peer := remoteIP(r)
	if !config.trusted(net.ParseIP(peer)) {
		return peer
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		hops := strings.Split(xff, ",")
		for i := len(hops) - 1; i >= 0; i-- {
			ip := net.ParseIP(strings.TrimSpace(hops[i]))
			if ip == nil {
				break
			}
			if !config.trusted(ip) {
				return ip.String()
			}
		}
	}

	if ip := net.ParseIP(strings.TrimSpace(r.Header.Get("X-Real-IP"))); ip != nil {
		return ip.String()
	}
	return peer
}

// CallerLocation reads TimezoneHeader. A missing or unknown zone yields nil.
func CallerLocation(r *http.Request) *time.Location {
	name := strings.TrimSpace(r.Header.Get(TimezoneHeader))
	if name == "" || len(name) > 64 {
		return nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil
	}
	return loc
}

func remoteIP(r *http.Request) string {
	if r.RemoteAddr == "" {
		return "unknown"
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
