package http_test

import (
	"net/http/httptest"
	"testing"

	pkghttp "github.com/BradenHooton/jobboard/pkg/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractClientIP(t *testing.T) {
	behindLB := &pkghttp.IPConfig{TrustedProxies: []string{"10.0.0.0/8", "::1/128"}}

	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		realIP     string
		config     *pkghttp.IPConfig
		want       string
	}{
		{
			name:       "direct client cannot spoof forwarding headers",
			remoteAddr: "203.0.113.10:54321",
			xff:        "1.2.3.4, 5.6.7.8",
			realIP:     "192.168.1.1",
			config:     behindLB,
			want:       "203.0.113.10",
		},
		{
			name:       "nil config trusts nobody",
			remoteAddr: "203.0.113.10:54321",
			xff:        "1.2.3.4",
			want:       "203.0.113.10",
		},
		{
			name:       "empty proxy list trusts nobody",
			remoteAddr: "10.0.0.5:54321",
			xff:        "1.2.3.4",
			config:     &pkghttp.IPConfig{},
			want:       "10.0.0.5",
		},
		{
			name:       "invalid entries are skipped",
			remoteAddr: "10.0.0.5:54321",
			xff:        "1.2.3.4",
			config:     &pkghttp.IPConfig{TrustedProxies: []string{"not-a-cidr", "10.0.0/99"}},
			want:       "10.0.0.5",
		},
		{
			name:       "trusted proxy forwards the client",
			remoteAddr: "10.0.0.5:54321",
			xff:        "203.0.113.42",
			config:     behindLB,
			want:       "203.0.113.42",
		},
		{
			name:       "rightmost untrusted hop wins over client-supplied entries",
			remoteAddr: "10.0.0.5:54321",
			xff:        "127.0.0.1, 198.51.100.7, 203.0.113.42, 10.0.0.9",
			config:     behindLB,
			want:       "203.0.113.42",
		},
		{
			name:       "garbage hop stops the walk",
			remoteAddr: "10.0.0.5:54321",
			xff:        "203.0.113.42, garbage",
			realIP:     "203.0.113.50",
			config:     behindLB,
			want:       "203.0.113.50",
		},
		{
			name:       "X-Real-IP when no forwarded-for",
			remoteAddr: "10.0.0.5:54321",
			realIP:     "203.0.113.50",
			config:     behindLB,
			want:       "203.0.113.50",
		},
		{
			name:       "single address entry",
			remoteAddr: "192.0.2.1:443",
			xff:        "203.0.113.42",
			config:     &pkghttp.IPConfig{TrustedProxies: []string{"192.0.2.1"}},
			want:       "203.0.113.42",
		},
		{
			name:       "ipv6 proxy",
			remoteAddr: "[::1]:54321",
			xff:        "2001:db8::1",
			config:     behindLB,
			want:       "2001:db8::1",
		},
		{
			name:       "remote addr without port",
			remoteAddr: "203.0.113.10",
			want:       "203.0.113.10",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.realIP != "" {
				req.Header.Set("X-Real-IP", tt.realIP)
			}

			assert.Equal(t, tt.want, pkghttp.ExtractClientIP(req, tt.config))
		})
	}
}

func TestCallerLocation(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/credits", nil)
	assert.Nil(t, pkghttp.CallerLocation(req))

	req.Header.Set(pkghttp.TimezoneHeader, " America/New_York ")
	loc := pkghttp.CallerLocation(req)
	require.NotNil(t, loc)
	assert.Equal(t, "America/New_York", loc.String())

	req.Header.Set(pkghttp.TimezoneHeader, "Mars/Olympus_Mons")
	assert.Nil(t, pkghttp.CallerLocation(req))
}
