package utils

import (
	"net/http/httptest"
	"testing"
)

func TestIPMatcher(t *testing.T) {
	m := NewIPMatcher([]string{"10.1.0.0/16", " 192.168.1.5 ", "fd00::/8", "garbage", ""})

	tests := []struct {
		ip   string
		want bool
	}{
		{"10.1.42.7", true},
		{"10.2.0.1", false},
		{"192.168.1.5", true},
		{"192.168.1.6", false},
		{"::ffff:10.1.0.1", true},
		{"fd12::1", true},
		{"2001:db8::1", false},
		{"not-an-ip", false},
	}

	for _, tt := range tests {
		t.Run(tt.ip, func(t *testing.T) {
			if got := m.Allow(tt.ip); got != tt.want {
				t.Errorf("Allow(%q) = %v, want %v", tt.ip, got, tt.want)
			}
		})
	}

	if NewIPMatcher([]string{"nope"}).IsEmpty() != true {
		t.Error("matcher with only invalid entries should be empty")
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remote     string
		headers    map[string]string
		trustProxy bool
		want       string
	}{
		{"remote addr", "203.0.113.9:4000", nil, false, "203.0.113.9"},
		{"headers ignored untrusted", "203.0.113.9:4000", map[string]string{"X-Forwarded-For": "1.2.3.4"}, false, "203.0.113.9"},
		{"cloudflare first", "127.0.0.1:1", map[string]string{"CF-Connecting-IP": "5.6.7.8", "X-Forwarded-For": "1.2.3.4"}, true, "5.6.7.8"},
		{"left-most forwarded", "127.0.0.1:1", map[string]string{"X-Forwarded-For": " 1.2.3.4 , 9.9.9.9"}, true, "1.2.3.4"},
		{"real ip", "127.0.0.1:1", map[string]string{"X-Real-IP": "4.4.4.4"}, true, "4.4.4.4"},
		{"ipv6 remote", "[2001:db8::2]:80", nil, false, "2001:db8::2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := ClientIP(r, tt.trustProxy); got != tt.want {
				t.Errorf("ClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}
