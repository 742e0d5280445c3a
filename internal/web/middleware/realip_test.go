package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestTrustedRealIP(t *testing.T) {
	trusted := []string{"10.0.0.0/8", "192.168.1.5", "not-an-ip"}

	tests := []struct {
		name   string
		remote string
		xff    string
		realIP string
		want   string
	}{
		{"untrusted peer ignores headers", "203.0.113.9:4000", "1.2.3.4", "", "203.0.113.9:4000"},
		{"trusted peer uses xff", "10.1.2.3:4000", "1.2.3.4", "", "1.2.3.4"},
		{"skips trusted hops from the right", "10.1.2.3:4000", "1.2.3.4, 5.6.7.8, 10.9.9.9", "", "5.6.7.8"},
		{"bare trusted address", "192.168.1.5:80", "1.2.3.4", "", "1.2.3.4"},
		{"x-real-ip without xff", "10.1.2.3:4000", "", "8.8.8.8", "8.8.8.8"},
		{"garbage header keeps peer", "10.1.2.3:4000", "bogus", "", "10.1.2.3:4000"},
		{"all hops trusted", "10.1.2.3:4000", "10.0.0.7, 10.0.0.8", "", "10.0.0.7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			h := TrustedRealIP(trusted)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = r.RemoteAddr
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.realIP != "" {
				req.Header.Set("X-Real-IP", tt.realIP)
			}
			h.ServeHTTP(httptest.NewRecorder(), req)

			if got != tt.want {
				t.Errorf("RemoteAddr = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseTrustedProxies(t *testing.T) {
	got := ParseTrustedProxies([]string{" 10.0.0.1/8 ", "::1", "", "nope"})
	if len(got) != 2 {
		t.Fatalf("got %d prefixes, want 2: %v", len(got), got)
	}
	if got[0].String() != "10.0.0.0/8" {
		t.Errorf("prefix[0] = %s, want 10.0.0.0/8", got[0])
	}
	if got[1].String() != "::1/128" {
		t.Errorf("prefix[1] = %s, want ::1/128", got[1])
	}
}
