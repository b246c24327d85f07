package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JonMunkholm/leopold/internal/core"
)

func TestTrustedRealIP(t *testing.T) {
	tests := []struct {
		name       string
		trusted    []string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{
			name:       "no proxies configured ignores headers",
			remoteAddr: "203.0.113.7:5000",
			headers:    map[string]string{"X-Real-IP": "198.51.100.1"},
			want:       "203.0.113.7",
		},
		{
			name:       "trusted proxy uses X-Real-IP",
			trusted:    []string{"10.0.0.0/8"},
			remoteAddr: "10.1.2.3:443",
			headers:    map[string]string{"X-Real-IP": "198.51.100.1"},
			want:       "198.51.100.1",
		},
		{
			name:       "trusted proxy uses first X-Forwarded-For hop",
			trusted:    []string{"10.0.0.1"},
			remoteAddr: "10.0.0.1:443",
			headers:    map[string]string{"X-Forwarded-For": "198.51.100.2, 10.0.0.5"},
			want:       "198.51.100.2",
		},
		{
			name:       "untrusted source keeps connection address",
			trusted:    []string{"10.0.0.0/8"},
			remoteAddr: "192.0.2.9:1234",
			headers:    map[string]string{"X-Forwarded-For": "198.51.100.2"},
			want:       "192.0.2.9",
		},
		{
			name:       "invalid forwarded address is ignored",
			trusted:    []string{"10.0.0.0/8"},
			remoteAddr: "10.0.0.1:443",
			headers:    map[string]string{"X-Real-IP": "not-an-ip"},
			want:       "10.0.0.1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotCtx, gotAddr, gotUA string
			h := TrustedRealIP(tt.trusted)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotCtx = core.ClientIPFromContext(r.Context())
				gotUA = core.UserAgentFromContext(r.Context())
				gotAddr = ClientIP(r)
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			req.Header.Set("User-Agent", "test-agent")
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			h.ServeHTTP(httptest.NewRecorder(), req)

			if gotCtx != tt.want {
				t.Errorf("context client IP = %q, want %q", gotCtx, tt.want)
			}
			if gotAddr != tt.want {
				t.Errorf("ClientIP() = %q, want %q", gotAddr, tt.want)
			}
			if gotUA != "test-agent" {
				t.Errorf("context user agent = %q, want %q", gotUA, "test-agent")
			}
		})
	}
}

func TestClientIP_WithoutMiddleware(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:8080"
	if got := ClientIP(req); got != "192.0.2.1" {
		t.Errorf("ClientIP() = %q, want %q", got, "192.0.2.1")
	}
}
