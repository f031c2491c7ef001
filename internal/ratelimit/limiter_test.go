package ratelimit

import (
	"net/http"
	"sync"
	"testing"
	"time"
)

type mockClock struct {
	mu  sync.Mutex
	now time.Time
}

func newMockClock() *mockClock {
	return &mockClock{now: time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)}
}

func (c *mockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *mockClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestLimiter(t *testing.T, clock Clock) *Limiter {
	t.Helper()
	limiter := New(&Config{
		Cooldown:     30 * time.Second,
		MaxPerHour:   3,
		MaxIPPerHour: 5,
		Clock:        clock,
	})
	t.Cleanup(limiter.Close)
	return limiter
}

func TestCheck_Cooldown(t *testing.T) {
	clock := newMockClock()
	limiter := newTestLimiter(t, clock)

	if result := limiter.Check(42, "203.0.113.1"); !result.Allowed {
		t.Fatalf("first import blocked: %s", result.Reason)
	}
	limiter.Record(42, "203.0.113.1")

	clock.Advance(10 * time.Second)
	result := limiter.Check(42, "203.0.113.1")
	if result.Allowed || result.Reason != "cooldown" {
		t.Fatalf("Check() within cooldown = %+v", result)
	}
	if result.RetryAfter != 20*time.Second {
		t.Fatalf("RetryAfter = %v, want 20s", result.RetryAfter)
	}

	// Cooldown is per user.
	if result := limiter.Check(7, "203.0.113.1"); !result.Allowed {
		t.Fatalf("other user blocked: %s", result.Reason)
	}

	clock.Advance(20 * time.Second)
	if result := limiter.Check(42, "203.0.113.1"); !result.Allowed {
		t.Fatalf("import after cooldown blocked: %s", result.Reason)
	}
}

func TestCheck_HourlyLimit(t *testing.T) {
	clock := newMockClock()
	limiter := newTestLimiter(t, clock)

	for i := 0; i < 3; i++ {
		if result := limiter.Check(42, "203.0.113.1"); !result.Allowed {
			t.Fatalf("import %d blocked: %s", i+1, result.Reason)
		}
		limiter.Record(42, "203.0.113.1")
		clock.Advance(time.Minute)
	}

	result := limiter.Check(42, "203.0.113.1")
	if result.Allowed || result.Reason != "hourly_limit" {
		t.Fatalf("fourth import = %+v, want hourly_limit", result)
	}
	if result.RetryAfter != 57*time.Minute {
		t.Fatalf("RetryAfter = %v, want 57m", result.RetryAfter)
	}

	clock.Advance(57 * time.Minute)
	if result := limiter.Check(42, "203.0.113.1"); !result.Allowed {
		t.Fatalf("import after window blocked: %s", result.Reason)
	}
	limiter.Record(42, "203.0.113.1")
	if result := limiter.Check(42, "203.0.113.1"); result.Reason != "cooldown" {
		t.Fatalf("window reset should restart counting, got %+v", result)
	}
}

func TestCheck_IPLimit(t *testing.T) {
	clock := newMockClock()
	limiter := newTestLimiter(t, clock)

	for userID := int64(1); userID <= 5; userID++ {
		limiter.Record(userID, "203.0.113.9")
	}

	result := limiter.Check(6, "203.0.113.9")
	if result.Allowed || result.Reason != "ip_hourly_limit" {
		t.Fatalf("Check() from busy IP = %+v", result)
	}
	if result := limiter.Check(6, "203.0.113.10"); !result.Allowed {
		t.Fatalf("other IP blocked: %s", result.Reason)
	}
}

func TestCleanupDropsIdleEntries(t *testing.T) {
	clock := newMockClock()
	limiter := newTestLimiter(t, clock)

	limiter.Record(42, "203.0.113.1")
	clock.Advance(2 * time.Hour)
	limiter.cleanup()

	limiter.mu.RLock()
	defer limiter.mu.RUnlock()
	if len(limiter.byUser) != 0 || len(limiter.byIP) != 0 {
		t.Fatalf("cleanup kept %d user and %d ip entries", len(limiter.byUser), len(limiter.byIP))
	}
}

func TestGetClientIP_TrustProxy(t *testing.T) {
	tests := []struct {
		name       string
		headers    map[string]string
		remoteAddr string
		trustProxy bool
		expected   string
	}{
		{
			name:       "TrustProxy=true, XFF rightmost public IP",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.50, 10.0.0.1"},
			remoteAddr: "10.0.0.1:12345",
			trustProxy: true,
			expected:   "203.0.113.50", // Rightmost non-private
		},
		{
			name:       "TrustProxy=true, XFF all private",
			headers:    map[string]string{"X-Forwarded-For": "192.168.1.1, 10.0.0.1"},
			remoteAddr: "10.0.0.1:12345",
			trustProxy: true,
			expected:   "10.0.0.1", // Last one when all private
		},
		{
			name:       "TrustProxy=true, X-Real-IP",
			headers:    map[string]string{"X-Real-IP": "203.0.113.51"},
			remoteAddr: "10.0.0.1:12345",
			trustProxy: true,
			expected:   "203.0.113.51",
		},
		{
			name:       "TrustProxy=false, ignores XFF",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.50"},
			remoteAddr: "192.168.1.100:54321",
			trustProxy: false,
			expected:   "192.168.1.100", // Uses RemoteAddr, ignores spoofed XFF
		},
		{
			name:       "TrustProxy=false, ignores X-Real-IP",
			headers:    map[string]string{"X-Real-IP": "203.0.113.51"},
			remoteAddr: "192.168.1.100:54321",
			trustProxy: false,
			expected:   "192.168.1.100",
		},
		{
			name:       "No headers, RemoteAddr only",
			headers:    map[string]string{},
			remoteAddr: "192.168.1.100:54321",
			trustProxy: true,
			expected:   "192.168.1.100",
		},
		{
			name:       "RemoteAddr without port",
			headers:    map[string]string{},
			remoteAddr: "192.168.1.100",
			trustProxy: false,
			expected:   "192.168.1.100",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := http.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}

			got := GetClientIP(r, tt.trustProxy)
			if got != tt.expected {
				t.Errorf("GetClientIP() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestGetClientIP_SpoofingPrevention(t *testing.T) {
	r, _ := http.NewRequest("GET", "/", nil)
	r.Header.Set("X-Forwarded-For", "1.2.3.4")
	r.RemoteAddr = "192.168.1.100:54321"

	got := GetClientIP(r, false)
	if got != "192.168.1.100" {
		t.Errorf("Should ignore X-Forwarded-For when TrustProxy=false, got %q", got)
	}
}
