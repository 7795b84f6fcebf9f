package ratelimit

import (
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"
)

// mockClock is a controllable clock for testing.
type mockClock struct {
	mu  sync.Mutex
	now time.Time
}

func newMockClock() *mockClock {
	return &mockClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
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

func newTestLimiter(t *testing.T, clock *mockClock) *Limiter {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Clock = clock
	limiter := New(cfg)
	t.Cleanup(limiter.Close)
	return limiter
}

func TestPasswordReset_Cooldown(t *testing.T) {
	clock := newMockClock()
	limiter := newTestLimiter(t, clock)
	email, ip := "pat@example.com", "203.0.113.10"

	if result := limiter.CheckPasswordReset(email, ip); !result.Allowed {
		t.Fatalf("first request should be allowed, got %s", result.Reason)
	}
	limiter.RecordPasswordReset(email, ip)

	clock.Advance(30 * time.Second)
	result := limiter.CheckPasswordReset(email, ip)
	if result.Allowed || result.Reason != "cooldown" {
		t.Fatalf("expected cooldown, got %+v", result)
	}
	if result.RetryAfter != 30*time.Second {
		t.Fatalf("expected RetryAfter 30s, got %v", result.RetryAfter)
	}

	clock.Advance(31 * time.Second)
	if result := limiter.CheckPasswordReset(email, ip); !result.Allowed {
		t.Fatalf("request after cooldown should be allowed, got %s", result.Reason)
	}
}

func TestPasswordReset_HourlyLimitAndNormalization(t *testing.T) {
	clock := newMockClock()
	limiter := newTestLimiter(t, clock)

	for i := 0; i < 5; i++ {
		limiter.RecordPasswordReset("Pat@Example.com ", "203.0.113.10")
		clock.Advance(2 * time.Minute)
	}

	result := limiter.CheckPasswordReset("pat@example.com", "198.51.100.7")
	if result.Allowed || result.Reason != "hourly_limit" {
		t.Fatalf("expected hourly_limit across case variants, got %+v", result)
	}

	clock.Advance(time.Hour)
	if result := limiter.CheckPasswordReset("pat@example.com", "198.51.100.7"); !result.Allowed {
		t.Fatalf("expected limit to reset after an hour, got %s", result.Reason)
	}
}

func TestPasswordReset_IPLimit(t *testing.T) {
	clock := newMockClock()
	limiter := newTestLimiter(t, clock)
	ip := "203.0.113.10"

	for i := 0; i < 20; i++ {
		limiter.RecordPasswordReset(fmt.Sprintf("user%d@example.com", i), ip)
	}

	result := limiter.CheckPasswordReset("fresh@example.com", ip)
	if result.Allowed || result.Reason != "ip_hourly_limit" {
		t.Fatalf("expected ip_hourly_limit, got %+v", result)
	}
	if result := limiter.CheckPasswordReset("fresh@example.com", "198.51.100.7"); !result.Allowed {
		t.Fatalf("other IPs should be unaffected, got %s", result.Reason)
	}
}

func TestLogin_LockoutAfterFailures(t *testing.T) {
	clock := newMockClock()
	limiter := newTestLimiter(t, clock)
	email, ip := "pat@example.com", "203.0.113.10"

	for i := 1; i <= 4; i++ {
		if locked := limiter.RecordLoginFailure(email, ip); locked {
			t.Fatalf("failure %d should not lock the account", i)
		}
		if result := limiter.CheckLogin(email, ip); !result.Allowed {
			t.Fatalf("attempt after %d failures should be allowed, got %s", i, result.Reason)
		}
	}
	if locked := limiter.RecordLoginFailure(email, ip); !locked {
		t.Fatal("fifth failure should start a lockout")
	}

	result := limiter.CheckLogin(email, ip)
	if result.Allowed || result.Reason != "lockout" || result.RetryAfter != 15*time.Minute {
		t.Fatalf("expected 15m lockout, got %+v", result)
	}

	clock.Advance(15 * time.Minute)
	if result := limiter.CheckLogin(email, ip); !result.Allowed {
		t.Fatalf("expected lockout to expire, got %s", result.Reason)
	}
	if locked := limiter.RecordLoginFailure(email, ip); locked {
		t.Fatal("first failure after an expired lockout should start a fresh count")
	}
}

func TestLogin_ResetOnSuccess(t *testing.T) {
	clock := newMockClock()
	limiter := newTestLimiter(t, clock)
	email, ip := "pat@example.com", "203.0.113.10"

	for i := 0; i < 4; i++ {
		limiter.RecordLoginFailure(email, ip)
	}
	limiter.ResetLogin(email)

	for i := 0; i < 4; i++ {
		if locked := limiter.RecordLoginFailure(email, ip); locked {
			t.Fatalf("failure %d after reset should not lock", i+1)
		}
	}
}

func TestLogin_IPLimit(t *testing.T) {
	clock := newMockClock()
	cfg := DefaultConfig()
	cfg.Clock = clock
	cfg.LoginMaxIPPerHour = 3
	limiter := New(cfg)
	defer limiter.Close()

	for i := 0; i < 3; i++ {
		limiter.RecordLoginFailure(fmt.Sprintf("user%d@example.com", i), "203.0.113.10")
	}
	result := limiter.CheckLogin("someone@example.com", "203.0.113.10")
	if result.Allowed || result.Reason != "ip_hourly_limit" {
		t.Fatalf("expected ip_hourly_limit, got %+v", result)
	}
}

func TestConcurrentAccess(t *testing.T) {
	limiter := New(nil)
	defer limiter.Close()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			email := fmt.Sprintf("user%d@example.com", i%5)
			limiter.CheckLogin(email, "203.0.113.10")
			limiter.RecordLoginFailure(email, "203.0.113.10")
			limiter.CheckPasswordReset(email, "203.0.113.10")
			limiter.RecordPasswordReset(email, "203.0.113.10")
			limiter.ResetLogin(email)
		}(i)
	}
	wg.Wait()
}

func TestCleanupDropsStaleEntries(t *testing.T) {
	clock := newMockClock()
	limiter := newTestLimiter(t, clock)

	limiter.RecordPasswordReset("pat@example.com", "203.0.113.10")
	limiter.RecordLoginFailure("pat@example.com", "203.0.113.10")
	clock.Advance(2 * time.Hour)
	limiter.cleanup()

	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	if len(limiter.resetByID)+len(limiter.resetByIP)+len(limiter.loginByID)+len(limiter.loginByIP) != 0 {
		t.Fatal("expected cleanup to remove stale entries")
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		headers    map[string]string
		remoteAddr string
		trustProxy bool
		expected   string
	}{
		{"rightmost public forwarded IP", map[string]string{"X-Forwarded-For": "203.0.113.50, 10.0.0.1"}, "10.0.0.1:12345", true, "203.0.113.50"},
		{"all forwarded IPs private", map[string]string{"X-Forwarded-For": "192.168.1.1, 10.0.0.1"}, "10.0.0.1:12345", true, "10.0.0.1"},
		{"real IP header", map[string]string{"X-Real-IP": "203.0.113.51"}, "10.0.0.1:12345", true, "203.0.113.51"},
		{"untrusted proxy ignores forwarded", map[string]string{"X-Forwarded-For": "1.2.3.4"}, "192.168.1.100:54321", false, "192.168.1.100"},
		{"remote address without port", map[string]string{}, "192.168.1.100", false, "192.168.1.100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := http.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := GetClientIP(r, tt.trustProxy); got != tt.expected {
				t.Errorf("GetClientIP() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestMaskEmail(t *testing.T) {
	cases := map[string]string{
		"Pat.Member@Example.com": "pa***@example.com",
		"ab@example.com":         "***@example.com",
		"not-an-email":           "***",
	}
	for in, want := range cases {
		if got := MaskEmail(in); got != want {
			t.Errorf("MaskEmail(%q) = %q, want %q", in, got, want)
		}
	}
}
