// Package ratelimit throttles login attempts and password reset requests
// per account and per client IP.
package ratelimit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Clock interface for testing time-dependent behavior.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

type Config struct {
	// Password reset requests
	ResetCooldown     time.Duration // Minimum time between reset emails per account (default: 60s)
	ResetMaxPerHour   int           // Per account (default: 5)
	ResetMaxIPPerHour int           // Per IP (default: 20)

	// Login attempts
	LoginMaxFailures  int           // Failed logins before lockout (default: 5)
	LoginLockout      time.Duration // default: 15m
	LoginMaxIPPerHour int           // Failed logins per IP (default: 50)

	Clock Clock
}

// DefaultConfig returns production-ready defaults.
func DefaultConfig() *Config {
	return &Config{
		ResetCooldown:     60 * time.Second,
		ResetMaxPerHour:   5,
		ResetMaxIPPerHour: 20,
		LoginMaxFailures:  5,
		LoginLockout:      15 * time.Minute,
		LoginMaxIPPerHour: 50,
	}
}

// LimitResult contains the result of a rate limit check.
type LimitResult struct {
	Allowed    bool
	RetryAfter time.Duration
	Reason     string // For logging
}

func allowed() LimitResult { return LimitResult{Allowed: true} }

func denied(retryAfter time.Duration, reason string) LimitResult {
	return LimitResult{RetryAfter: retryAfter, Reason: reason}
}

// window counts events since firstAt; lockedAt is set once a lockout starts.
type window struct {
	count    int
	firstAt  time.Time
	lastAt   time.Time
	lockedAt time.Time
}

// bucket is one keyed family of windows, e.g. reset requests per IP.
type bucket map[string]*window

// hit records an event, restarting the window once it is older than span.
func (b bucket) hit(key string, now time.Time, span time.Duration) *window {
	w := b[key]
	if w == nil || now.Sub(w.firstAt) >= span {
		w = &window{firstAt: now}
		b[key] = w
	}
	w.count++
	w.lastAt = now
	return w
}

// over reports whether key has reached max events within the last hour.
func (b bucket) over(key string, now time.Time, max int) (time.Duration, bool) {
	w := b[key]
	if w == nil {
		return 0, false
	}
	age := now.Sub(w.firstAt)
	if age < time.Hour && w.count >= max {
		return time.Hour - age, true
	}
	return 0, false
}

func (b bucket) prune(now time.Time, maxAge time.Duration) {
	for k, w := range b {
		if now.Sub(w.lastAt) > maxAge {
			delete(b, k)
		}
	}
}

type Limiter struct {
	config *Config
	clock  Clock

	mu          sync.Mutex
	resetByID   bucket
	resetByIP   bucket
	loginByID   bucket
	loginByIP   bucket
	cleanupOnce sync.Once
	stop        context.CancelFunc
	stopped     context.Context
	wg          sync.WaitGroup
}

func New(cfg *Config) *Limiter {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	clock := cfg.Clock
	if clock == nil {
		clock = realClock{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Limiter{
		config:    cfg,
		clock:     clock,
		resetByID: bucket{},
		resetByIP: bucket{},
		loginByID: bucket{},
		loginByIP: bucket{},
		stop:      cancel,
		stopped:   ctx,
	}
}

// Close stops the cleanup goroutine.
func (l *Limiter) Close() {
	l.stop()
	l.wg.Wait()
}

// CheckPasswordReset reports whether a reset email may be sent for email from ip.
// It does not record anything; call RecordPasswordReset once the request is accepted.
func (l *Limiter) CheckPasswordReset(email, ip string) LimitResult {
	l.startCleanup()
	now := l.clock.Now()
	idKey := hashKey("reset:id:", normalizeIdentifier(email))
	ipKey := hashKey("reset:ip:", ip)

	l.mu.Lock()
	defer l.mu.Unlock()

	if w := l.resetByID[idKey]; w != nil {
		if elapsed := now.Sub(w.lastAt); elapsed < l.config.ResetCooldown {
			return denied(l.config.ResetCooldown-elapsed, "cooldown")
		}
	}
	if retry, over := l.resetByID.over(idKey, now, l.config.ResetMaxPerHour); over {
		return denied(retry, "hourly_limit")
	}
	if retry, over := l.resetByIP.over(ipKey, now, l.config.ResetMaxIPPerHour); over {
		return denied(retry, "ip_hourly_limit")
	}
	return allowed()
}

func (l *Limiter) RecordPasswordReset(email, ip string) {
	now := l.clock.Now()
	l.mu.Lock()
	defer l.mu.Unlock()
	l.resetByID.hit(hashKey("reset:id:", normalizeIdentifier(email)), now, time.Hour)
	l.resetByIP.hit(hashKey("reset:ip:", ip), now, time.Hour)
}

// CheckLogin reports whether a login attempt for email from ip may proceed.
func (l *Limiter) CheckLogin(email, ip string) LimitResult {
	l.startCleanup()
	now := l.clock.Now()
	idKey := hashKey("login:id:", normalizeIdentifier(email))
	ipKey := hashKey("login:ip:", ip)

	l.mu.Lock()
	defer l.mu.Unlock()

	if w := l.loginByID[idKey]; w != nil && !w.lockedAt.IsZero() {
		if elapsed := now.Sub(w.lockedAt); elapsed < l.config.LoginLockout {
			return denied(l.config.LoginLockout-elapsed, "lockout")
		}
	}
	if retry, over := l.loginByIP.over(ipKey, now, l.config.LoginMaxIPPerHour); over {
		return denied(retry, "ip_hourly_limit")
	}
	return allowed()
}

// RecordLoginFailure counts a failed login and reports whether it started a lockout.
func (l *Limiter) RecordLoginFailure(email, ip string) (lockedOut bool) {
	now := l.clock.Now()
	idKey := hashKey("login:id:", normalizeIdentifier(email))

	l.mu.Lock()
	defer l.mu.Unlock()

	if w := l.loginByID[idKey]; w != nil && !w.lockedAt.IsZero() && now.Sub(w.lockedAt) >= l.config.LoginLockout {
		delete(l.loginByID, idKey)
	}
	// Failures accumulate until a success or an expired lockout clears them.
	w := l.loginByID.hit(idKey, now, l.config.LoginLockout+time.Hour)
	if w.count >= l.config.LoginMaxFailures && w.lockedAt.IsZero() {
		w.lockedAt = now
		lockedOut = true
	}
	l.loginByIP.hit(hashKey("login:ip:", ip), now, time.Hour)
	return lockedOut
}

// ResetLogin clears the failure count after a successful login.
func (l *Limiter) ResetLogin(email string) {
	l.mu.Lock()
	delete(l.loginByID, hashKey("login:id:", normalizeIdentifier(email)))
	l.mu.Unlock()
}

func hashKey(prefix, value string) string {
	hash := sha256.Sum256([]byte(value))
	return prefix + hex.EncodeToString(hash[:8])
}

// normalizeIdentifier lowercases the identifier to prevent case-based bypass.
func normalizeIdentifier(identifier string) string {
	return strings.ToLower(strings.TrimSpace(identifier))
}

func (l *Limiter) startCleanup() {
	l.cleanupOnce.Do(func() {
		l.wg.Add(1)
		go func() {
			defer l.wg.Done()
			ticker := time.NewTicker(5 * time.Minute)
			defer ticker.Stop()
			for {
				select {
				case <-l.stopped.Done():
					return
				case <-ticker.C:
					l.cleanup()
				}
			}
		}()
	})
}

func (l *Limiter) cleanup() {
	now := l.clock.Now()
	l.mu.Lock()
	defer l.mu.Unlock()

	l.resetByID.prune(now, time.Hour)
	l.resetByIP.prune(now, time.Hour)
	l.loginByID.prune(now, l.config.LoginLockout+time.Hour)
	l.loginByIP.prune(now, time.Hour)
}

// GetClientIP extracts the client IP from a request.
// With trustProxy the rightmost public X-Forwarded-For entry wins, since that
// is the one the proxy appended. Without it forwarding headers are ignored.
func GetClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			parts := strings.Split(xff, ",")
			for i := len(parts) - 1; i >= 0; i-- {
				ip := strings.TrimSpace(parts[i])
				if ip != "" && !isPrivateIP(ip) {
					return ip
				}
			}
			return strings.TrimSpace(parts[len(parts)-1])
		}
		if xri := r.Header.Get("X-Real-IP"); xri != "" {
			return strings.TrimSpace(xri)
		}
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

var privateNetworks = mustParseCIDRs(
	"10.0.0.0/8",
	"172.16.0.0/12",
	"192.168.0.0/16",
	"127.0.0.0/8",
	"::1/128",
	"fc00::/7",
	"fe80::/10",
)

func mustParseCIDRs(cidrs ...string) []*net.IPNet {
	out := make([]*net.IPNet, 0, len(cidrs))
	for _, cidr := range cidrs {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			panic("invalid private CIDR: " + cidr)
		}
		out = append(out, network)
	}
	return out
}

// isPrivateIP checks if an IP is in a private/reserved range, including
// IPv4-mapped IPv6 forms.
func isPrivateIP(ipStr string) bool {
	ip := net.ParseIP(ipStr)
	if ip == nil {
		return false
	}
	if ipv4 := ip.To4(); ipv4 != nil {
		ip = ipv4
	}
	for _, network := range privateNetworks {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

// MaskEmail hides most of the local part for logging.
func MaskEmail(email string) string {
	email = normalizeIdentifier(email)
	local, domain, ok := strings.Cut(email, "@")
	if !ok {
		return "***"
	}
	if len(local) > 2 {
		return local[:2] + "***@" + domain
	}
	return "***@" + domain
}

// LogRateLimitExceeded logs a rate limit event with a masked email.
func LogRateLimitExceeded(ctx context.Context, limitType, email, ip, reason string) {
	log.Ctx(ctx).Warn().
		Str("event", "rate_limit_exceeded").
		Str("type", limitType).
		Str("email", MaskEmail(email)).
		Str("ip", ip).
		Str("reason", reason).
		Msg("Rate limit exceeded")
}
