// Package ratelimit throttles AI theme imports per user and per client IP.
package ratelimit

import (
	"context"
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

// Config holds rate limit configuration.
type Config struct {
	Cooldown     time.Duration // Minimum time between imports by one user
	MaxPerHour   int           // Max imports per user per hour
	MaxIPPerHour int           // Max imports per client IP per hour

	// Clock for testing (nil uses real time)
	Clock Clock
}

// DefaultConfig returns production defaults.
func DefaultConfig() *Config {
	return &Config{
		Cooldown:     10 * time.Second,
		MaxPerHour:   20,
		MaxIPPerHour: 60,
	}
}

// LimitResult contains the result of a rate limit check.
type LimitResult struct {
	Allowed    bool
	RetryAfter time.Duration
	Reason     string // For logging
}

// entry tracks request counts and timestamps within a one hour window.
type entry struct {
	count   int
	firstAt time.Time
	lastAt  time.Time
}

type Limiter struct {
	config *Config
	clock  Clock
	mu     sync.RWMutex
	byUser map[int64]*entry
	byIP   map[string]*entry

	cleanupCtx    context.Context
	cleanupCancel context.CancelFunc
	cleanupOnce   sync.Once
	cleanupWg     sync.WaitGroup
}

// New creates a new rate limiter with the given config.
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
		config:        cfg,
		clock:         clock,
		byUser:        make(map[int64]*entry),
		byIP:          make(map[string]*entry),
		cleanupCtx:    ctx,
		cleanupCancel: cancel,
	}
}

// Close stops the cleanup goroutine and releases resources.
func (l *Limiter) Close() {
	l.cleanupCancel()
	l.cleanupWg.Wait()
}

// Check reports whether userID may import another theme.
// It does not record the attempt; call Record once the import is accepted.
func (l *Limiter) Check(userID int64, ip string) LimitResult {
	l.startCleanup()
	now := l.clock.Now()

	l.mu.RLock()
	defer l.mu.RUnlock()

	if e := l.byUser[userID]; e != nil {
		if elapsed := now.Sub(e.lastAt); elapsed < l.config.Cooldown {
			return LimitResult{
				Allowed:    false,
				RetryAfter: l.config.Cooldown - elapsed,
				Reason:     "cooldown",
			}
		}
		if now.Sub(e.firstAt) < time.Hour && e.count >= l.config.MaxPerHour {
			return LimitResult{
				Allowed:    false,
				RetryAfter: time.Hour - now.Sub(e.firstAt),
				Reason:     "hourly_limit",
			}
		}
	}

	if e := l.byIP[ip]; e != nil && l.config.MaxIPPerHour > 0 {
		if now.Sub(e.firstAt) < time.Hour && e.count >= l.config.MaxIPPerHour {
			return LimitResult{
				Allowed:    false,
				RetryAfter: time.Hour - now.Sub(e.firstAt),
				Reason:     "ip_hourly_limit",
			}
		}
	}

	return LimitResult{Allowed: true}
}

// Record counts an accepted import against userID and ip.
func (l *Limiter) Record(userID int64, ip string) {
	now := l.clock.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	l.byUser[userID] = bump(l.byUser[userID], now)
	l.byIP[ip] = bump(l.byIP[ip], now)
}

func bump(e *entry, now time.Time) *entry {
	if e == nil || now.Sub(e.firstAt) >= time.Hour {
		return &entry{count: 1, firstAt: now, lastAt: now}
	}
	e.count++
	e.lastAt = now
	return e
}

func (l *Limiter) startCleanup() {
	l.cleanupOnce.Do(func() {
		l.cleanupWg.Add(1)
		go func() {
			defer l.cleanupWg.Done()
			ticker := time.NewTicker(5 * time.Minute)
			defer ticker.Stop()
			for {
				select {
				case <-l.cleanupCtx.Done():
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

	for k, e := range l.byUser {
		if now.Sub(e.lastAt) > time.Hour {
			delete(l.byUser, k)
		}
	}
	for k, e := range l.byIP {
		if now.Sub(e.lastAt) > time.Hour {
			delete(l.byIP, k)
		}
	}
}

// GetClientIP extracts the client IP from a request.
// When trustProxy is true, uses the rightmost public IP from X-Forwarded-For.
// When trustProxy is false, X-Forwarded-For is ignored.
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
		if parsed := net.ParseIP(r.RemoteAddr); parsed != nil {
			return r.RemoteAddr
		}
		if idx := strings.LastIndex(r.RemoteAddr, ":"); idx != -1 {
			candidate := r.RemoteAddr[:idx]
			if net.ParseIP(candidate) != nil {
				return candidate
			}
		}
		return r.RemoteAddr
	}
	return ip
}

// privateNetworks holds parsed CIDR ranges for private/reserved IPs.
var privateNetworks []*net.IPNet

func init() {
	privateRanges := []string{
		"10.0.0.0/8",
		"172.16.0.0/12",
		"192.168.0.0/16",
		"127.0.0.0/8",
		"::1/128",
		"fc00::/7",
		"fe80::/10", // Link-local
	}
	for _, cidr := range privateRanges {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			panic("invalid private CIDR: " + cidr)
		}
		privateNetworks = append(privateNetworks, network)
	}
}

// isPrivateIP handles IPv4 and IPv4-mapped IPv6 addresses.
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

// LogRateLimitExceeded logs a rejected import.
func LogRateLimitExceeded(ctx context.Context, userID int64, ip string, result LimitResult) {
	log.Ctx(ctx).Warn().
		Str("event", "rate_limit_exceeded").
		Int64("user_id", userID).
		Str("ip", ip).
		Str("reason", result.Reason).
		Dur("retry_after", result.RetryAfter).
		Msg("Theme import rate limit exceeded")
}
