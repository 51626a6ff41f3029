// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// testLoginProtection returns a protection instance with a controllable clock.
func testLoginProtection(t *testing.T, maxAttempts int, lockout, window time.Duration) (*LoginProtection, *time.Time) {
	t.Helper()
	lp := NewLoginProtection(LoginProtectionConfig{
		IPRateLimit:       10,
		IPBurst:           100,
		MaxFailedAttempts: maxAttempts,
		LockoutDuration:   lockout,
		AttemptWindow:     window,
	})
	t.Cleanup(lp.Stop)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	lp.now = func() time.Time { return now }
	return lp, &now
}

func TestDefaultLoginProtectionConfig(t *testing.T) {
	cfg := DefaultLoginProtectionConfig()

	if cfg.IPRateLimit != 0.5 {
		t.Errorf("IPRateLimit = %v, want 0.5", cfg.IPRateLimit)
	}
	if cfg.IPBurst != 5 {
		t.Errorf("IPBurst = %d, want 5", cfg.IPBurst)
	}
	if cfg.MaxFailedAttempts != 5 {
		t.Errorf("MaxFailedAttempts = %d, want 5", cfg.MaxFailedAttempts)
	}
	if cfg.LockoutDuration != 15*time.Minute {
		t.Errorf("LockoutDuration = %v, want 15m", cfg.LockoutDuration)
	}
}

func TestNewLoginProtectionDefaultValues(t *testing.T) {
	lp := NewLoginProtection(LoginProtectionConfig{})
	defer lp.Stop()

	if lp.maxFailedAttempts != 5 {
		t.Errorf("maxFailedAttempts = %d, want 5", lp.maxFailedAttempts)
	}
	if lp.lockoutDuration != 15*time.Minute {
		t.Errorf("lockoutDuration = %v, want 15m", lp.lockoutDuration)
	}
}

func TestLoginProtection_Lockout(t *testing.T) {
	lp, _ := testLoginProtection(t, 3, time.Minute, time.Hour)

	for i := range 2 {
		if locked, _ := lp.RecordFailure("alice"); locked {
			t.Fatalf("locked after %d failures", i+1)
		}
	}
	if got := lp.RemainingAttempts("alice"); got != 1 {
		t.Errorf("RemainingAttempts = %d, want 1", got)
	}

	locked, d := lp.RecordFailure("Alice")
	if !locked {
		t.Fatal("expected lockout on third failure")
	}
	if d != time.Minute {
		t.Errorf("lock duration = %v, want 1m", d)
	}

	if isLocked, _ := lp.IsLocked("ALICE "); !isLocked {
		t.Error("IsLocked should ignore case and surrounding space")
	}
	if isLocked, _ := lp.IsLocked("bob"); isLocked {
		t.Error("other accounts must not be locked")
	}
}

func TestLoginProtection_LockExpiresAndDoubles(t *testing.T) {
	lp, now := testLoginProtection(t, 2, time.Minute, time.Hour)

	lp.RecordFailure("alice")
	lp.RecordFailure("alice")

	*now = now.Add(61 * time.Second)
	if locked, _ := lp.IsLocked("alice"); locked {
		t.Fatal("lock should have expired")
	}

	lp.RecordFailure("alice")
	locked, d := lp.RecordFailure("alice")
	if !locked {
		t.Fatal("expected second lockout")
	}
	if d != 2*time.Minute {
		t.Errorf("second lock duration = %v, want 2m", d)
	}
}

func TestLoginProtection_WindowResets(t *testing.T) {
	lp, now := testLoginProtection(t, 3, time.Minute, 10*time.Minute)

	lp.RecordFailure("alice")
	lp.RecordFailure("alice")

	*now = now.Add(11 * time.Minute)
	if locked, _ := lp.RecordFailure("alice"); locked {
		t.Error("failures outside the window must not count")
	}
	if got := lp.RemainingAttempts("alice"); got != 2 {
		t.Errorf("RemainingAttempts = %d, want 2", got)
	}
}

func TestLoginProtection_RecordSuccess(t *testing.T) {
	lp, _ := testLoginProtection(t, 3, time.Minute, time.Hour)

	lp.RecordFailure("alice")
	lp.RecordFailure("alice")
	lp.RecordSuccess("alice")

	if got := lp.RemainingAttempts("alice"); got != 3 {
		t.Errorf("RemainingAttempts after success = %d, want 3", got)
	}
}

func TestLoginProtection_Middleware(t *testing.T) {
	lp := NewLoginProtection(LoginProtectionConfig{IPRateLimit: 0.001, IPBurst: 2})
	defer lp.Stop()

	handler := lp.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	post := func(addr string) int {
		req := httptest.NewRequest(http.MethodPost, "/auth/login/", nil)
		req.RemoteAddr = addr
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr.Code
	}

	for i := range 2 {
		if code := post("10.0.0.1:1234"); code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i+1, code)
		}
	}
	if code := post("10.0.0.1:5678"); code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", code)
	}
	if code := post("10.0.0.2:1234"); code != http.StatusOK {
		t.Errorf("other IP status = %d, want 200", code)
	}

	req := httptest.NewRequest(http.MethodGet, "/auth/login/", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Errorf("GET status = %d, want 200", rr.Code)
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.7:4000"
	if got := clientIP(req); got != "192.0.2.7" {
		t.Errorf("clientIP = %q", got)
	}
	req.RemoteAddr = "unix"
	if got := clientIP(req); got != "unix" {
		t.Errorf("clientIP = %q", got)
	}
}
