package resilience

import (
	"errors"
	"testing"
	"time"
)

var errBoom = errors.New("boom")

func TestBreakerOpensAfterMaxFailures(t *testing.T) {
	b := NewBreaker(3, time.Minute)

	for range 3 {
		if err := b.Execute(func() error { return errBoom }); !errors.Is(err, errBoom) {
			t.Fatalf("Execute() = %v, want %v", err, errBoom)
		}
	}

	if !b.Open() {
		t.Error("Open() = false after max failures, want true")
	}
	if err := b.Execute(func() error { return nil }); !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("Execute() = %v, want ErrCircuitOpen", err)
	}
}

func TestBreakerResetsOnSuccess(t *testing.T) {
	b := NewBreaker(3, time.Minute)

	for range 2 {
		_ = b.Execute(func() error { return errBoom })
	}
	if err := b.Execute(func() error { return nil }); err != nil {
		t.Fatalf("Execute() = %v, want nil", err)
	}
	for range 2 {
		_ = b.Execute(func() error { return errBoom })
	}

	if b.Open() {
		t.Error("Open() = true, want false: success should reset the failure count")
	}
}

func TestBreakerHalfOpenProbe(t *testing.T) {
	now := time.Now()
	b := NewBreaker(1, 30*time.Second)
	b.now = func() time.Time { return now }

	_ = b.Execute(func() error { return errBoom })
	if !b.Open() {
		t.Fatal("Open() = false after failure, want true")
	}

	// Before the timeout the probe is rejected.
	if err := b.Execute(func() error { return nil }); !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("Execute() = %v, want ErrCircuitOpen", err)
	}

	// After the timeout one probe is allowed; success closes the circuit.
	now = now.Add(31 * time.Second)
	if err := b.Execute(func() error { return nil }); err != nil {
		t.Errorf("Execute() after timeout = %v, want nil", err)
	}
	if b.Open() {
		t.Error("Open() = true after successful probe, want false")
	}
}

func TestBreakerHalfOpenFailureReopens(t *testing.T) {
	now := time.Now()
	b := NewBreaker(2, 30*time.Second)
	b.now = func() time.Time { return now }

	for range 2 {
		_ = b.Execute(func() error { return errBoom })
	}

	now = now.Add(31 * time.Second)
	_ = b.Execute(func() error { return errBoom })

	if !b.Open() {
		t.Error("Open() = false after failed half-open probe, want true")
	}
}
