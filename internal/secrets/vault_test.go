package secrets

import (
	"errors"
	"testing"
)

func TestNewVaultLoadsOnce(t *testing.T) {
	calls := 0
	v, err := NewVault(func() (map[string]string, error) {
		calls++
		return map[string]string{KeyOpenAI: "sk-test"}, nil
	})
	if err != nil {
		t.Fatalf("NewVault() error = %v", err)
	}
	if calls != 1 {
		t.Errorf("loader calls = %d, want 1", calls)
	}
	if got := v.Get(KeyOpenAI); got != "sk-test" {
		t.Errorf("Get(%q) = %q, want %q", KeyOpenAI, got, "sk-test")
	}
	if got := v.Get(KeyAnthropic); got != "" {
		t.Errorf("Get(%q) = %q, want empty for unset key", KeyAnthropic, got)
	}
}

func TestNewVaultLoaderFailure(t *testing.T) {
	_, err := NewVault(func() (map[string]string, error) {
		return nil, errors.New("source unavailable")
	})
	if err == nil {
		t.Fatal("NewVault() = nil error, want loader failure surfaced")
	}
}

func TestVaultReload(t *testing.T) {
	keys := map[string]string{KeyGoogle: "old-key"}
	v, err := NewVault(func() (map[string]string, error) {
		return keys, nil
	})
	if err != nil {
		t.Fatalf("NewVault() error = %v", err)
	}

	keys = map[string]string{KeyGoogle: "rotated-key"}
	if err := v.Reload(); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if got := v.Get(KeyGoogle); got != "rotated-key" {
		t.Errorf("Get after reload = %q, want %q", got, "rotated-key")
	}
}

func TestVaultReloadFailureKeepsKeys(t *testing.T) {
	fail := false
	v, err := NewVault(func() (map[string]string, error) {
		if fail {
			return nil, errors.New("source unavailable")
		}
		return map[string]string{KeyAnthropic: "keep-me"}, nil
	})
	if err != nil {
		t.Fatalf("NewVault() error = %v", err)
	}

	fail = true
	if err := v.Reload(); err == nil {
		t.Fatal("Reload() = nil error, want failure")
	}
	if got := v.Get(KeyAnthropic); got != "keep-me" {
		t.Errorf("Get after failed reload = %q, want original key", got)
	}
}

func TestEnvLoaderSkipsUnset(t *testing.T) {
	t.Setenv(KeyOpenAI, "sk-env")
	t.Setenv(KeyAnthropic, "")

	vals, err := EnvLoader(KeyOpenAI, KeyAnthropic)()
	if err != nil {
		t.Fatalf("EnvLoader() error = %v", err)
	}
	if vals[KeyOpenAI] != "sk-env" {
		t.Errorf("vals[%q] = %q, want %q", KeyOpenAI, vals[KeyOpenAI], "sk-env")
	}
	if _, ok := vals[KeyAnthropic]; ok {
		t.Error("unset variable must be omitted from the result")
	}
}
