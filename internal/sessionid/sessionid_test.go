package sessionid

import (
	"strings"
	"testing"
)

func TestPublicID(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := PublicID()
		if len(id) != 36 {
			t.Fatalf("expected 36-char UUID, got %q", id)
		}
		if seen[id] {
			t.Fatalf("duplicate public ID %q", id)
		}
		seen[id] = true
	}
}

func TestShortCode(t *testing.T) {
	for i := 0; i < 100; i++ {
		code, err := ShortCode()
		if err != nil {
			t.Fatalf("ShortCode: %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("expected 6-char code, got %q", code)
		}
		for _, c := range code {
			if !strings.ContainsRune(shortAlphabet, c) {
				t.Fatalf("code %q contains %q outside the alphabet", code, c)
			}
		}
	}
}

func TestUniqueShortCodeRetries(t *testing.T) {
	calls := 0
	code, err := UniqueShortCode(func(string) (bool, error) {
		calls++
		return calls <= 2, nil
	})
	if err != nil {
		t.Fatalf("UniqueShortCode: %v", err)
	}
	if code == "" {
		t.Fatal("expected a code after retries")
	}
	if calls != 3 {
		t.Errorf("expected 3 existence checks, got %d", calls)
	}
}

func TestUniqueShortCodeExhausted(t *testing.T) {
	calls := 0
	_, err := UniqueShortCode(func(string) (bool, error) {
		calls++
		return true, nil
	})
	if err != ErrSpaceExhausted {
		t.Fatalf("expected ErrSpaceExhausted, got %v", err)
	}
	if calls != maxAttempts {
		t.Errorf("expected %d attempts, got %d", maxAttempts, calls)
	}
}
