package application

import (
	"errors"
	"strings"
	"testing"
)

// testArgon2idParams keeps derivation cheap enough for the test suite.
var testArgon2idParams = Argon2idParams{
	Memory:      1024,
	Iterations:  1,
	Parallelism: 1,
	SaltLength:  8,
	KeyLength:   16,
}

func TestCreatePasswordHash(t *testing.T) {
	t.Parallel()

	t.Run("produces the standard encoded form", func(t *testing.T) {
		t.Parallel()

		hash, err := CreatePasswordHash("correct horse", testArgon2idParams)
		if err != nil {
			t.Fatalf("CreatePasswordHash failed: %v", err)
		}
		if !strings.HasPrefix(hash, "$argon2id$v=19$m=1024,t=1,p=1$") {
			t.Fatalf("unexpected hash prefix: %q", hash)
		}
		if parts := strings.Split(hash, "$"); len(parts) != 6 {
			t.Fatalf("expected 6 hash segments, got %d: %q", len(parts), hash)
		}
	})

	t.Run("salts each hash independently", func(t *testing.T) {
		t.Parallel()

		first, err := CreatePasswordHash("same password", testArgon2idParams)
		if err != nil {
			t.Fatalf("CreatePasswordHash failed: %v", err)
		}
		second, err := CreatePasswordHash("same password", testArgon2idParams)
		if err != nil {
			t.Fatalf("CreatePasswordHash failed: %v", err)
		}
		if first == second {
			t.Fatalf("expected distinct hashes for repeated input")
		}
	})
}

func TestVerifyPassword(t *testing.T) {
	t.Parallel()

	t.Run("accepts the original password", func(t *testing.T) {
		t.Parallel()

		hash, err := CreatePasswordHash("correct horse", testArgon2idParams)
		if err != nil {
			t.Fatalf("CreatePasswordHash failed: %v", err)
		}
		if err := VerifyPassword(hash, "correct horse"); err != nil {
			t.Fatalf("VerifyPassword rejected the original password: %v", err)
		}
	})

	t.Run("rejects a wrong password", func(t *testing.T) {
		t.Parallel()

		hash, err := CreatePasswordHash("correct horse", testArgon2idParams)
		if err != nil {
			t.Fatalf("CreatePasswordHash failed: %v", err)
		}
		if err := VerifyPassword(hash, "battery staple"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("fails closed on malformed hashes", func(t *testing.T) {
		t.Parallel()

		cases := map[string]string{
			"empty":           "",
			"plain text":      "not-a-hash",
			"wrong algorithm": "$bcrypt$v=19$m=1024,t=1,p=1$c2FsdA$aGFzaA",
			"missing segment": "$argon2id$v=19$m=1024,t=1,p=1$c2FsdA",
			"bad salt":        "$argon2id$v=19$m=1024,t=1,p=1$!!!$aGFzaA",
		}
		for name, hash := range cases {
			if err := VerifyPassword(hash, "anything"); !errors.Is(err, ErrInvalidPasswordHash) {
				t.Fatalf("%s: expected ErrInvalidPasswordHash, got %v", name, err)
			}
		}
	})

	t.Run("rejects unsupported versions", func(t *testing.T) {
		t.Parallel()

		hash := "$argon2id$v=18$m=1024,t=1,p=1$c2FsdA$aGFzaA"
		if err := VerifyPassword(hash, "anything"); !errors.Is(err, ErrIncompatiblePasswordVersion) {
			t.Fatalf("expected ErrIncompatiblePasswordVersion, got %v", err)
		}
	})
}
