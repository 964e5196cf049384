package credential

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

// fastParams keeps the test suite quick; production uses DefaultArgon2Params.
var fastParams = Argon2Params{Time: 1, Memory: 1024, Threads: 1, SaltLen: 16, KeyLen: 32}

func TestArgon2idHasher_RoundTrip(t *testing.T) {
	h := NewArgon2idHasher(fastParams)

	hash, err := h.Hash("secret1")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$v=19$m=1024,t=1,p=1$") {
		t.Fatalf("unexpected encoding: %s", hash)
	}
	if !h.Verify("secret1", hash) {
		t.Fatalf("same plaintext should verify")
	}
	if h.Verify("secret2", hash) {
		t.Fatalf("altered plaintext must not verify")
	}
	if h.NeedsRehash(hash) {
		t.Fatalf("argon2id hash should not need rehash")
	}
}

func TestArgon2idHasher_SaltsDiffer(t *testing.T) {
	h := NewArgon2idHasher(fastParams)
	a, _ := h.Hash("secret1")
	b, _ := h.Hash("secret1")
	if a == b {
		t.Fatalf("two hashes of the same password should differ")
	}
}

func TestArgon2idHasher_EmptyPassword(t *testing.T) {
	h := NewArgon2idHasher(fastParams)
	if _, err := h.Hash(""); err != ErrEmptyPassword {
		t.Fatalf("expected ErrEmptyPassword, got %v", err)
	}
}

func TestArgon2idHasher_MalformedHashIsMismatch(t *testing.T) {
	h := NewArgon2idHasher(fastParams)
	for _, bad := range []string{
		"",
		"plaintext",
		"$argon2id$v=19$m=1024,t=1,p=1$",
		"$argon2i$v=19$m=1024,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=1024,t=1,p=1$!!!$aGFzaA",
	} {
		if h.Verify("secret1", bad) {
			t.Fatalf("malformed hash %q verified", bad)
		}
	}
}

func TestArgon2idHasher_VerifiesLegacyBcrypt(t *testing.T) {
	legacy, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}

	h := NewArgon2idHasher(fastParams)
	if !h.Verify("secret1", string(legacy)) {
		t.Fatalf("legacy bcrypt hash should verify")
	}
	if h.Verify("secret2", string(legacy)) {
		t.Fatalf("wrong password verified against bcrypt hash")
	}
	if !h.NeedsRehash(string(legacy)) {
		t.Fatalf("bcrypt hash should need rehash")
	}
}
