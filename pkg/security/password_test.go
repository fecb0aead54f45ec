package security

import (
	"strings"
	"testing"

	"github.com/mleong/mangobox-backend/pkg/config"
)

func testPasswordConfig() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    8,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
}

func TestHashAndVerify(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("mangoes-are-great", testPasswordConfig())
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$v=19$") {
		t.Fatalf("unexpected hash format: %s", hash)
	}

	ok, err := VerifyPassword("mangoes-are-great", hash)
	if err != nil {
		t.Fatalf("VerifyPassword: %v", err)
	}
	if !ok {
		t.Fatal("correct password should verify")
	}

	ok, err = VerifyPassword("wrong-password", hash)
	if err != nil {
		t.Fatalf("VerifyPassword: %v", err)
	}
	if ok {
		t.Fatal("wrong password must not verify")
	}
}

func TestHashRejectsEmptyPassword(t *testing.T) {
	t.Parallel()

	if _, err := HashPassword("", testPasswordConfig()); err == nil {
		t.Fatal("empty password should fail")
	}
}

func TestVerifyRejectsMalformedHash(t *testing.T) {
	t.Parallel()

	cases := []string{
		"",
		"plainhash",
		"$argon2i$v=19$m=8,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=broken$c2FsdA$aGFzaA",
	}
	for _, encoded := range cases {
		if _, err := VerifyPassword("whatever", encoded); err == nil {
			t.Fatalf("expected error for %q", encoded)
		}
	}
}

func TestGenerateTempPassword(t *testing.T) {
	t.Parallel()

	pw, err := GenerateTempPassword(16)
	if err != nil {
		t.Fatalf("GenerateTempPassword: %v", err)
	}
	if len(pw) != 16 {
		t.Fatalf("length = %d, want 16", len(pw))
	}

	if _, err := GenerateTempPassword(0); err == nil {
		t.Fatal("non-positive length should fail")
	}
}
