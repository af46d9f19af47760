package impl

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestPasswordServiceBcrypt(t *testing.T) {
	ps := &PasswordServiceBcrypt{Cost: bcrypt.MinCost}

	hash, err := ps.Hash("hunter22")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "hunter22" || !strings.HasPrefix(hash, "$2a$") {
		t.Fatalf("unexpected hash %q", hash)
	}

	if ok, err := ps.Compare(hash, "hunter22"); err != nil || !ok {
		t.Fatalf("expected match, got %v %v", ok, err)
	}
	if ok, err := ps.Compare(hash, "hunter23"); err != nil || ok {
		t.Fatalf("expected clean mismatch, got %v %v", ok, err)
	}
	if _, err := ps.Compare("not-a-bcrypt-hash", "hunter22"); err == nil {
		t.Fatalf("expected error for malformed hash")
	}
	if _, err := ps.Hash(""); err != ErrEmptyPassword {
		t.Fatalf("expected ErrEmptyPassword, got %v", err)
	}
}

func TestPasswordServiceBcryptDefaultCost(t *testing.T) {
	if NewPasswordServiceBcrypt().Cost != 10 {
		t.Fatalf("expected cost factor 10")
	}
}

func TestPasswordServiceBcryptLongPasswords(t *testing.T) {
	ps := &PasswordServiceBcrypt{Cost: bcrypt.MinCost}
	long := strings.Repeat("p", 200)

	hash, err := ps.Hash(long)
	if err != nil {
		t.Fatalf("hash of 200 byte password: %v", err)
	}
	if ok, err := ps.Compare(hash, long); err != nil || !ok {
		t.Fatalf("expected match, got %v %v", ok, err)
	}
}

func TestPasswordServiceBcryptLongPasswordsDifferPastByte72(t *testing.T) {
	ps := &PasswordServiceBcrypt{Cost: bcrypt.MinCost}
	prefix := strings.Repeat("x", 72)

	hash, err := ps.Hash(prefix + "-first")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if ok, err := ps.Compare(hash, prefix+"-second"); err != nil || ok {
		t.Fatalf("passwords sharing the first 72 bytes must not match, got %v %v", ok, err)
	}
	if ok, err := ps.Compare(hash, prefix); err != nil || ok {
		t.Fatalf("72 byte prefix must not match the longer password, got %v %v", ok, err)
	}
	if ok, err := ps.Compare(hash, prefix+"-first"); err != nil || !ok {
		t.Fatalf("expected match, got %v %v", ok, err)
	}
}

func TestPasswordServiceBcryptShortPasswordsArePlainBcrypt(t *testing.T) {
	ps := &PasswordServiceBcrypt{Cost: bcrypt.MinCost}
	pw := strings.Repeat("s", 72)

	hash, err := ps.Hash(pw)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)); err != nil {
		t.Fatalf("expected hash readable by plain bcrypt: %v", err)
	}
}
