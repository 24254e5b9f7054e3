package auth

import "testing"

func TestPlainVerifier(t *testing.T) {
	v := Plain{}
	stored, err := v.Hash("secret")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if stored != "secret" {
		t.Fatalf("plain hash should be identity, got %q", stored)
	}
	if !v.Verify("secret", stored) {
		t.Fatal("expected match")
	}
	if v.Verify("Secret", stored) {
		t.Fatal("comparison must be exact")
	}
}

func TestBcryptVerifier(t *testing.T) {
	v := Bcrypt{Cost: 4} // minimum cost to keep the test fast
	stored, err := v.Hash("secret")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if stored == "secret" {
		t.Fatal("bcrypt hash should not equal the password")
	}
	if !v.Verify("secret", stored) {
		t.Fatal("expected match")
	}
	if v.Verify("wrong", stored) {
		t.Fatal("expected mismatch")
	}
}
