package auth

import (
	"testing"
	"time"
)

const testKey = "test-signing-key"

func TestIssueParseRoundtrip(t *testing.T) {
	pair, err := Issue("user-1", RoleProfessor, true, "campusattend", testKey, time.Minute, time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("expected both tokens")
	}

	claims, err := Parse(pair.AccessToken, testKey, "campusattend")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Subject != "user-1" {
		t.Errorf("subject = %q, want user-1", claims.Subject)
	}
	if claims.Role != RoleProfessor {
		t.Errorf("role = %q, want %q", claims.Role, RoleProfessor)
	}
	if !claims.Verified {
		t.Error("verified claim lost")
	}
}

func TestParseWrongKey(t *testing.T) {
	pair, err := Issue("user-1", RoleStudent, false, "campusattend", testKey, time.Minute, time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := Parse(pair.AccessToken, "other-key", "campusattend"); err == nil {
		t.Fatal("expected signature verification to fail")
	}
}

func TestParseIssuerMismatch(t *testing.T) {
	pair, err := Issue("user-1", RoleStudent, false, "other-service", testKey, time.Minute, time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := Parse(pair.AccessToken, testKey, "campusattend"); err == nil {
		t.Fatal("expected issuer mismatch")
	}
}

func TestParseExpired(t *testing.T) {
	pair, err := Issue("user-1", RoleStudent, false, "campusattend", testKey, -time.Minute, time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := Parse(pair.AccessToken, testKey, "campusattend"); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}

func TestPasswordHashRoundtrip(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "s3cret-pass" {
		t.Fatal("hash must not equal the plaintext")
	}
	if !CheckPassword(hash, "s3cret-pass") {
		t.Error("correct password rejected")
	}
	if CheckPassword(hash, "wrong") {
		t.Error("wrong password accepted")
	}
}
