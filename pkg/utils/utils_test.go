package utils

import "testing"

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "correct horse battery staple" {
		t.Fatal("hash must not equal the plaintext password")
	}

	if !CheckPassword("correct horse battery staple", hash) {
		t.Fatal("expected the correct password to verify")
	}
	if CheckPassword("wrong password", hash) {
		t.Fatal("expected a wrong password to fail verification")
	}
}

func TestGenerateAndValidateToken(t *testing.T) {
	token, err := GenerateToken("42", "staff", "test-secret")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := ValidateToken(token, "test-secret")
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.UserID != "42" {
		t.Fatalf("expected user id 42, got %q", claims.UserID)
	}
	if claims.Role != "staff" {
		t.Fatalf("expected staff role, got %q", claims.Role)
	}
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	token, err := GenerateToken("42", "staff", "test-secret")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	if _, err := ValidateToken(token, "another-secret"); err == nil {
		t.Fatal("expected validation to fail with the wrong secret")
	}
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	if _, err := ValidateToken("not.a.token", "test-secret"); err == nil {
		t.Fatal("expected validation to fail for a malformed token")
	}
}
