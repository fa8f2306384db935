package utils

import (
	"testing"
)

func TestGenerateAndValidateJWT(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	token, err := GenerateJWT(7, "supervisor")
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}
	claims, err := ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.UserID != 7 || claims.Role != "supervisor" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestRefreshTokenRejectedAsAccess(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	refresh, err := GenerateRefreshToken(7)
	if err != nil {
		t.Fatalf("GenerateRefreshToken: %v", err)
	}
	claims, err := ValidateRefreshToken(refresh)
	if err != nil {
		t.Fatalf("ValidateRefreshToken: %v", err)
	}
	if claims.UserID != 7 {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	// Access токен не проходит как refresh
	access, err := GenerateJWT(7, "")
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}
	if _, err := ValidateRefreshToken(access); err == nil {
		t.Fatalf("expected access token to be rejected as refresh")
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	token, err := GenerateJWT(1, "")
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	t.Setenv("JWT_SECRET", "other-secret")
	if _, err := ValidateToken(token); err == nil {
		t.Fatalf("expected validation failure with wrong secret")
	}
}
