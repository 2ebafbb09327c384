package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func newTestAuthenticator(accessExp, refreshExp time.Duration) *JWTAuthenticator {
	return NewJWTAuthenticator("access-secret", "refresh-secret", "voxa", "voxa", accessExp, refreshExp)
}

func TestGenerateAndValidateTokens(t *testing.T) {
	a := newTestAuthenticator(time.Hour, 2*time.Hour)

	access, refresh, err := a.GenerateTokens(42)
	if err != nil {
		t.Fatalf("GenerateTokens: %v", err)
	}
	if access == "" || refresh == "" {
		t.Fatal("expected non-empty tokens")
	}

	parsed, err := a.ValidateAccessToken(access)
	if err != nil {
		t.Fatalf("ValidateAccessToken: %v", err)
	}
	if !parsed.Valid {
		t.Fatal("access token not valid")
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		t.Fatal("claims are not MapClaims")
	}
	sub, ok := claims["sub"].(float64)
	if !ok || int64(sub) != 42 {
		t.Errorf("sub claim = %v, want 42", claims["sub"])
	}

	if _, err := a.ValidateRefreshToken(refresh); err != nil {
		t.Fatalf("ValidateRefreshToken: %v", err)
	}
}

func TestAccessTokenRejectedByRefreshValidator(t *testing.T) {
	a := newTestAuthenticator(time.Hour, 2*time.Hour)

	access, _, err := a.GenerateTokens(7)
	if err != nil {
		t.Fatalf("GenerateTokens: %v", err)
	}

	// Signed with the access secret; the refresh validator must refuse it.
	if _, err := a.ValidateRefreshToken(access); err == nil {
		t.Error("refresh validator accepted an access token")
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	a := newTestAuthenticator(-time.Minute, -time.Minute)

	access, refresh, err := a.GenerateTokens(7)
	if err != nil {
		t.Fatalf("GenerateTokens: %v", err)
	}

	if _, err := a.ValidateAccessToken(access); err == nil {
		t.Error("expired access token accepted")
	}
	if _, err := a.ValidateRefreshToken(refresh); err == nil {
		t.Error("expired refresh token accepted")
	}
}

func TestTamperedTokenRejected(t *testing.T) {
	a := newTestAuthenticator(time.Hour, 2*time.Hour)

	access, _, err := a.GenerateTokens(7)
	if err != nil {
		t.Fatalf("GenerateTokens: %v", err)
	}

	tampered := access[:len(access)-2] + "xx"
	if _, err := a.ValidateAccessToken(tampered); err == nil {
		t.Error("tampered token accepted")
	}
}
