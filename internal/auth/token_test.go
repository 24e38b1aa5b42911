package auth

import (
	"strings"
	"testing"
	"time"
)

func TestGenerateAndVerifyToken(t *testing.T) {
	secret := []byte("test-secret")
	token, expiresAt, err := GenerateToken("group-1", "player-1", "Alice", secret, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if expiresAt.Before(time.Now()) {
		t.Error("token expires in the past")
	}

	claims, err := VerifyToken(token, secret)
	if err != nil {
		t.Fatal(err)
	}
	if claims.GroupID != "group-1" || claims.PlayerID != "player-1" || claims.Name != "Alice" {
		t.Errorf("claims: %+v", claims)
	}
}

func TestVerifyToken_RejectsTampering(t *testing.T) {
	secret := []byte("test-secret")
	token, _, err := GenerateToken("group-1", "player-1", "", secret, time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := VerifyToken(token, []byte("other-secret")); err == nil {
		t.Error("token verified with the wrong secret")
	}
	if _, err := VerifyToken("not-a-token", secret); err == nil {
		t.Error("malformed token verified")
	}

	parts := strings.SplitN(token, ".", 2)
	forged := parts[0] + "x." + parts[1]
	if _, err := VerifyToken(forged, secret); err == nil {
		t.Error("tampered payload verified")
	}
}

func TestVerifyToken_RejectsExpired(t *testing.T) {
	secret := []byte("test-secret")
	token, _, err := GenerateToken("group-1", "player-1", "", secret, -time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := VerifyToken(token, secret); err == nil {
		t.Error("expired token verified")
	}
}

func TestGenerateToken_RequiresSecret(t *testing.T) {
	if _, _, err := GenerateToken("g", "p", "", nil, time.Hour); err == nil {
		t.Error("token generated without a secret")
	}
}
