package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Claims holds group and player identity for HTTP and WebSocket auth.
type Claims struct {
	GroupID  string `json:"group_id"`
	PlayerID string `json:"player_id"`
	Name     string `json:"name,omitempty"`
	Exp      int64  `json:"exp"`
}

// DefaultTokenExpiry is the default lifetime for player tokens. Long enough
// to outlive any single game by a wide margin.
const DefaultTokenExpiry = 24 * time.Hour

// GenerateToken creates an HMAC-SHA256 signed token carrying the player's
// group membership. Format: base64url(payload).base64url(signature).
func GenerateToken(groupID, playerID, name string, secret []byte, expiry time.Duration) (token string, expiresAt time.Time, err error) {
	if len(secret) == 0 {
		return "", time.Time{}, fmt.Errorf("token secret is required")
	}
	expiresAt = time.Now().UTC().Add(expiry)
	claims := Claims{
		GroupID:  groupID,
		PlayerID: playerID,
		Name:     name,
		Exp:      expiresAt.Unix(),
	}
	payload, err := json.Marshal(claims)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("marshal claims: %w", err)
	}
	b64Payload := base64.RawURLEncoding.EncodeToString(payload)
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(b64Payload))
	b64Sig := base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
	return b64Payload + "." + b64Sig, expiresAt, nil
}

// VerifyToken verifies the signature and expiry and returns the claims.
func VerifyToken(token string, secret []byte) (*Claims, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("token secret is required")
	}
	parts := strings.SplitN(token, ".", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid token format")
	}
	b64Payload, b64Sig := parts[0], parts[1]

	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(b64Payload))
	expectedSig := mac.Sum(nil)
	sig, err := base64.RawURLEncoding.DecodeString(b64Sig)
	if err != nil {
		return nil, fmt.Errorf("invalid token signature encoding: %w", err)
	}
	if !hmac.Equal(sig, expectedSig) {
		return nil, fmt.Errorf("invalid token signature")
	}

	payload, err := base64.RawURLEncoding.DecodeString(b64Payload)
	if err != nil {
		return nil, fmt.Errorf("invalid token payload encoding: %w", err)
	}
	var claims Claims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, fmt.Errorf("invalid token payload: %w", err)
	}

	if time.Now().UTC().Unix() > claims.Exp {
		return nil, fmt.Errorf("token expired")
	}
	if claims.GroupID == "" || claims.PlayerID == "" {
		return nil, fmt.Errorf("invalid token claims: missing group_id or player_id")
	}
	return &claims, nil
}
