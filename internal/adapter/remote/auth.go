package remote

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenTTL bounds how long a minted bearer token is accepted by the
// remote API before the adapter must mint a fresh one.
const tokenTTL = 5 * time.Minute

// claims identifies the syncing device to the remote API. The core
// treats the resulting token as an opaque bearer credential; no wire
// protocol is defined by the core itself.
type claims struct {
	Device string `json:"device"`
	jwt.RegisteredClaims
}

// mintToken signs a short-lived bearer token with the shared secret
// configured for this adapter.
func mintToken(secret, device string) (string, error) {
	now := time.Now()
	c := claims{
		Device: device,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("signing bearer token: %w", err)
	}
	return signed, nil
}
