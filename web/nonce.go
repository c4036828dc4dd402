// ABOUTME: Short-lived signed nonces for the public AJAX endpoint
// ABOUTME: HS256 JWTs bound to an action name with an expiry
package web

import (
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidNonce = errors.New("invalid nonce")

type nonceClaims struct {
	Action string `json:"action"`
	jwt.RegisteredClaims
}

// Nonces issues and verifies action nonces.
type Nonces struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewNonces signs with secret. An empty secret gets a random one, so nonces do not
// survive a restart.
func NewNonces(secret string, ttl time.Duration) (*Nonces, error) {
	key := []byte(secret)
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("failed to generate nonce secret: %w", err)
		}
	}
	return &Nonces{secret: key, ttl: ttl, now: time.Now}, nil
}

func (n *Nonces) Issue(action string) (string, error) {
	now := n.now()
	claims := nonceClaims{
		Action: action,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(n.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(n.secret)
}

// Verify checks the signature, expiry and action of a nonce.
func (n *Nonces) Verify(nonce, action string) error {
	claims := &nonceClaims{}
	token, err := jwt.ParseWithClaims(nonce, claims, func(t *jwt.Token) (any, error) {
		return n.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(n.now),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidNonce, err)
	}
	if !token.Valid || claims.Action != action {
		return ErrInvalidNonce
	}
	return nil
}
