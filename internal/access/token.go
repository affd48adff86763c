package access

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims — полезная нагрузка токена, из которой строится AuthContext.
type Claims struct {
	jwt.RegisteredClaims
	Role      Role   `json:"role"`
	ScopeID   string `json:"scope_id,omitempty"`
	ScopeName string `json:"scope_name,omitempty"`
}

// Tokens выпускает и проверяет HS256-токены.
type Tokens struct {
	secret []byte
	issuer string
	now    func() time.Time
}

func NewTokens(secret, issuer string) *Tokens {
	return &Tokens{secret: []byte(secret), issuer: issuer, now: time.Now}
}

// Issue подписывает токен для актора.
func (t *Tokens) Issue(actor AuthContext, ttl time.Duration) (string, error) {
	if err := actor.Validate(); err != nil {
		return "", err
	}
	now := t.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor.Username,
			Issuer:    t.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Role:      actor.Role,
		ScopeName: actor.ScopeName,
	}
	if actor.ScopeID != uuid.Nil {
		claims.ScopeID = actor.ScopeID.String()
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// Parse проверяет подпись и срок и возвращает AuthContext.
func (t *Tokens) Parse(raw string) (AuthContext, error) {
	claims := &Claims{}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithTimeFunc(t.now),
	}
	if t.issuer != "" {
		opts = append(opts, jwt.WithIssuer(t.issuer))
	}

	token, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return t.secret, nil
	}, opts...)
	if err != nil || !token.Valid {
		return AuthContext{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	actor := AuthContext{
		Role:      claims.Role,
		Username:  claims.Subject,
		ScopeName: claims.ScopeName,
	}
	if claims.ScopeID != "" {
		id, err := uuid.Parse(claims.ScopeID)
		if err != nil {
			return AuthContext{}, fmt.Errorf("%w: scope_id: %v", ErrInvalidToken, err)
		}
		actor.ScopeID = id
	}
	if err := actor.Validate(); err != nil {
		return AuthContext{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return actor, nil
}
