package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"

	"github.com/trezcool/coachdesk/core"
	"github.com/trezcool/coachdesk/core/admin"
)

var nowFunc = time.Now // mockable

// Claims represents the identity carried by a session token.
type Claims struct {
	Role     string `json:"role"`
	Email    string `json:"email,omitempty"`
	Username string `json:"username,omitempty"`
	jwt.RegisteredClaims
}

func NewClaims(adm admin.Administrator) Claims {
	return Claims{
		Role:     adm.Role,
		Email:    adm.Email,
		Username: adm.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: adm.ID,
		},
	}
}

// Admin returns the Administrator described by the claims (no password hash).
func (c Claims) Admin() admin.Administrator {
	return admin.Administrator{ID: c.Subject, Email: c.Email, Username: c.Username, Role: c.Role}
}

// Codec signs and verifies HS256 session tokens.
type Codec struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

func NewCodec(conf *core.Config) *Codec {
	ttl := conf.Session.TTL
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &Codec{
		secret: []byte(conf.Session.Secret),
		issuer: conf.AppName,
		ttl:    ttl,
	}
}

func (c *Codec) TTL() time.Duration { return c.ttl }

// Sign stamps issued-at, expiry and a unique token id onto `claims` and signs them.
// It fails with a *core.ConfigError when no secret is configured.
func (c *Codec) Sign(claims Claims) (string, Claims, error) {
	if len(c.secret) == 0 {
		return "", Claims{}, core.NewConfigError("JWT_SECRET")
	}
	now := nowFunc().UTC()
	claims.Issuer = c.issuer
	claims.ID = core.NewID()
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(c.ttl))

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", Claims{}, errors.Wrap(err, "signing token")
	}
	return token, claims, nil
}

// Verify returns the token's claims, or nil if the token is malformed, forged or expired.
func (c *Codec) Verify(token string) *Claims {
	if token == "" || len(c.secret) == 0 {
		return nil
	}
	parsed, err := jwt.ParseWithClaims(
		token,
		new(Claims),
		func(*jwt.Token) (interface{}, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(nowFunc),
	)
	if err != nil || !parsed.Valid {
		return nil
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || claims.Subject == "" {
		return nil
	}
	return claims
}
