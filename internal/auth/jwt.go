package auth

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrEmptySecret     = errors.New("jwt secret cannot be empty")
	ErrInvalidDuration = errors.New("jwt ttl must be positive")
)

type Claims struct {
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// JWT signs and verifies HS256 bearer tokens. The subject carries the
// principal id.
type JWT struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewJWT(secret string, ttl time.Duration) (*JWT, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	if ttl <= 0 {
		return nil, ErrInvalidDuration
	}
	return &JWT{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

func (j *JWT) Issue(subject int64, roles []string) (string, time.Time, error) {
	now := j.now()
	expires := now.Add(j.ttl)
	claims := &Claims{
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(subject, 10),
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expires, nil
}

func (j *JWT) Parse(token string) (*Principal, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken.With("unexpected signing method")
		}
		return j.secret, nil
	}, jwt.WithTimeFunc(j.now))
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 {
		return nil, ErrInvalidToken
	}
	return &Principal{ID: id, Roles: claims.Roles}, nil
}

// Authenticate reads "Authorization: Bearer <token>".
func (j *JWT) Authenticate(header HeaderFunc) (*Principal, error) {
	raw := strings.TrimSpace(header(HeaderAuthorization))
	if raw == "" {
		return nil, ErrMissingCredentials
	}
	token, ok := strings.CutPrefix(raw, "Bearer ")
	if !ok || strings.TrimSpace(token) == "" {
		return nil, ErrInvalidToken
	}
	return j.Parse(strings.TrimSpace(token))
}
