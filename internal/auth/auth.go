package auth

import (
	"strconv"
	"strings"
	"time"

	"github.com/nimasrn/marketplace/pkg/apperr"
	"github.com/pkg/errors"
)

const (
	HeaderAuthorization = "Authorization"
	HeaderEmployeeID    = "X-Employee-Id"
	HeaderUserID        = "X-User-Id"
	HeaderRoles         = "X-User-Roles"
)

var (
	ErrMissingCredentials = apperr.New(apperr.KindUnauthorized, "authentication required")
	ErrInvalidToken       = apperr.New(apperr.KindUnauthorized, "invalid or expired token")
	ErrForbidden          = apperr.New(apperr.KindForbidden, "insufficient permissions")
)

// Principal is the authenticated caller.
type Principal struct {
	ID    int64
	Roles []string
}

func (p *Principal) HasRole(role string) bool {
	if p == nil {
		return false
	}
	for _, r := range p.Roles {
		if strings.EqualFold(r, role) {
			return true
		}
	}
	return false
}

// HeaderFunc reads one request header; both fasthttp and gin adapt to it.
type HeaderFunc func(name string) string

type Authenticator interface {
	Authenticate(header HeaderFunc) (*Principal, error)
}

// HeaderAuthenticator trusts identity headers set by the caller. It is the
// development mode and must not face the internet.
type HeaderAuthenticator struct{}

func (HeaderAuthenticator) Authenticate(header HeaderFunc) (*Principal, error) {
	raw := strings.TrimSpace(header(HeaderEmployeeID))
	if raw == "" {
		raw = strings.TrimSpace(header(HeaderUserID))
	}
	if raw == "" {
		return nil, ErrMissingCredentials
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, ErrMissingCredentials.With("identity header is not a positive integer")
	}
	return &Principal{ID: id, Roles: splitRoles(header(HeaderRoles))}, nil
}

func splitRoles(raw string) []string {
	var roles []string
	for _, r := range strings.Split(raw, ",") {
		if r = strings.TrimSpace(r); r != "" {
			roles = append(roles, r)
		}
	}
	return roles
}

// New builds the authenticator for mode and, in jwt mode, the token service
// used to sign admin logins.
func New(mode, secret string, ttl time.Duration) (Authenticator, *JWT, error) {
	switch mode {
	case "", "header":
		return HeaderAuthenticator{}, nil, nil
	case "jwt":
		j, err := NewJWT(secret, ttl)
		if err != nil {
			return nil, nil, err
		}
		return j, j, nil
	}
	return nil, nil, errors.Errorf("unknown auth mode %q", mode)
}
