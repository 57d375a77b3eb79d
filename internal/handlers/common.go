package handlers

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/nimasrn/marketplace/internal/auth"
	"github.com/nimasrn/marketplace/internal/model"
	"github.com/nimasrn/marketplace/pkg/apperr"
	xhttp "github.com/nimasrn/marketplace/pkg/http"
	"github.com/nimasrn/marketplace/pkg/logger"
	"github.com/shopspring/decimal"
)

// ExposeInternalErrors puts the message of unexpected errors in 500 bodies.
// Only the dev environment turns it on.
var ExposeInternalErrors bool

const principalKey = "principal"

type listResponse[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func statusFor(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindValidation,
		apperr.KindInsufficientBalance,
		apperr.KindOutOfStock,
		apperr.KindInactiveUser,
		apperr.KindInvalidTarget,
		apperr.KindInvalidTransition:
		return xhttp.StatusBadRequest
	case apperr.KindUnauthorized:
		return xhttp.StatusUnauthorized
	case apperr.KindForbidden:
		return xhttp.StatusForbidden
	case apperr.KindNotFound:
		return xhttp.StatusNotFound
	case apperr.KindConflict:
		return xhttp.StatusConflict
	case apperr.KindLocked:
		return xhttp.StatusLocked
	}
	return xhttp.StatusInternalServerError
}

// fail writes err with the status of its kind.
func fail(ctx *xhttp.RequestCtx, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == xhttp.StatusInternalServerError {
		logger.Error("request failed",
			"error", err,
			"method", string(ctx.Method()),
			"path", string(ctx.Path()),
			"request_id", xhttp.RequestID(ctx),
		)
		if !ExposeInternalErrors {
			msg = xhttp.StatusText(status)
		}
	}
	writeError(ctx, status, msg)
}

func readJSON(ctx *xhttp.RequestCtx, dst any) error {
	body := ctx.PostBody()
	if len(body) == 0 {
		return apperr.New(apperr.KindValidation, "request body is required")
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return apperr.Wrap(apperr.KindValidation, "invalid JSON", err)
	}
	return nil
}

func writeJSON(ctx *xhttp.RequestCtx, status int, v any) {
	b, _ := json.Marshal(v)
	ctx.Response.Header.Set("Content-Type", "application/json; charset=utf-8")
	ctx.Response.SetStatusCode(status)
	ctx.Response.SetBodyRaw(b)
}

func writeError(ctx *xhttp.RequestCtx, status int, msg string) {
	writeJSON(ctx, status, map[string]string{"error": msg})
}

func pathInt64(ctx *xhttp.RequestCtx, name string) (int64, error) {
	raw, _ := ctx.UserValue(name).(string)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Newf(apperr.KindValidation, "%s must be a positive integer", name)
	}
	return id, nil
}

func query(ctx *xhttp.RequestCtx, key string) string {
	return strings.TrimSpace(string(ctx.QueryArgs().Peek(key)))
}

func queryInt64(ctx *xhttp.RequestCtx, key string) (*int64, error) {
	v := query(ctx, key)
	if v == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return nil, apperr.Newf(apperr.KindValidation, "%s must be an integer", key)
	}
	return &n, nil
}

func queryDecimal(ctx *xhttp.RequestCtx, key string) (*decimal.Decimal, error) {
	v := query(ctx, key)
	if v == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return nil, apperr.Newf(apperr.KindValidation, "%s must be a number", key)
	}
	return &d, nil
}

func queryTime(ctx *xhttp.RequestCtx, key string) (*time.Time, error) {
	v := query(ctx, key)
	if v == "" {
		return nil, nil
	}
	t, err := parseTime(v)
	if err != nil {
		return nil, apperr.Newf(apperr.KindValidation, "%s must be RFC3339 or YYYY-MM-DD", key)
	}
	return &t, nil
}

func pageFrom(ctx *xhttp.RequestCtx) model.Page {
	var p model.Page
	if n, err := strconv.Atoi(query(ctx, "limit")); err == nil {
		p.Limit = n
	}
	if n, err := strconv.Atoi(query(ctx, "offset")); err == nil {
		p.Offset = n
	}
	return p.Normalize()
}

func parseTime(s string) (time.Time, error) {
	// Accept RFC3339 or YYYY-MM-DD
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

// Guard authenticates requests and enforces roles.
type Guard struct {
	auth auth.Authenticator
}

func NewGuard(a auth.Authenticator) *Guard {
	return &Guard{auth: a}
}

// Admin lets through principals carrying the Admin role.
func (g *Guard) Admin(next xhttp.RequestHandler) xhttp.RequestHandler {
	return g.Role(model.RoleAdmin, next)
}

// Authenticated lets through any authenticated principal.
func (g *Guard) Authenticated(next xhttp.RequestHandler) xhttp.RequestHandler {
	return g.Role("", next)
}

// Role lets through principals carrying role; an empty role only requires
// authentication.
func (g *Guard) Role(role string, next xhttp.RequestHandler) xhttp.RequestHandler {
	return func(ctx *xhttp.RequestCtx) {
		p, err := g.auth.Authenticate(func(name string) string {
			return string(ctx.Request.Header.Peek(name))
		})
		if err != nil {
			fail(ctx, err)
			return
		}
		if role != "" && !p.HasRole(role) {
			fail(ctx, auth.ErrForbidden)
			return
		}
		ctx.SetUserValue(principalKey, p)
		next(ctx)
	}
}

func principal(ctx *xhttp.RequestCtx) *auth.Principal {
	p, _ := ctx.UserValue(principalKey).(*auth.Principal)
	return p
}

// actorID is the id of the guarded caller, or nil on open routes.
func actorID(ctx *xhttp.RequestCtx) *int64 {
	p := principal(ctx)
	if p == nil {
		return nil
	}
	id := p.ID
	return &id
}

// actingFor allows the caller to act on userID's account when it is that
// user or an admin.
func actingFor(ctx *xhttp.RequestCtx, userID int64) error {
	p := principal(ctx)
	if p == nil {
		return auth.ErrMissingCredentials
	}
	if p.ID == userID || p.HasRole(model.RoleAdmin) {
		return nil
	}
	return auth.ErrForbidden.With(fmt.Sprintf("caller %d cannot act for user %d", p.ID, userID))
}
