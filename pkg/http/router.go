package xhttp

import (
	"github.com/fasthttp/router"
)

type Router = router.Router
type Group = router.Group

// NewRouter returns a new Router
func NewRouter() *Router {
	return router.New()
}

// CreateDefaultRouter returns a new router with the default handlers
// NotFoundHandler
// MethodNotAllowed
// GlobalOPTIONS (CORS preflight)
func CreateDefaultRouter() *Router {
	r := NewRouter()
	r.RedirectFixedPath = true
	r.RedirectTrailingSlash = true
	r.SaveMatchedRoutePath = true
	r.NotFound = NotFoundHandler
	r.MethodNotAllowed = NotFoundHandler
	r.HandleOPTIONS = true
	r.GlobalOPTIONS = PreflightHandler
	r.HandleMethodNotAllowed = true
	return r
}

// NotFoundHandler is the default 404 handler
func NotFoundHandler(ctx *RequestCtx) {
	ctx.Error(StatusText(StatusNotFound), StatusNotFound)
}

// PreflightHandler answers OPTIONS requests with the CORS headers and no body.
func PreflightHandler(ctx *RequestCtx) {
	setCORSHeaders(ctx)
	ctx.SetStatusCode(StatusNoContent)
}

// ServeStatic mounts a read-only file tree under prefix, e.g. "/uploads".
func ServeStatic(r *Router, prefix, root string) {
	r.ServeFilesCustom(prefix+"/{filepath:*}", &FS{
		Root:               root,
		IndexNames:         nil,
		GenerateIndexPages: false,
		AcceptByteRange:    true,
		Compress:           false,
	})
}
