// Package httpapi exposes localapi.Backend over the REST/JSON contract the
// MedScan client speaks. It is meant for development and end-to-end tests.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrijs2005/medscan/internal/client/api"
	"github.com/dmitrijs2005/medscan/internal/common"
	"github.com/dmitrijs2005/medscan/internal/localapi"
	"github.com/dmitrijs2005/medscan/internal/logging"
)

// DefaultMaxRequestBytes leaves room for a base64 encoded scan image.
const DefaultMaxRequestBytes = 16 << 20

type Router struct {
	backend         *localapi.Backend
	logger          logging.Logger
	maxRequestBytes int64
}

func NewRouter(backend *localapi.Backend, logger logging.Logger, maxRequestBytes int64) http.Handler {
	if logger == nil {
		logger = logging.NewNop()
	}
	if maxRequestBytes <= 0 {
		maxRequestBytes = DefaultMaxRequestBytes
	}
	r := &Router{backend: backend, logger: logger.With("module", "httpapi"), maxRequestBytes: maxRequestBytes}
	mux := chi.NewRouter()

	mux.Use(middleware.RequestID)
	mux.Use(middleware.Recoverer)
	mux.Use(r.logRequests)

	mux.Get(api.PathHealth, r.handleHealth)
	mux.Post(api.PathSignup, r.handleSignup)
	mux.Post(api.PathLogin, r.handleLogin)
	mux.Get(api.PathProfile, r.handleGetProfile)
	mux.Post(api.PathForgotPassword, r.handleForgotPassword)
	mux.Post(api.PathVerifyReset, r.handleVerifyReset)
	mux.Get(api.PathMedicine+"{name}", r.handleLookupMedicine)
	mux.Post(api.PathScanOCR, r.handleScanOCR)

	mux.Group(func(pr chi.Router) {
		pr.Use(r.authMiddleware)
		pr.Post(api.PathLogout, r.handleLogout)
		pr.Put(api.PathUpdateProfile, r.handleUpdateProfile)
		pr.Post(api.PathSaveHistory, r.handleSaveHistory)
		pr.Get(PathHistory, r.handleListHistory)
	})

	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError sends err as an api.ErrorResponse with the status and code
// registered for it in package common. Unknown errors become a generic 500.
func (r *Router) writeError(w http.ResponseWriter, req *http.Request, err error) {
	code, status := common.CodeFor(err)
	body := api.ErrorResponse{Code: code, Error: err.Error(), Field: common.FieldOf(err)}

	var ve *common.ValidationError
	if errors.As(err, &ve) && len(ve.Fields) > 0 {
		body.Error = ve.Fields[0].Message
	}

	if status >= http.StatusInternalServerError {
		r.logger.Error(req.Context(), "request failed", "path", req.URL.Path, "error", err)
		body.Error = "internal error"
	}
	writeJSON(w, status, body)
}

// decode reads a JSON body of at most maxRequestBytes into v. On failure it
// writes a 400 and returns false.
func (r *Router) decode(w http.ResponseWriter, req *http.Request, v any) bool {
	req.Body = http.MaxBytesReader(w, req.Body, r.maxRequestBytes)
	if err := json.NewDecoder(req.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, api.ErrorResponse{Code: common.CodeInvalidJSON, Error: "invalid json"})
		return false
	}
	return true
}

func (r *Router) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, req)
		r.logger.Info(req.Context(), "request",
			"method", req.Method,
			"path", req.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(req.Context()),
		)
	})
}
