package httpapi

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrijs2005/medscan/internal/client/api"
	"github.com/dmitrijs2005/medscan/internal/common"
	"github.com/dmitrijs2005/medscan/internal/localapi"
)

// PathHistory lists the caller's saved medicines. The mobile client never
// reads it; it is here for inspection during development.
const PathHistory = "/history"

func (r *Router) handleLookupMedicine(w http.ResponseWriter, req *http.Request) {
	name := chi.URLParam(req, "name")
	if unescaped, err := url.PathUnescape(name); err == nil {
		name = unescaped
	}
	rec, err := r.backend.LookupMedicine(req.Context(), name)
	if err != nil {
		r.writeError(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (r *Router) handleScanOCR(w http.ResponseWriter, req *http.Request) {
	var body api.OCRRequest
	if !r.decode(w, req, &body) {
		return
	}
	rec, err := r.backend.SubmitOCR(req.Context(), body.Image)
	if err != nil {
		r.writeError(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, api.OCRResponse{Medicine: rec})
}

// handleSaveHistory saves for the token's account. A userId in the body
// naming someone else is refused.
func (r *Router) handleSaveHistory(w http.ResponseWriter, req *http.Request) {
	var body api.SaveHistoryRequest
	if !r.decode(w, req, &body) {
		return
	}
	userID, _ := localapi.UserIDFrom(req.Context())
	if body.UserID != "" && body.UserID != userID {
		writeJSON(w, http.StatusForbidden, api.ErrorResponse{Code: common.CodeForbidden, Error: "cannot save history for another user"})
		return
	}

	added, err := r.backend.SaveHistory(req.Context(), userID, body.Medicine)
	if err != nil {
		r.writeError(w, req, err)
		return
	}
	res := api.SaveHistoryResponse{Added: added, Message: "Medicine saved to history."}
	if !added {
		res.Message = "Medicine already in history."
	}
	writeJSON(w, http.StatusOK, res)
}

func (r *Router) handleListHistory(w http.ResponseWriter, req *http.Request) {
	userID, _ := localapi.UserIDFrom(req.Context())
	list, err := r.backend.History(req.Context(), userID)
	if err != nil {
		r.writeError(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}
