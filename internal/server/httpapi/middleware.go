package httpapi

import (
	"net/http"
	"strings"

	"github.com/dmitrijs2005/medscan/internal/client/api"
	"github.com/dmitrijs2005/medscan/internal/common"
	"github.com/dmitrijs2005/medscan/internal/localapi"
)

// authMiddleware requires a bearer token issued by the backend and puts the
// account id into the request context.
func (r *Router) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		authz := req.Header.Get(common.AuthorizationHeaderName)
		if !strings.HasPrefix(authz, common.BearerPrefix) {
			writeJSON(w, http.StatusUnauthorized, api.ErrorResponse{Code: common.CodeUnauthorized, Error: "missing bearer token"})
			return
		}
		token := strings.TrimPrefix(authz, common.BearerPrefix)
		userID, err := r.backend.ParseToken(token)
		if err != nil {
			r.writeError(w, req, err)
			return
		}
		ctx := localapi.WithUserID(req.Context(), userID)
		next.ServeHTTP(w, req.WithContext(ctx))
	})
}
