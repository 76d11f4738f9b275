package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/medscan/internal/client/api"
	"github.com/dmitrijs2005/medscan/internal/client/models"
	"github.com/dmitrijs2005/medscan/internal/validate"
)

func (r *Router) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (r *Router) handleSignup(w http.ResponseWriter, req *http.Request) {
	var body api.SignupRequest
	if !r.decode(w, req, &body) {
		return
	}
	res, err := r.backend.Signup(req.Context(), models.SignUpFields{
		FirstName: body.FirstName,
		LastName:  body.LastName,
		Email:     body.Email,
		Password:  body.Password,
	})
	if err != nil {
		r.writeError(w, req, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (r *Router) handleLogin(w http.ResponseWriter, req *http.Request) {
	var body api.LoginRequest
	if !r.decode(w, req, &body) {
		return
	}
	res, err := r.backend.Login(req.Context(), body.Email, body.Password)
	if err != nil {
		r.writeError(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (r *Router) handleLogout(w http.ResponseWriter, req *http.Request) {
	if err := r.backend.Logout(req.Context()); err != nil {
		r.writeError(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, api.MessageResponse{Message: "Logged out."})
}

func (r *Router) handleGetProfile(w http.ResponseWriter, req *http.Request) {
	email := req.URL.Query().Get("email")
	if err := validate.New().Email(validate.FieldEmail, email).Err(); err != nil {
		r.writeError(w, req, err)
		return
	}
	p, err := r.backend.GetProfile(req.Context(), email)
	if err != nil {
		r.writeError(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (r *Router) handleUpdateProfile(w http.ResponseWriter, req *http.Request) {
	var body models.UserProfile
	if !r.decode(w, req, &body) {
		return
	}
	p, err := r.backend.UpdateProfile(req.Context(), body)
	if err != nil {
		r.writeError(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (r *Router) handleForgotPassword(w http.ResponseWriter, req *http.Request) {
	var body api.ForgotPasswordRequest
	if !r.decode(w, req, &body) {
		return
	}
	msg, err := r.backend.RequestReset(req.Context(), body.Email)
	if err != nil {
		r.writeError(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, api.MessageResponse{Message: msg})
}

// handleVerifyReset checks the code and sets the new password in one step.
func (r *Router) handleVerifyReset(w http.ResponseWriter, req *http.Request) {
	var body api.VerifyResetRequest
	if !r.decode(w, req, &body) {
		return
	}
	if err := r.backend.CompleteReset(req.Context(), body.Email, body.Code, body.NewPassword); err != nil {
		r.writeError(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, api.MessageResponse{Message: "Password has been reset."})
}
