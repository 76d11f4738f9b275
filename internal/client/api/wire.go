package api

import "github.com/dmitrijs2005/medscan/internal/client/models"

// HTTP paths relative to the configured base URL.
const (
	PathSignup         = "/user/signup"
	PathLogin          = "/user/login"
	PathLogout         = "/user/logout"
	PathProfile        = "/user/profile"
	PathUpdateProfile  = "/profile"
	PathForgotPassword = "/forgetPassword/forget-password"
	PathVerifyReset    = "/forgetPassword/verify-reset"
	PathMedicine       = "/medicine/"
	PathScanOCR        = "/medicine/scan-ocr"
	PathSaveHistory    = "/history/save"
	PathHealth         = "/health"
)

// SignupRequest keeps the capitalised name keys the backend expects.
type SignupRequest struct {
	FirstName string `json:"FirstName"`
	LastName  string `json:"LastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type VerifyResetRequest struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	NewPassword string `json:"newPassword"`
}

// OCRRequest carries the image inline; encoding/json base64-encodes it.
type OCRRequest struct {
	Image []byte `json:"image"`
}

type OCRResponse struct {
	Medicine models.MedicineRecord `json:"medicine"`
}

type SaveHistoryRequest struct {
	UserID   string                `json:"userId"`
	Medicine models.MedicineRecord `json:"medicine"`
}

type SaveHistoryResponse struct {
	Added   bool   `json:"added"`
	Message string `json:"message,omitempty"`
}

// ErrorResponse is the body of every non-2xx reply. Older servers only fill
// Message; Code and Field are absent there.
type ErrorResponse struct {
	Code    string `json:"code,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
	Field   string `json:"field,omitempty"`
}
