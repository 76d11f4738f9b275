// Package api defines the MedScan backend contract and its HTTP client.
//
// Two implementations exist: HTTPClient talks to a remote server over
// REST/JSON, and localapi.Backend serves the same contract from the local
// store for offline use.
package api

import (
	"context"

	"github.com/dmitrijs2005/medscan/internal/client/models"
)

// AuthResult is returned by Signup and Login. Token may be empty when the
// backend does not issue one on signup.
type AuthResult struct {
	Token string             `json:"token,omitempty"`
	User  models.UserProfile `json:"user"`
}

type Client interface {
	Signup(ctx context.Context, fields models.SignUpFields) (AuthResult, error)
	Login(ctx context.Context, email, password string) (AuthResult, error)
	Logout(ctx context.Context) error
	GetProfile(ctx context.Context, email string) (models.UserProfile, error)
	UpdateProfile(ctx context.Context, profile models.UserProfile) (models.UserProfile, error)

	// RequestReset asks the backend to issue a reset code and returns the
	// message to show the user.
	RequestReset(ctx context.Context, email string) (string, error)
	VerifyResetCode(ctx context.Context, email, code string) error
	CompleteReset(ctx context.Context, email, code, newPassword string) error

	LookupMedicine(ctx context.Context, name string) (models.MedicineRecord, error)
	SubmitOCR(ctx context.Context, image []byte) (models.MedicineRecord, error)
	// SaveHistory records rec for userID. added is false when the backend
	// already had it.
	SaveHistory(ctx context.Context, userID string, rec models.MedicineRecord) (added bool, err error)

	// SetToken sets the bearer token sent with later calls; "" clears it.
	SetToken(token string)
	Ping(ctx context.Context) error
}
