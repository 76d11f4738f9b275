package services

import (
	"context"
	"encoding/json"

	"github.com/dmitrijs2005/medscan/internal/client/models"
	"github.com/dmitrijs2005/medscan/internal/common"
	"github.com/dmitrijs2005/medscan/internal/kv"
	"github.com/dmitrijs2005/medscan/internal/validate"
)

// RequestPasswordReset asks the backend for a code and forgets any code
// verified earlier. The returned message is meant for the user.
func (m *SessionManager) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	if err := validate.New().Email(validate.FieldEmail, email).Err(); err != nil {
		return "", err
	}
	email = common.NormalizeEmail(email)

	msg, err := m.client.RequestReset(ctx, email)
	if err != nil {
		return "", err
	}

	if err := m.store.Delete(ctx, KeyResetCode); err != nil {
		m.logger.Warn(ctx, "failed to drop previous reset code", "error", err)
	}
	return msg, nil
}

// VerifyResetCode checks code with the backend and caches it for
// CompleteReset.
func (m *SessionManager) VerifyResetCode(ctx context.Context, email, code string) error {
	err := validate.New().
		Email(validate.FieldEmail, email).
		Required(validate.FieldCode, code, "Please enter the verification code.").
		Err()
	if err != nil {
		return err
	}

	ch := models.ResetChallenge{Email: common.NormalizeEmail(email), Code: code}
	if err := m.client.VerifyResetCode(ctx, ch.Email, ch.Code); err != nil {
		return err
	}

	data, err := json.Marshal(ch)
	if err != nil {
		return err
	}
	if err := m.store.Set(ctx, KeyResetCode, data); err != nil {
		return storageErr("save reset code", err)
	}
	return nil
}

func (m *SessionManager) verifiedChallenge(ctx context.Context) (models.ResetChallenge, error) {
	noChallenge := &common.FieldErr{Field: validate.FieldCode, Err: common.ErrNoChallenge}

	raw, err := m.store.Get(ctx, KeyResetCode)
	if err != nil {
		return models.ResetChallenge{}, storageErr("read reset code", err)
	}
	if raw == nil {
		return models.ResetChallenge{}, noChallenge
	}
	var ch models.ResetChallenge
	if err := json.Unmarshal(raw, &ch); err != nil || ch.Email == "" || ch.Code == "" {
		m.logger.Warn(ctx, "cached reset code unreadable", "error", err)
		return models.ResetChallenge{}, noChallenge
	}
	return ch, nil
}

// CompleteReset sets the new password for the verified challenge. The email
// is then kept as a hint for the login form.
func (m *SessionManager) CompleteReset(ctx context.Context, newPassword, confirmPassword string) error {
	err := validate.New().
		Required(validate.FieldPassword, newPassword, "Please enter a new password.").
		Password(validate.FieldPassword, newPassword).
		Confirm(validate.FieldConfirmPassword, newPassword, confirmPassword).
		Err()
	if err != nil {
		return err
	}

	ch, err := m.verifiedChallenge(ctx)
	if err != nil {
		return err
	}

	if err := m.client.CompleteReset(ctx, ch.Email, ch.Code, newPassword); err != nil {
		return err
	}

	err = m.store.WithinTx(ctx, func(ctx context.Context, r kv.Repository) error {
		if err := r.Set(ctx, KeyResetEmail, []byte(ch.Email)); err != nil {
			return err
		}
		return r.Delete(ctx, KeyResetCode)
	})
	if err != nil {
		m.logger.Warn(ctx, "password changed but local reset state not updated", "error", err)
	}

	if cur := m.currentUser(); cur != nil && common.NormalizeEmail(cur.Email) == ch.Email {
		m.refreshProfile(ctx, ch.Email)
	}

	m.logger.Info(ctx, "password reset completed", "email", ch.Email)
	return nil
}

func (m *SessionManager) refreshProfile(ctx context.Context, email string) {
	p, err := m.client.GetProfile(ctx, email)
	if err != nil {
		m.logger.Warn(ctx, "profile refresh failed", "error", err)
		return
	}
	if err := m.writeUser(ctx, p); err != nil {
		m.logger.Warn(ctx, "failed to cache refreshed profile", "error", err)
		return
	}
	m.signedIn(p)
}

// ResetEmailHint returns the address of the last completed reset, or "".
func (m *SessionManager) ResetEmailHint(ctx context.Context) string {
	v, err := m.store.Get(ctx, KeyResetEmail)
	if err != nil {
		m.logger.Warn(ctx, "failed to read reset email hint", "error", err)
		return ""
	}
	return string(v)
}
