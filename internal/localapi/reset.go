package localapi

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/medscan/internal/common"
	"github.com/dmitrijs2005/medscan/internal/kv"
	"github.com/dmitrijs2005/medscan/internal/validate"
)

type challenge struct {
	Email    string    `json:"email"`
	Code     string    `json:"code"`
	IssuedAt time.Time `json:"issuedAt"`
}

func challengeKey(email string) string {
	return prefixChallenges + common.NormalizeEmail(email)
}

// RequestReset issues a new code for a registered address, replacing any
// earlier one. There is no delivery channel, so the code is part of the
// returned message.
func (b *Backend) RequestReset(ctx context.Context, email string) (string, error) {
	if _, err := b.loadAccount(ctx, email); err != nil {
		return "", err
	}

	code, err := b.genCode()
	if err != nil {
		return "", fmt.Errorf("generate reset code: %w", err)
	}

	c := challenge{Email: common.NormalizeEmail(email), Code: code, IssuedAt: time.Now().UTC()}
	if err := putJSON(ctx, b.store, challengeKey(email), c); err != nil {
		return "", err
	}

	b.logger.Info(ctx, "reset code issued", "email", c.Email)
	return fmt.Sprintf("Verification code sent (use code: %s).", code), nil
}

func (b *Backend) checkCode(ctx context.Context, email, code string) error {
	var c challenge
	ok, err := b.getJSON(ctx, challengeKey(email), &c)
	if err != nil {
		return err
	}
	if !ok {
		return &common.FieldErr{Field: validate.FieldCode, Err: common.ErrNoChallenge}
	}
	if c.Code != code {
		return &common.FieldErr{Field: validate.FieldCode, Err: common.ErrInvalidCode}
	}
	return nil
}

func (b *Backend) VerifyResetCode(ctx context.Context, email, code string) error {
	if code == "" {
		return validate.FieldError(validate.FieldCode, "Please enter the verification code.")
	}
	return b.checkCode(ctx, email, code)
}

// CompleteReset checks the code again, stores the new password and consumes
// the challenge in one transaction.
func (b *Backend) CompleteReset(ctx context.Context, email, code, newPassword string) error {
	if err := validate.New().Password(validate.FieldPassword, newPassword).Err(); err != nil {
		return err
	}
	if err := b.checkCode(ctx, email, code); err != nil {
		return err
	}

	acc, err := b.loadAccount(ctx, email)
	if err != nil {
		return err
	}
	b.setPassword(acc, newPassword)

	return b.store.WithinTx(ctx, func(ctx context.Context, r kv.Repository) error {
		if err := putJSON(ctx, r, accountKey(email), acc); err != nil {
			return err
		}
		if err := r.Delete(ctx, challengeKey(email)); err != nil {
			return fmt.Errorf("%w: %w", common.ErrStorage, err)
		}
		return nil
	})
}
