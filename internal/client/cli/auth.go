package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/medscan/internal/client/models"
	"github.com/dmitrijs2005/medscan/internal/common"
	"github.com/dmitrijs2005/medscan/internal/validate"
)

// getSimpleText, getTextWithDefault and getPassword are indirections used to
// facilitate testing. They point to interactive input helpers and can be
// swapped in tests.
var (
	getSimpleText      = GetSimpleText
	getTextWithDefault = GetTextWithDefault
	getPassword        = GetPassword
)

// readSecret reads a password and returns it as a string, wiping the
// terminal buffer.
func (a *App) readSecret(prompt string) (string, error) {
	pw, err := getPassword(a.out, prompt)
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(pw)
	return string(pw), nil
}

// SignUp prompts for the sign-up form and creates the account. The password
// is asked twice; a mismatch is reported before anything is sent.
func (a *App) SignUp(ctx context.Context) error {
	var f models.SignUpFields
	var err error

	if f.FirstName, err = getSimpleText(a.reader, "First name", a.out); err != nil {
		return err
	}
	if f.LastName, err = getSimpleText(a.reader, "Last name", a.out); err != nil {
		return err
	}
	if f.Email, err = getSimpleText(a.reader, "Email", a.out); err != nil {
		return err
	}
	if f.Password, err = a.readSecret("Password"); err != nil {
		return err
	}
	confirm, err := a.readSecret("Confirm password")
	if err != nil {
		return err
	}
	if err := validate.New().Confirm(validate.FieldConfirmPassword, f.Password, confirm).Err(); err != nil {
		return err
	}

	user, err := a.session.SignUp(ctx, f)
	if err != nil {
		return err
	}

	printlnFn(fmt.Sprintf("Welcome, %s! Your account is ready.", user.FullName()))
	return nil
}

// Login prompts for credentials. The email of a just completed password
// reset is offered as the default.
func (a *App) Login(ctx context.Context) error {
	email, err := getTextWithDefault(a.reader, "Email", a.session.ResetEmailHint(ctx), a.out)
	if err != nil {
		return err
	}
	password, err := a.readSecret("Password")
	if err != nil {
		return err
	}

	user, err := a.session.LogIn(ctx, email, password)
	if err != nil {
		return err
	}

	printlnFn(fmt.Sprintf("Logged in as %s.", user.FullName()))
	return nil
}

// Logout drops the local session. A failed remote logout is only logged by
// the session manager.
func (a *App) Logout(ctx context.Context) error {
	if err := a.session.LogOut(ctx); err != nil {
		return err
	}
	a.mu.Lock()
	a.last = nil
	a.mu.Unlock()

	printlnFn("Logged out.")
	return nil
}

// Forgot requests a password-reset code.
func (a *App) Forgot(ctx context.Context) error {
	email, err := getTextWithDefault(a.reader, "Email", a.defaultEmail(ctx), a.out)
	if err != nil {
		return err
	}

	msg, err := a.session.RequestPasswordReset(ctx, email)
	if err != nil {
		return err
	}

	a.mu.Lock()
	a.resetEmail = email
	a.mu.Unlock()

	printlnFn(msg)
	return nil
}

// Verify checks a reset code and keeps it for Reset.
func (a *App) Verify(ctx context.Context) error {
	email, err := getTextWithDefault(a.reader, "Email", a.defaultEmail(ctx), a.out)
	if err != nil {
		return err
	}
	code, err := getSimpleText(a.reader, "Verification code", a.out)
	if err != nil {
		return err
	}

	if err := a.session.VerifyResetCode(ctx, email, code); err != nil {
		return err
	}

	printlnFn("Code accepted. Use 'reset' to choose a new password.")
	return nil
}

// Reset sets a new password for the verified code.
func (a *App) Reset(ctx context.Context) error {
	password, err := a.readSecret("New password")
	if err != nil {
		return err
	}
	confirm, err := a.readSecret("Confirm new password")
	if err != nil {
		return err
	}

	if err := a.session.CompleteReset(ctx, password, confirm); err != nil {
		return err
	}

	printlnFn("Password updated. You can now log in.")
	return nil
}

// defaultEmail is the address the reset forms are pre-filled with.
func (a *App) defaultEmail(ctx context.Context) string {
	a.mu.Lock()
	email := a.resetEmail
	a.mu.Unlock()
	if email != "" {
		return email
	}
	if st := a.session.State(); st.User != nil {
		return st.User.Email
	}
	return a.session.ResetEmailHint(ctx)
}
