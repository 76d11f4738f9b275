package localapi

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/medscan/internal/auth"
	"github.com/dmitrijs2005/medscan/internal/client/api"
	"github.com/dmitrijs2005/medscan/internal/client/models"
	"github.com/dmitrijs2005/medscan/internal/common"
	"github.com/dmitrijs2005/medscan/internal/cryptox"
	"github.com/dmitrijs2005/medscan/internal/kv"
	"github.com/dmitrijs2005/medscan/internal/validate"
)

// account is the stored form of a user. Only a salted verifier of the
// password is kept.
type account struct {
	Profile  models.UserProfile `json:"profile"`
	Salt     []byte             `json:"salt"`
	Verifier []byte             `json:"verifier"`
}

func accountKey(email string) string {
	return prefixAccounts + common.NormalizeEmail(email)
}

func (b *Backend) loadAccount(ctx context.Context, email string) (*account, error) {
	var acc account
	ok, err := b.getJSON(ctx, accountKey(email), &acc)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &common.FieldErr{Field: validate.FieldEmail, Err: common.ErrUnregisteredEmail}
	}
	return &acc, nil
}

func (b *Backend) accountByID(ctx context.Context, id string) (string, *account, error) {
	all, err := b.store.List(ctx, prefixAccounts)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", common.ErrStorage, err)
	}
	for key, data := range all {
		var acc account
		if err := json.Unmarshal(data, &acc); err != nil {
			b.logger.Warn(ctx, "skipping unreadable account", "key", key, "error", err)
			continue
		}
		if acc.Profile.ID == id {
			return key, &acc, nil
		}
	}
	return "", nil, common.ErrUnauthorized
}

func (b *Backend) setPassword(acc *account, password string) {
	acc.Salt = common.GenerateRandByteArray(cryptox.SaltSize)
	acc.Verifier = cryptox.PasswordVerifier(password, acc.Salt)
}

func (b *Backend) issueToken(userID string) (string, error) {
	token, err := auth.GenerateToken(userID, b.secret, b.tokenTTL)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return token, nil
}

func (b *Backend) Signup(ctx context.Context, f models.SignUpFields) (api.AuthResult, error) {
	err := validate.New().
		Required(validate.FieldFirstName, f.FirstName, "Please enter First Name.").
		Required(validate.FieldLastName, f.LastName, "Please enter Last Name.").
		Email(validate.FieldEmail, f.Email).
		Password(validate.FieldPassword, f.Password).
		Err()
	if err != nil {
		return api.AuthResult{}, err
	}

	key := accountKey(f.Email)
	existing, err := b.store.Get(ctx, key)
	if err != nil {
		return api.AuthResult{}, fmt.Errorf("%w: %w", common.ErrStorage, err)
	}
	if existing != nil {
		return api.AuthResult{}, &common.FieldErr{Field: validate.FieldEmail, Err: common.ErrDuplicateEmail}
	}

	acc := &account{Profile: models.UserProfile{
		ID:        uuid.NewString(),
		FirstName: strings.TrimSpace(f.FirstName),
		LastName:  strings.TrimSpace(f.LastName),
		Email:     common.NormalizeEmail(f.Email),
	}}
	b.setPassword(acc, f.Password)

	token, err := b.issueToken(acc.Profile.ID)
	if err != nil {
		return api.AuthResult{}, err
	}
	if err := putJSON(ctx, b.store, key, acc); err != nil {
		return api.AuthResult{}, err
	}

	b.logger.Info(ctx, "account created", "user_id", acc.Profile.ID)
	return api.AuthResult{Token: token, User: acc.Profile}, nil
}

func (b *Backend) Login(ctx context.Context, email, password string) (api.AuthResult, error) {
	acc, err := b.loadAccount(ctx, email)
	if err != nil {
		return api.AuthResult{}, err
	}
	if !cryptox.CheckPassword(password, acc.Salt, acc.Verifier) {
		return api.AuthResult{}, &common.FieldErr{Field: validate.FieldPassword, Err: common.ErrWrongPassword}
	}

	token, err := b.issueToken(acc.Profile.ID)
	if err != nil {
		return api.AuthResult{}, err
	}
	return api.AuthResult{Token: token, User: acc.Profile}, nil
}

// Logout is a no-op: tokens are stateless and expire on their own.
func (b *Backend) Logout(ctx context.Context) error {
	return nil
}

func (b *Backend) GetProfile(ctx context.Context, email string) (models.UserProfile, error) {
	acc, err := b.loadAccount(ctx, email)
	if err != nil {
		return models.UserProfile{}, err
	}
	return acc.Profile, nil
}

// UpdateProfile changes the caller's names, image and email. Moving to an
// address that belongs to another account fails with ErrDuplicateEmail.
func (b *Backend) UpdateProfile(ctx context.Context, p models.UserProfile) (models.UserProfile, error) {
	userID, err := b.caller(ctx)
	if err != nil {
		return models.UserProfile{}, err
	}

	err = validate.New().
		Required(validate.FieldFirstName, p.FirstName, "Please enter First Name.").
		Required(validate.FieldLastName, p.LastName, "Please enter Last Name.").
		Email(validate.FieldEmail, p.Email).
		Err()
	if err != nil {
		return models.UserProfile{}, err
	}

	oldKey, acc, err := b.accountByID(ctx, userID)
	if err != nil {
		return models.UserProfile{}, err
	}

	newKey := accountKey(p.Email)
	if newKey != oldKey {
		taken, err := b.store.Get(ctx, newKey)
		if err != nil {
			return models.UserProfile{}, fmt.Errorf("%w: %w", common.ErrStorage, err)
		}
		if taken != nil {
			return models.UserProfile{}, &common.FieldErr{Field: validate.FieldEmail, Err: common.ErrDuplicateEmail}
		}
	}

	acc.Profile.FirstName = strings.TrimSpace(p.FirstName)
	acc.Profile.LastName = strings.TrimSpace(p.LastName)
	acc.Profile.Email = common.NormalizeEmail(p.Email)
	acc.Profile.ProfileImage = p.ProfileImage

	err = b.store.WithinTx(ctx, func(ctx context.Context, r kv.Repository) error {
		if newKey != oldKey {
			if err := r.Delete(ctx, oldKey); err != nil {
				return fmt.Errorf("%w: %w", common.ErrStorage, err)
			}
		}
		return putJSON(ctx, r, newKey, acc)
	})
	if err != nil {
		return models.UserProfile{}, err
	}
	return acc.Profile, nil
}
