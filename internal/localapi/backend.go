// Package localapi serves the MedScan backend contract from the local key-value
// store. It backs the CLI in offline mode and the development API server.
//
// Keys:
//
//	accounts/<email>    account with argon2id password verifier
//	challenges/<email>  latest password-reset code for the address
//	history/<userID>    medicines saved by the account
//	settings/secret     token signing key, see LoadOrCreateSecret
package localapi

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/medscan/internal/auth"
	"github.com/dmitrijs2005/medscan/internal/client/api"
	"github.com/dmitrijs2005/medscan/internal/common"
	"github.com/dmitrijs2005/medscan/internal/kv"
	"github.com/dmitrijs2005/medscan/internal/logging"
)

const (
	prefixAccounts   = "accounts/"
	prefixChallenges = "challenges/"
	prefixHistory    = "history/"
	keySecret        = "settings/secret"

	// MockResetCode is issued by default instead of a random code.
	MockResetCode = "123456"

	DefaultTokenTTL = 24 * time.Hour
)

var _ api.Client = (*Backend)(nil)

// Backend implements api.Client on top of a kv.Store.
type Backend struct {
	store    kv.Store
	logger   logging.Logger
	secret   []byte
	tokenTTL time.Duration
	genCode  func() (string, error)
	catalog  *Catalog

	mu    sync.RWMutex
	token string
}

type Option func(*Backend)

// WithSecret sets the HS256 signing key. A random key is used otherwise, so
// tokens do not survive a restart.
func WithSecret(secret []byte) Option {
	return func(b *Backend) {
		if len(secret) > 0 {
			b.secret = secret
		}
	}
}

func WithTokenTTL(ttl time.Duration) Option {
	return func(b *Backend) {
		if ttl > 0 {
			b.tokenTTL = ttl
		}
	}
}

// WithCodeGenerator replaces the fixed mock reset code.
func WithCodeGenerator(gen func() (string, error)) Option {
	return func(b *Backend) { b.genCode = gen }
}

// RandomCode generates six random digits.
func RandomCode() (string, error) {
	return common.MakeRandDigits(6)
}

func WithLogger(l logging.Logger) Option {
	return func(b *Backend) { b.logger = l }
}

func WithCatalog(c *Catalog) Option {
	return func(b *Backend) { b.catalog = c }
}

// LoadOrCreateSecret returns the signing key kept in store, generating and
// saving one on first use. Passing it to WithSecret keeps cached tokens valid
// across restarts.
func LoadOrCreateSecret(ctx context.Context, store kv.Store) ([]byte, error) {
	var secret []byte
	err := store.WithinTx(ctx, func(ctx context.Context, r kv.Repository) error {
		v, err := r.Get(ctx, keySecret)
		if err != nil {
			return err
		}
		if len(v) > 0 {
			secret = v
			return nil
		}
		secret = common.GenerateRandByteArray(32)
		return r.Set(ctx, keySecret, secret)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: load signing key: %w", common.ErrStorage, err)
	}
	return secret, nil
}

func New(store kv.Store, opts ...Option) *Backend {
	b := &Backend{
		store:    store,
		logger:   logging.NewNop(),
		secret:   common.GenerateRandByteArray(32),
		tokenTTL: DefaultTokenTTL,
		genCode:  func() (string, error) { return MockResetCode, nil },
		catalog:  DefaultCatalog(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Backend) SetToken(token string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.token = token
}

func (b *Backend) Ping(ctx context.Context) error {
	_, err := b.store.Get(ctx, prefixAccounts)
	if err != nil {
		return fmt.Errorf("%w: %w", common.ErrStorage, err)
	}
	return nil
}

// ParseToken returns the account id carried by a token this backend issued.
func (b *Backend) ParseToken(token string) (string, error) {
	return auth.GetUserIDFromToken(token, b.secret)
}

type userIDKey struct{}

// WithUserID marks ctx as authenticated for userID. The HTTP server sets it
// after checking the bearer token.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

// UserIDFrom returns the id stored by WithUserID.
func UserIDFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey{}).(string)
	return id, ok && id != ""
}

// caller resolves the authenticated account id from ctx or from the token
// set with SetToken.
func (b *Backend) caller(ctx context.Context) (string, error) {
	if id, ok := UserIDFrom(ctx); ok {
		return id, nil
	}

	b.mu.RLock()
	token := b.token
	b.mu.RUnlock()

	if token == "" {
		return "", common.ErrUnauthorized
	}
	return b.ParseToken(token)
}

func (b *Backend) getJSON(ctx context.Context, key string, v any) (bool, error) {
	data, err := b.store.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("%w: %w", common.ErrStorage, err)
	}
	if data == nil {
		return false, nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("%w: decode %s: %w", common.ErrStorage, key, err)
	}
	return true, nil
}

func putJSON(ctx context.Context, r kv.Repository, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := r.Set(ctx, key, data); err != nil {
		return fmt.Errorf("%w: %w", common.ErrStorage, err)
	}
	return nil
}
