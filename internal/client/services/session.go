// Package services contains the client application services. This file
// defines the session manager: it owns "who is signed in", mirrors
// server-confirmed results into the local store and tells front ends when
// that changes.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/medscan/internal/auth"
	"github.com/dmitrijs2005/medscan/internal/client/api"
	"github.com/dmitrijs2005/medscan/internal/client/models"
	"github.com/dmitrijs2005/medscan/internal/common"
	"github.com/dmitrijs2005/medscan/internal/kv"
	"github.com/dmitrijs2005/medscan/internal/logging"
	"github.com/dmitrijs2005/medscan/internal/validate"
)

// Local store keys.
const (
	KeyUser           = "user"
	KeyToken          = "token"
	KeyResetCode      = "resetCode"
	KeyResetEmail     = "resetEmail"
	KeyOnboardingSeen = "hasSeenOnboarding"
	PrefixHistory     = "medicineHistory/"
)

// SessionService is what front ends use.
//
// Contract:
//   - Initialize never fails; an unreadable store reads as signed out.
//   - Every other operation either succeeds and persists, or returns an
//     error and leaves the stored session as it was.
//   - Emails are compared trimmed and case-folded.
type SessionService interface {
	Initialize(ctx context.Context) models.State
	State() models.State
	Subscribe(fn func(models.State)) (cancel func())

	SignUp(ctx context.Context, f models.SignUpFields) (models.UserProfile, error)
	LogIn(ctx context.Context, email, password string) (models.UserProfile, error)
	LogOut(ctx context.Context) error
	UpdateProfile(ctx context.Context, firstName, lastName, email string) (models.UserProfile, error)

	RequestPasswordReset(ctx context.Context, email string) (string, error)
	VerifyResetCode(ctx context.Context, email, code string) error
	CompleteReset(ctx context.Context, newPassword, confirmPassword string) error
	ResetEmailHint(ctx context.Context) string

	SaveHistory(ctx context.Context, rec models.MedicineRecord) (bool, error)
	LoadHistory(ctx context.Context) ([]models.HistoryEntry, error)

	MarkOnboardingSeen(ctx context.Context) error
	OfflineKeys(ctx context.Context) ([]string, error)
}

var _ SessionService = (*SessionManager)(nil)

// SessionManager is the SessionService backed by an api.Client and a
// kv.Store.
type SessionManager struct {
	client api.Client
	store  kv.Store
	logger logging.Logger
	now    func() time.Time

	mu        sync.Mutex
	state     models.State
	listeners map[int]func(models.State)
	nextID    int
}

func NewSessionManager(client api.Client, store kv.Store, logger logging.Logger) *SessionManager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &SessionManager{
		client:    client,
		store:     store,
		logger:    logger.With("component", "session"),
		now:       time.Now,
		state:     models.State{Route: models.RouteMain},
		listeners: make(map[int]func(models.State)),
	}
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", common.ErrStorage, op, err)
}

func historyKey(email string) string {
	return PrefixHistory + common.NormalizeEmail(email)
}

// Initialize loads the persisted session and decides the start route.
func (m *SessionManager) Initialize(ctx context.Context) models.State {
	user, err := m.readUser(ctx)
	if err != nil {
		m.logger.Warn(ctx, "stored user unreadable, starting signed out", "error", err)
		user = nil
	}

	if user == nil {
		m.client.SetToken("")
		if token, err := m.store.Get(ctx, KeyToken); err == nil && token != nil {
			if err := m.store.Delete(ctx, KeyToken); err != nil {
				m.logger.Warn(ctx, "failed to remove stray token", "error", err)
			}
		}
	} else {
		m.restoreToken(ctx)
	}

	st := models.State{SignedIn: user != nil, User: user, Route: models.RouteMain}
	if user == nil && !m.onboardingSeen(ctx) {
		st.Route = models.RouteOnboarding
	}

	m.setState(st)
	m.logger.Info(ctx, "session initialized", "signed_in", st.SignedIn, "route", st.Route)
	return st
}

func (m *SessionManager) restoreToken(ctx context.Context) {
	raw, err := m.store.Get(ctx, KeyToken)
	if err != nil {
		m.logger.Warn(ctx, "failed to read token", "error", err)
		return
	}
	token := string(raw)
	m.client.SetToken(token)
	if token == "" {
		return
	}
	if exp, ok := auth.ExpiresAt(token); ok && exp.Before(m.now()) {
		m.logger.Warn(ctx, "cached token has expired, remote calls may be rejected", "expired_at", exp)
	}
}

// readUser returns the stored profile, nil when absent or without email.
func (m *SessionManager) readUser(ctx context.Context) (*models.UserProfile, error) {
	raw, err := m.store.Get(ctx, KeyUser)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}
	var u models.UserProfile
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	if strings.TrimSpace(u.Email) == "" {
		return nil, fmt.Errorf("user record has no email")
	}
	return &u, nil
}

func (m *SessionManager) onboardingSeen(ctx context.Context) bool {
	v, err := m.store.Get(ctx, KeyOnboardingSeen)
	if err != nil {
		m.logger.Warn(ctx, "failed to read onboarding flag", "error", err)
		return false
	}
	return v != nil
}

func (m *SessionManager) State() models.State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copyState(m.state)
}

// Subscribe registers fn for state changes. fn runs on the goroutine that
// caused the change, after the manager has released its lock.
func (m *SessionManager) Subscribe(fn func(models.State)) (cancel func()) {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.listeners, id)
		m.mu.Unlock()
	}
}

func copyState(s models.State) models.State {
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}

func (m *SessionManager) setState(st models.State) {
	m.mu.Lock()
	m.state = st
	fns := make([]func(models.State), 0, len(m.listeners))
	for _, fn := range m.listeners {
		fns = append(fns, fn)
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn(copyState(st))
	}
}

func (m *SessionManager) signedIn(user models.UserProfile) {
	m.setState(models.State{SignedIn: true, User: &user, Route: models.RouteMain})
}

func (m *SessionManager) currentUser() *models.UserProfile {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.state.SignedIn || m.state.User == nil {
		return nil
	}
	u := *m.state.User
	return &u
}

// persistSession writes token then user in one batch. An empty token removes
// any stale one.
func (m *SessionManager) persistSession(ctx context.Context, token string, user models.UserProfile, markSeen bool) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	err = m.store.WithinTx(ctx, func(ctx context.Context, r kv.Repository) error {
		if token != "" {
			if err := r.Set(ctx, KeyToken, []byte(token)); err != nil {
				return err
			}
		} else if err := r.Delete(ctx, KeyToken); err != nil {
			return err
		}
		if err := r.Set(ctx, KeyUser, data); err != nil {
			return err
		}
		if markSeen {
			return r.Set(ctx, KeyOnboardingSeen, []byte("true"))
		}
		return nil
	})
	if err != nil {
		return storageErr("save session", err)
	}
	return nil
}

func (m *SessionManager) writeUser(ctx context.Context, user models.UserProfile) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	if err := m.store.Set(ctx, KeyUser, data); err != nil {
		return storageErr("save user", err)
	}
	return nil
}

func (m *SessionManager) SignUp(ctx context.Context, f models.SignUpFields) (models.UserProfile, error) {
	err := validate.New().
		Required(validate.FieldFirstName, f.FirstName, "Please enter First Name.").
		Required(validate.FieldLastName, f.LastName, "Please enter Last Name.").
		Email(validate.FieldEmail, f.Email).
		Password(validate.FieldPassword, f.Password).
		Err()
	if err != nil {
		return models.UserProfile{}, err
	}

	f.FirstName = strings.TrimSpace(f.FirstName)
	f.LastName = strings.TrimSpace(f.LastName)
	f.Email = common.NormalizeEmail(f.Email)

	res, err := m.client.Signup(ctx, f)
	if err != nil {
		return models.UserProfile{}, err
	}

	if res.Token != "" {
		m.client.SetToken(res.Token)
	}

	user := res.User
	if p, err := m.client.GetProfile(ctx, f.Email); err != nil {
		m.logger.Warn(ctx, "profile fetch after signup failed, using signup response", "error", err)
	} else {
		user = p
	}
	if user.Email == "" {
		user = models.UserProfile{ID: user.ID, FirstName: f.FirstName, LastName: f.LastName, Email: f.Email}
	}

	if err := m.persistSession(ctx, res.Token, user, true); err != nil {
		m.client.SetToken("")
		return models.UserProfile{}, err
	}

	m.signedIn(user)
	m.logger.Info(ctx, "signed up", "user_id", user.ID)
	return user, nil
}

func (m *SessionManager) LogIn(ctx context.Context, email, password string) (models.UserProfile, error) {
	err := validate.New().
		Email(validate.FieldEmail, email).
		Required(validate.FieldPassword, password, "Please enter a password.").
		Password(validate.FieldPassword, password).
		Err()
	if err != nil {
		return models.UserProfile{}, err
	}
	email = common.NormalizeEmail(email)

	res, err := m.client.Login(ctx, email, password)
	if err != nil {
		return models.UserProfile{}, err
	}

	user := res.User
	if user.Email == "" {
		user.Email = email
	}

	m.client.SetToken(res.Token)
	if err := m.persistSession(ctx, res.Token, user, true); err != nil {
		m.client.SetToken("")
		return models.UserProfile{}, err
	}

	if p, err := m.client.GetProfile(ctx, email); err != nil {
		m.logger.Warn(ctx, "extended profile fetch failed, keeping login profile", "error", err)
	} else if p.Email != "" {
		if err := m.writeUser(ctx, p); err != nil {
			m.logger.Warn(ctx, "failed to cache extended profile", "error", err)
		} else {
			user = p
		}
	}

	if err := m.store.Delete(ctx, KeyResetEmail); err != nil {
		m.logger.Warn(ctx, "failed to clear reset email hint", "error", err)
	}

	m.signedIn(user)
	m.logger.Info(ctx, "logged in", "user_id", user.ID)
	return user, nil
}

// LogOut ends the session locally even when the backend cannot be reached.
func (m *SessionManager) LogOut(ctx context.Context) error {
	if err := m.client.Logout(ctx); err != nil {
		m.logger.Warn(ctx, "remote logout failed, clearing local session anyway", "error", err)
	}

	err := m.store.WithinTx(ctx, func(ctx context.Context, r kv.Repository) error {
		for _, key := range []string{KeyUser, KeyToken, KeyResetCode} {
			if err := r.Delete(ctx, key); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return storageErr("clear session", err)
	}

	m.client.SetToken("")
	m.setState(models.State{SignedIn: false, Route: models.RouteMain})
	m.logger.Info(ctx, "logged out")
	return nil
}

func (m *SessionManager) UpdateProfile(ctx context.Context, firstName, lastName, email string) (models.UserProfile, error) {
	cur := m.currentUser()
	if cur == nil {
		return models.UserProfile{}, common.ErrSignedOut
	}

	err := validate.New().
		Required(validate.FieldFirstName, firstName, "Please enter First Name.").
		Required(validate.FieldLastName, lastName, "Please enter Last Name.").
		Email(validate.FieldEmail, email).
		Err()
	if err != nil {
		return models.UserProfile{}, err
	}

	want := *cur
	want.FirstName = strings.TrimSpace(firstName)
	want.LastName = strings.TrimSpace(lastName)
	want.Email = common.NormalizeEmail(email)

	p, err := m.client.UpdateProfile(ctx, want)
	if err != nil {
		return models.UserProfile{}, err
	}
	if p.Email == "" {
		p = want
	}

	data, err := json.Marshal(p)
	if err != nil {
		return models.UserProfile{}, fmt.Errorf("encode user: %w", err)
	}
	oldKey, newKey := historyKey(cur.Email), historyKey(p.Email)

	err = m.store.WithinTx(ctx, func(ctx context.Context, r kv.Repository) error {
		if oldKey != newKey {
			hist, err := r.Get(ctx, oldKey)
			if err != nil {
				return err
			}
			if hist != nil {
				if err := r.Set(ctx, newKey, hist); err != nil {
					return err
				}
				if err := r.Delete(ctx, oldKey); err != nil {
					return err
				}
			}
		}
		return r.Set(ctx, KeyUser, data)
	})
	if err != nil {
		return models.UserProfile{}, storageErr("save profile", err)
	}

	m.signedIn(p)
	return p, nil
}

func (m *SessionManager) MarkOnboardingSeen(ctx context.Context) error {
	if err := m.store.Set(ctx, KeyOnboardingSeen, []byte("true")); err != nil {
		return storageErr("mark onboarding", err)
	}
	st := m.State()
	if st.Route == models.RouteOnboarding {
		st.Route = models.RouteMain
		m.setState(st)
	}
	return nil
}

// OfflineKeys lists the session cache keys currently present in the store.
func (m *SessionManager) OfflineKeys(ctx context.Context) ([]string, error) {
	all, err := m.store.List(ctx, "")
	if err != nil {
		return nil, storageErr("list keys", err)
	}
	keys := make([]string, 0, len(all))
	for k := range all {
		switch {
		case k == KeyUser, k == KeyToken, k == KeyResetCode, k == KeyResetEmail, k == KeyOnboardingSeen,
			strings.HasPrefix(k, PrefixHistory):
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	return keys, nil
}
