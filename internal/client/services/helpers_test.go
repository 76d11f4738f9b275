package services

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/medscan/internal/client/api"
	"github.com/dmitrijs2005/medscan/internal/client/models"
	"github.com/dmitrijs2005/medscan/internal/kv"
	"github.com/dmitrijs2005/medscan/internal/localapi"
)

var errBoom = errors.New("boom")

// spyClient wraps a real backend, counting calls and injecting failures.
type spyClient struct {
	api.Client

	mu              sync.Mutex
	saveCalls       int
	logoutErr       error
	profileErr      error
	saveHistoryErr  error
	lastToken       string
	completeResetFn func(email, code string)
}

func (s *spyClient) SaveHistory(ctx context.Context, userID string, rec models.MedicineRecord) (bool, error) {
	s.mu.Lock()
	s.saveCalls++
	s.mu.Unlock()
	if s.saveHistoryErr != nil {
		return false, s.saveHistoryErr
	}
	return s.Client.SaveHistory(ctx, userID, rec)
}

func (s *spyClient) Logout(ctx context.Context) error {
	if s.logoutErr != nil {
		return s.logoutErr
	}
	return s.Client.Logout(ctx)
}

func (s *spyClient) GetProfile(ctx context.Context, email string) (models.UserProfile, error) {
	if s.profileErr != nil {
		return models.UserProfile{}, s.profileErr
	}
	return s.Client.GetProfile(ctx, email)
}

func (s *spyClient) SetToken(token string) {
	s.mu.Lock()
	s.lastToken = token
	s.mu.Unlock()
	s.Client.SetToken(token)
}

func (s *spyClient) CompleteReset(ctx context.Context, email, code, newPassword string) error {
	if s.completeResetFn != nil {
		s.completeResetFn(email, code)
	}
	return s.Client.CompleteReset(ctx, email, code, newPassword)
}

func (s *spyClient) saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveCalls
}

func (s *spyClient) token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastToken
}

// flakyStore fails writes on demand.
type flakyStore struct {
	kv.Store
	failWrites bool
}

func (f *flakyStore) Set(ctx context.Context, key string, value []byte) error {
	if f.failWrites {
		return errBoom
	}
	return f.Store.Set(ctx, key, value)
}

func (f *flakyStore) Delete(ctx context.Context, key string) error {
	if f.failWrites {
		return errBoom
	}
	return f.Store.Delete(ctx, key)
}

func (f *flakyStore) WithinTx(ctx context.Context, fn func(ctx context.Context, r kv.Repository) error) error {
	if f.failWrites {
		return errBoom
	}
	return f.Store.WithinTx(ctx, fn)
}

type fixture struct {
	store   *kv.SQLiteStore
	flaky   *flakyStore
	backend *localapi.Backend
	client  *spyClient
	mgr     *SessionManager
}

// newFixture wires a manager to an offline backend sharing one in-memory
// store, the same way the CLI does in local mode.
func newFixture(t *testing.T, opts ...localapi.Option) *fixture {
	t.Helper()
	store, err := kv.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	backend := localapi.New(store, opts...)
	client := &spyClient{Client: backend}
	flaky := &flakyStore{Store: store}
	return &fixture{
		store:   store,
		flaky:   flaky,
		backend: backend,
		client:  client,
		mgr:     NewSessionManager(client, flaky, nil),
	}
}

// reopen builds a fresh manager over the same store, like a restart.
func (f *fixture) reopen() *SessionManager {
	return NewSessionManager(f.client, f.flaky, nil)
}

func sequentialCodes() func() (string, error) {
	var mu sync.Mutex
	n := 0
	return func() (string, error) {
		mu.Lock()
		defer mu.Unlock()
		n++
		return strconv.Itoa(200000 + n), nil
	}
}

var adaFields = models.SignUpFields{
	FirstName: "Ada",
	LastName:  "Lovelace",
	Email:     "ada@example.com",
	Password:  "password1",
}

var panadol = models.MedicineRecord{
	Name:    "Panadol",
	Company: "GSK Pharma",
	Formula: "Paracetamol 500mg",
}
