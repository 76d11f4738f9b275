package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/medscan/internal/client/config"
	"github.com/dmitrijs2005/medscan/internal/client/services"
	"github.com/dmitrijs2005/medscan/internal/kv"
	"github.com/dmitrijs2005/medscan/internal/localapi"
	"github.com/dmitrijs2005/medscan/internal/logging"
)

// newTestApp builds an App over the offline backend and an in-memory store.
// input is what the user "types" at the prompts.
func newTestApp(t *testing.T, input string) (*App, *kv.SQLiteStore) {
	t.Helper()
	store, err := kv.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	backend := localapi.New(store, localapi.WithSecret([]byte("cli-test")))
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.Backend = config.BackendLocal

	return &App{
		config:   cfg,
		session:  services.NewSessionManager(backend, store, nil),
		medicine: services.NewMedicineService(backend, nil),
		pinger:   backend,
		logger:   logging.NewNop(),
		reader:   rdr(input),
		out:      io.Discard,
	}, store
}

// captureOutput redirects printlnFn into a buffer for the test.
func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) { return fmt.Fprintln(&buf, a...) }
	t.Cleanup(func() { printlnFn = orig })
	return &buf
}

// stubPasswords makes the password prompt return pws in order.
func stubPasswords(t *testing.T, pws ...string) {
	t.Helper()
	orig := readPassword
	i := 0
	readPassword = func(int) ([]byte, error) {
		if i >= len(pws) {
			return nil, io.EOF
		}
		p := []byte(pws[i])
		i++
		return p, nil
	}
	t.Cleanup(func() { readPassword = orig })
}

type fakePinger struct {
	fail  atomic.Bool
	calls atomic.Int32
}

func (p *fakePinger) Ping(context.Context) error {
	p.calls.Add(1)
	if p.fail.Load() {
		return errors.New("down")
	}
	return nil
}

func TestIsLoggedIn_FollowsSession(t *testing.T) {
	captureOutput(t)
	app, _ := newTestApp(t, "Ada\nLovelace\nada@example.com\n")
	stubPasswords(t, "password1", "password1")

	assert.False(t, app.isLoggedIn())
	require.NoError(t, app.SignUp(context.Background()))
	assert.True(t, app.isLoggedIn())
}

func TestSetMode_ChangesOnce(t *testing.T) {
	app := &App{logger: logging.NewNop()}

	app.setMode(ModeOnline)
	assert.Equal(t, ModeOnline, app.getMode())

	app.setMode(ModeOnline)
	assert.Equal(t, ModeOnline, app.getMode())

	app.setMode(ModeOffline)
	assert.Equal(t, ModeOffline, app.getMode())
}

func TestStartOnlineStatusWatcher(t *testing.T) {
	p := &fakePinger{}
	app := &App{logger: logging.NewNop(), pinger: p}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		app.StartOnlineStatusWatcher(ctx, 5*time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool { return app.getMode() == ModeOnline }, time.Second, time.Millisecond)

	p.fail.Store(true)
	require.Eventually(t, func() bool { return app.getMode() == ModeOffline }, time.Second, time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestNewApp_LocalBackend(t *testing.T) {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.Backend = config.BackendLocal
	cfg.DatabasePath = filepath.Join(t.TempDir(), "medscan.db")

	app, err := NewApp(cfg)
	require.NoError(t, err)
	require.NotNil(t, app.session)
	require.NotNil(t, app.medicine)
	require.NoError(t, app.pinger.Ping(context.Background()))
	require.NoError(t, app.closeFn())
}

func TestNewApp_RemoteBackend(t *testing.T) {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.DatabasePath = filepath.Join(t.TempDir(), "medscan.db")
	cfg.LogBackend = logging.BackendZap

	app, err := NewApp(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.closeFn() })
	assert.NotNil(t, app.session)
}

func TestNewApp_BadLogBackend(t *testing.T) {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.LogBackend = "syslog"
	cfg.DatabasePath = filepath.Join(t.TempDir(), "medscan.db")

	_, err := NewApp(cfg)
	assert.Error(t, err)
}
