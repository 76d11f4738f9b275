package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/medscan/internal/client/api"
	"github.com/dmitrijs2005/medscan/internal/client/config"
	"github.com/dmitrijs2005/medscan/internal/client/models"
	"github.com/dmitrijs2005/medscan/internal/client/services"
	"github.com/dmitrijs2005/medscan/internal/kv"
	"github.com/dmitrijs2005/medscan/internal/localapi"
	"github.com/dmitrijs2005/medscan/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// medicineFinder is the part of services.MedicineService the CLI uses.
type medicineFinder interface {
	Lookup(ctx context.Context, name string) (models.MedicineRecord, error)
	Scan(ctx context.Context, image []byte) (models.MedicineRecord, error)
}

type pinger interface {
	Ping(ctx context.Context) error
}

type App struct {
	config   *config.Config
	session  services.SessionService
	medicine medicineFinder
	pinger   pinger
	logger   logging.Logger
	reader   *bufio.Reader
	out      io.Writer
	closeFn  func() error

	mu         sync.Mutex
	mode       Mode
	last       *models.MedicineRecord
	resetEmail string
}

// NewApp opens the local store and wires the session manager to the backend
// selected by c.Backend.
func NewApp(c *config.Config) (*App, error) {
	ctx := context.Background()

	logger, err := logging.New(c.LogBackend, c.LogLevel, os.Stderr)
	if err != nil {
		return nil, err
	}

	store, err := kv.Open(ctx, c.DatabasePath)
	if err != nil {
		logger.Error(ctx, "error initializing database", "path", c.DatabasePath, "error", err)
		return nil, err
	}

	client, err := newClient(ctx, c, store, logger)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	return &App{
		config:   c,
		session:  services.NewSessionManager(client, store, logger),
		medicine: services.NewMedicineService(client, logger),
		pinger:   client,
		logger:   logger,
		reader:   bufio.NewReader(os.Stdin),
		out:      os.Stdout,
		closeFn:  store.Close,
	}, nil
}

func newClient(ctx context.Context, c *config.Config, store kv.Store, logger logging.Logger) (api.Client, error) {
	if c.Backend == config.BackendLocal {
		secret, err := localapi.LoadOrCreateSecret(ctx, store)
		if err != nil {
			return nil, err
		}
		return localapi.New(store, localapi.WithSecret(secret), localapi.WithLogger(logger)), nil
	}
	return api.NewHTTPClient(c.APIBaseURL, c.RequestTimeout, api.WithRateLimit(c.RateLimit, c.RateBurst)), nil
}

// Run starts the connectivity watcher and the REPL and blocks until the user
// exits or ctx is cancelled. The local store is closed on return.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	a.Root(ctx)

	if a.closeFn != nil {
		return a.closeFn()
	}
	return nil
}

func (a *App) isLoggedIn() bool {
	return a.session.State().SignedIn
}

func (a *App) getMode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()

	if changed {
		a.logger.Info(context.Background(), "connectivity changed", "mode", mode)
	}
}

func (a *App) lastRecord() *models.MedicineRecord {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.last
}

func (a *App) setLastRecord(rec models.MedicineRecord) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.last = &rec
}

// checkOnline pings the backend once and updates the mode.
func (a *App) checkOnline(ctx context.Context) {
	pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := a.pinger.Ping(pctx); err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return
		}
		a.setMode(ModeOffline)
		return
	}
	a.setMode(ModeOnline)
}

// StartOnlineStatusWatcher probes the backend right away and then every
// interval until ctx is done.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	a.checkOnline(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}
