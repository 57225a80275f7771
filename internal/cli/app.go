package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/runas/internal/bootstrap"
	"github.com/dmitrijs2005/runas/internal/cluster"
	"github.com/dmitrijs2005/runas/internal/common"
	"github.com/dmitrijs2005/runas/internal/config"
	"github.com/dmitrijs2005/runas/internal/credentials"
	"github.com/dmitrijs2005/runas/internal/cryptox"
	"github.com/dmitrijs2005/runas/internal/journal"
	"github.com/dmitrijs2005/runas/internal/logging"
	"github.com/dmitrijs2005/runas/internal/netx"
	"github.com/dmitrijs2005/runas/internal/realm"
	"github.com/dmitrijs2005/runas/internal/settings"
)

// Streams are the process standard streams.
type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// StdStreams returns the os standard streams.
func StdStreams() Streams {
	return Streams{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}
}

// App holds everything a command needs for one invocation.
type App struct {
	config    *config.Config
	streams   Streams
	logger    logging.Logger
	logCloser io.Closer
	runID     string
	settings  *settings.Settings
	store     *realm.Store
	requester cluster.Requester
	journal   *journal.Journal
}

// NewApp wires the components from cfg. A journal that cannot be opened is
// logged and left out.
func NewApp(ctx context.Context, cfg *config.Config, streams Streams) (*App, error) {
	sl, closer := logging.NewSlog(logging.Options{Verbose: cfg.Verbose, File: cfg.LogFile, Console: streams.Err})
	logger := logging.NewRunLogger(sl, "")

	a := &App{config: cfg, streams: streams, logger: logger, logCloser: closer, runID: logger.RunID()}

	s, err := settings.Load(cfg.SettingsPath())
	if err != nil {
		a.Close()
		return nil, common.ConfigError("Failed to read node settings", err)
	}
	a.settings = s
	a.store = realm.NewStore(cfg.ConfigDir, logger)
	logger.Debug(ctx, "file realm", "users", a.store.UsersPath(), "roles", a.store.RolesPath())

	baseURL := cfg.URL
	if baseURL == "" {
		baseURL = s.DefaultURL()
	}
	httpClient, err := netx.NewHTTPClient(cfg.RequestTimeout, netx.TLSOptions{CACertPath: cfg.CACert, Insecure: cfg.Insecure})
	if err != nil {
		a.Close()
		return nil, common.ConfigError("Failed to set up the HTTP client", err)
	}
	client, err := cluster.NewClient(baseURL, httpClient)
	if err != nil {
		a.Close()
		return nil, common.ConfigError("Invalid cluster URL", err)
	}
	a.requester = client
	logger.Debug(ctx, "cluster endpoint", "url", baseURL)

	j, err := journal.Open(ctx, cfg.JournalFile())
	if err != nil {
		logger.Warn(ctx, "run journal unavailable", "path", cfg.JournalFile(), "error", err)
	} else {
		a.journal = j
	}

	return a, nil
}

// Close releases the journal and the log file.
func (a *App) Close() {
	if a.journal != nil {
		if err := a.journal.Close(); err != nil {
			a.logger.Warn(context.Background(), "closing journal", "error", err)
		}
	}
	_ = a.logCloser.Close()
}

// orchestrator builds the bootstrap run for a privileged command.
func (a *App) orchestrator(force bool) (*bootstrap.Orchestrator, error) {
	hasher, err := cryptox.ResolveHasher(a.settings.HashingAlgorithm())
	if err != nil {
		return nil, common.ConfigError("Unsupported password hashing algorithm", err)
	}

	var j bootstrap.Journal
	if a.journal != nil {
		j = a.journal
	}

	return bootstrap.New(bootstrap.Deps{
		Realm:   a.settings,
		Store:   a.store,
		Hasher:  hasher,
		Prober:  cluster.NewProber(a.requester, a.config.RetryInterval, a.streams.Err, a.logger),
		Creds:   credentials.NewGenerator(),
		Journal: j,
		Out:     a.streams.Err,
		Logger:  a.logger,
	}, bootstrap.Options{
		RunID:          a.runID,
		Retries:        a.config.HealthRetries,
		Force:          force,
		PasswordLength: a.config.PasswordLength,
	}), nil
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.streams.Out, format, args...)
}

// InitSignalHandler cancels through cancelFunc on SIGINT, SIGTERM or
// SIGQUIT so an interrupted run still cleans up. The returned func stops
// listening.
func InitSignalHandler(cancelFunc context.CancelFunc) func() {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	done := make(chan struct{})
	go func() {
		select {
		case <-sigs:
			cancelFunc()
		case <-done:
		}
	}()

	return func() {
		signal.Stop(sigs)
		close(done)
	}
}
