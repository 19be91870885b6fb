// Package cli реализует команды клиента zecko поверх пакета session.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/magabrotheeeer/zecko/internal/config"
	"github.com/magabrotheeeer/zecko/internal/localstore"
	"github.com/magabrotheeeer/zecko/internal/session"
)

// Option настраивает корневую команду.
type Option func(*app)

// WithHTTPClient задаёт HTTP-клиент для запросов к API.
func WithHTTPClient(c *http.Client) Option {
	return func(a *app) { a.httpClient = c }
}

type app struct {
	cfg        config.ClientConfig
	verbose    bool
	httpClient *http.Client

	log     *slog.Logger
	store   *localstore.Store
	manager *session.Manager
}

// Execute выполняет команду args и освобождает ресурсы даже при ошибке.
func Execute(ctx context.Context, cfg *config.ClientConfig, args []string, out, errOut io.Writer, opts ...Option) error {
	root, a := newRootCommand(cfg, opts...)
	defer func() {
		_ = a.close()
	}()
	root.SetArgs(args)
	root.SetOut(out)
	root.SetErr(errOut)
	return root.ExecuteContext(ctx)
}

// NewRootCommand собирает дерево команд. Флаги переопределяют значения из cfg.
func NewRootCommand(cfg *config.ClientConfig, opts ...Option) *cobra.Command {
	root, _ := newRootCommand(cfg, opts...)
	return root
}

func newRootCommand(cfg *config.ClientConfig, opts ...Option) (*cobra.Command, *app) {
	a := &app{cfg: *cfg}
	for _, opt := range opts {
		opt(a)
	}

	root := &cobra.Command{
		Use:           "zecko",
		Short:         "Command line client for the Zecko marketplace",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.open(cmd)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return a.close()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfg.BaseURL, "base-url", a.cfg.BaseURL, "Zecko API base URL")
	flags.StringVar(&a.cfg.Transport, "transport", a.cfg.Transport, "session transport: token or cookie")
	flags.StringVar(&a.cfg.StorePath, "store", a.cfg.StorePath, "path to the local store")
	flags.DurationVar(&a.cfg.RequestTimeout, "timeout", a.cfg.RequestTimeout, "timeout of a single request")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "log session events to stderr")

	root.AddCommand(
		a.loginCmd(),
		a.registerCmd(),
		a.logoutCmd(),
		a.whoamiCmd(),
		a.watchCmd(),
		a.cartCmd(),
	)
	return root, a
}

func (a *app) open(cmd *cobra.Command) error {
	const op = "cli.open"

	level := slog.LevelWarn
	if a.verbose {
		level = slog.LevelDebug
	}
	a.log = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	store, err := localstore.New(cmd.Context(), a.cfg.StorePath)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	a.store = store

	manager, err := session.New(session.Config{
		BaseURL:        a.cfg.BaseURL,
		Transport:      a.cfg.Transport,
		PollInterval:   a.cfg.PollInterval,
		RequestTimeout: a.cfg.RequestTimeout,
	},
		session.WithCredentialStore(localstore.NewCredentials(store)),
		session.WithHTTPClient(a.httpClient),
		session.WithLogger(a.log),
	)
	if err != nil {
		_ = store.Close()
		return fmt.Errorf("%s: %w", op, err)
	}
	a.manager = manager
	return nil
}

func (a *app) close() error {
	if a.manager != nil {
		a.manager.Close()
		a.manager = nil
	}
	if a.store != nil {
		err := a.store.Close()
		a.store = nil
		return err
	}
	return nil
}
