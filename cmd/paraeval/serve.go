package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/sync/errgroup"

	"paraeval/internal/adapter/csvstore"
	adapthttp "paraeval/internal/adapter/http"
	"paraeval/internal/adapter/memory"
	"paraeval/internal/adapter/postgres"
	"paraeval/internal/app"
	"paraeval/internal/config"
	"paraeval/internal/domain"
	"paraeval/internal/logging"
	"paraeval/internal/metrics"
)

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the evaluation web server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(rootOpts.ConfigPath)
			if err != nil {
				return err
			}
			logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()
			return runServe(cmd.Context(), cfg, logger)
		},
	}
}

// stores holds the repositories selected by the storage backend.
type stores struct {
	scores   domain.ScoreRepository
	sessions domain.SessionRepository
	close    func() error
}

func openStores(cfg *config.Config) (*stores, error) {
	switch cfg.Storage.Backend {
	case config.BackendPostgres:
		db, err := postgres.Open(cfg.Storage.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("db open: %w", err)
		}
		return &stores{scores: db, sessions: postgres.NewSessionRepo(db), close: db.Close}, nil
	default:
		return &stores{
			scores:   csvstore.NewLedgerStore(cfg.ResultsPath()),
			sessions: memory.New().NewSessionRepo(),
			close:    func() error { return nil },
		}, nil
	}
}

func newOIDC(ctx context.Context, cfg config.OIDC) (adapthttp.OIDCConfig, error) {
	if !cfg.Enabled {
		return adapthttp.OIDCConfig{}, nil
	}
	provider, err := oidc.NewProvider(ctx, cfg.Issuer)
	if err != nil {
		return adapthttp.OIDCConfig{}, fmt.Errorf("oidc provider: %w", err)
	}
	return adapthttp.OIDCConfig{
		Enabled:  true,
		Provider: provider,
		OAuth2Config: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
	}, nil
}

func runServe(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	users, err := csvstore.LoadUsers(cfg.UsersPath())
	if err != nil {
		return err
	}
	n, err := users.Count(ctx)
	if err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	logger.Info("credentials loaded", zap.String("path", cfg.UsersPath()), zap.Int("users", n))

	st, err := openStores(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = st.close() }()

	if ledgers, ok := st.scores.(*csvstore.LedgerStore); ok {
		if err := ledgers.CheckKeys(ledgerKeys(users.Usernames(), cfg.Models)); err != nil {
			return err
		}
	}

	oidcCfg, err := newOIDC(ctx, cfg.OIDC)
	if err != nil {
		return err
	}

	corpus := csvstore.NewCorpusStore(cfg.DataDir, cfg.InputFile)
	m := metrics.New()

	authSvc := app.NewAuthService(users, st.sessions, cfg.Models, cfg.Session.TTL, logger, m)
	h := adapthttp.New(adapthttp.Services{
		Auth:     authSvc,
		Eval:     app.NewEvaluationService(corpus, st.sessions, cfg.Models, logger, m),
		Scores:   app.NewScoreService(st.scores, corpus, cfg.Models, logger, m),
		Progress: app.NewProgressService(st.scores, corpus, cfg.Models),
		Assets:   app.NewAssetService(csvstore.NewAssetStore(cfg.AssetPaths())),
	}, adapthttp.Config{
		WebDir:     cfg.WebDir,
		SessionTTL: cfg.Session.TTL,
		OIDC:       oidcCfg,
		Logger:     logger,
		Metrics:    m,
	}).Handler()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	if cfg.Watch {
		w, err := csvstore.NewWatcher(corpus, logger)
		if err != nil {
			return err
		}
		defer func() { _ = w.Close() }()
		g.Go(func() error {
			w.Run(ctx)
			return nil
		})
	}
	g.Go(func() error {
		authSvc.RunSweeper(ctx, cfg.Session.SweepInterval)
		return nil
	})
	g.Go(func() error {
		logger.Info("listening", zap.String("addr", cfg.Addr), zap.String("backend", cfg.Storage.Backend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
