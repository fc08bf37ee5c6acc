package adapthttp

import (
	"net/http"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"paraeval/internal/app"
	"paraeval/internal/metrics"
)

// OIDCConfig enables single sign-on through an OpenID Connect provider.
type OIDCConfig struct {
	Enabled      bool
	Provider     *oidc.Provider
	OAuth2Config oauth2.Config
}

// Services bundles the application services the adapter drives.
type Services struct {
	Auth     *app.AuthService
	Eval     *app.EvaluationService
	Scores   *app.ScoreService
	Progress *app.ProgressService
	Assets   *app.AssetService
}

// Config holds the adapter's non-service dependencies.
type Config struct {
	WebDir     string
	SessionTTL time.Duration
	OIDC       OIDCConfig
	Logger     *zap.Logger
	Metrics    *metrics.Metrics
}

// Server is the driving HTTP adapter that routes requests to application
// services.
type Server struct {
	authSvc    *app.AuthService
	eval       *app.EvaluationService
	scores     *app.ScoreService
	progress   *app.ProgressService
	assets     *app.AssetService
	oidcConfig OIDCConfig
	webDir     string
	sessionTTL time.Duration
	logger     *zap.Logger
	metrics    *metrics.Metrics
}

// New creates a Server wired to the given application services.
func New(svc Services, cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	ttl := cfg.SessionTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Server{
		authSvc:    svc.Auth,
		eval:       svc.Eval,
		scores:     svc.Scores,
		progress:   svc.Progress,
		assets:     svc.Assets,
		oidcConfig: cfg.OIDC,
		webDir:     cfg.WebDir,
		sessionTTL: ttl,
		logger:     logger,
		metrics:    cfg.Metrics,
	}
}

// Handler returns the root http.Handler for the application.
func (s *Server) Handler() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})
	api.HandleFunc("/config", s.handleConfig)

	api.HandleFunc("/auth/login", s.handleLogin)
	api.HandleFunc("/auth/logout", s.handleLogout)
	api.HandleFunc("/auth/sso/login", s.handleSSOLogin)
	api.HandleFunc("/auth/sso/callback", s.handleSSOCallback)

	protected := http.NewServeMux()
	protected.HandleFunc("/me", s.handleMe)
	protected.HandleFunc("/menu", s.handleMenu)
	protected.HandleFunc("/pages/{slug}", s.handlePage)

	protected.HandleFunc("/models", s.handleModels)
	protected.HandleFunc("/models/selected", s.handleSelectModel)

	protected.HandleFunc("/entry", s.handleEntry)
	protected.HandleFunc("/entry/next", s.handleEntryNext)
	protected.HandleFunc("/entry/prev", s.handleEntryPrev)
	protected.HandleFunc("/entry/goto", s.handleEntryGoto)

	protected.HandleFunc("/scores", s.handleScores)
	protected.HandleFunc("/progress", s.handleProgress)

	protected.HandleFunc("/assets/{category}", s.handleAssetList)
	protected.HandleFunc("/assets/{category}/{name}", s.handleAssetFile)

	api.Handle("/", s.authMiddleware(protected))

	root := http.NewServeMux()
	root.Handle("/api/", http.StripPrefix("/api", api))
	root.Handle("/metrics", s.metrics.Handler())
	root.Handle("/", spaFromDisk(s.webDir))

	return s.loggingMiddleware(withNoCache(root))
}
