package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/bartab/internal/auth/metrics"
	"github.com/aussiebroadwan/bartab/internal/auth/service"
	"github.com/aussiebroadwan/bartab/internal/auth/store"
	"github.com/aussiebroadwan/bartab/pkg/httpx"
	"github.com/aussiebroadwan/bartab/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store

	TokenService *service.TokenService
	LoginService *service.LoginService
	UserService  *service.UserService
	Metrics      *metrics.Metrics

	// ClientIP keys the per-address rate limits. Defaults to the connection's
	// remote address.
	ClientIP httpx.KeyExtractor
}

func NewRouter(buildVersion string, st store.Store, logger *slog.Logger) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
		ClientIP:     httpx.IPKeyExtractor,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerSystem()
}

func (r *Router) limitByIP(cfg httpx.RateLimitConfig) httpx.Middleware {
	if r.ClientIP == nil {
		return httpx.RateLimitMiddleware(cfg, httpx.IPKeyExtractor)
	}
	return httpx.RateLimitMiddleware(cfg, r.ClientIP)
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	r.Mux.Handle("POST /signup",
		httpx.Chain(&SignupHandler{Users: r.UserService},
			r.limitByIP(httpx.ModerateLimit),
		),
	)

	// Password and code guessing is limited per address and, separately, per
	// account so that rotating addresses does not refill the account's bucket.
	r.Mux.Handle("POST /login",
		httpx.Chain(&LoginHandler{Login: r.LoginService, Tokens: r.TokenService},
			r.limitByIP(httpx.ModerateLimit),
			httpx.RateLimitByJSONField(httpx.StrictLimit, "email"),
		),
	)
	r.Mux.Handle("POST /verify-2fa",
		httpx.Chain(&VerifyTwoFactorHandler{Login: r.LoginService, Tokens: r.TokenService},
			r.limitByIP(httpx.ModerateLimit),
			httpx.RateLimitByJSONField(httpx.StrictLimit, "email"),
		),
	)

	r.Mux.Handle("POST /logout",
		httpx.Chain(&LogoutHandler{Login: r.LoginService, Tokens: r.TokenService},
			r.limitByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("POST /verify-token",
		httpx.Chain(&VerifyTokenHandler{Tokens: r.TokenService},
			r.limitByIP(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			r.limitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			r.limitByIP(httpx.LenientLimit),
		),
	)
	if r.Metrics != nil {
		r.Mux.Handle("GET /metrics", r.Metrics.Handler())
	}
}
