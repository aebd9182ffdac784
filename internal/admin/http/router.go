package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/peakform/peakform/internal/admin/domain"
	"github.com/peakform/peakform/internal/admin/service"
	"github.com/peakform/peakform/internal/admin/storage"
	"github.com/peakform/peakform/internal/admin/store"
	"github.com/peakform/peakform/pkg/httpx"
	"github.com/peakform/peakform/pkg/jwtx"
	"github.com/peakform/peakform/pkg/slogx"

	_ "github.com/peakform/peakform/api/admin" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store   store.Store
	avatars *storage.AvatarStore

	AuthService     *service.AuthService
	RegisterService *service.RegisterService
	InviteService   *service.InviteService
	UserService     *service.UserService
	ExportService   *service.ExportService
	CoachService    *service.CoachService
	CustomerService *service.CustomerService
	ProfileService  *service.ProfileService
	MFAService      *service.MFAService
}

func NewRouter(
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	avatars *storage.AvatarStore,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		avatars:      avatars,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerInvites()
	r.registerUsers()
	r.registerCoaches()
	r.registerCustomers()
	r.registerProfile()
	r.registerMFA()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
	r.Mux.Handle("GET /avatars/",
		http.StripPrefix("/avatars/", http.FileServer(http.Dir(r.avatars.Root()))))
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			PeakForm Admin API
//	@version		0.1.0
//	@description	Invitation-gated account management for the PeakForm coaching platform: users, coaches, customers, and session tokens.
//
//	@host			localhost:8080
//	@BasePath		/
//
//	@schemes		http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	authHandler := &AuthHandler{AuthService: r.AuthService}

	// Login and register are the brute-force surface; strict by IP.
	r.Mux.Handle("POST /v1/auth/login",
		httpx.Chain(http.HandlerFunc(authHandler.HandleLogin),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /v1/auth/refresh",
		httpx.Chain(http.HandlerFunc(authHandler.HandleRefresh),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("POST /v1/auth/logout",
		httpx.Chain(http.HandlerFunc(authHandler.HandleLogout),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	registerHandler := &RegisterHandler{RegisterService: r.RegisterService}
	r.Mux.Handle("POST /v1/auth/register",
		httpx.Chain(registerHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerInvites() {
	h := &InvitesHandler{InviteService: r.InviteService}

	r.Mux.Handle("POST /v1/invites",
		httpx.Chain(http.HandlerFunc(h.HandleCreate),
			httpx.AuthnMiddleware(r.verifier),
			RequirePermission(domain.PermManageUsers),
			httpx.RateLimitByAccount(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("GET /v1/invites",
		httpx.Chain(http.HandlerFunc(h.HandleList),
			httpx.AuthnMiddleware(r.verifier),
			RequirePermission(domain.PermManageUsers),
			httpx.RateLimitByAccount(httpx.ModerateLimit),
		),
	)

	// Token lookup is public so registration pages can pre-fill the invited
	// email. Strictly limited: the token is the only secret.
	r.Mux.Handle("GET /v1/invites/{token}",
		httpx.Chain(http.HandlerFunc(h.HandleLookup),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerUsers() {
	h := &UsersHandler{UserService: r.UserService, ExportService: r.ExportService}

	manage := func(next http.Handler) http.Handler {
		return httpx.Chain(next,
			httpx.AuthnMiddleware(r.verifier),
			RequirePermission(domain.PermManageUsers),
			httpx.RateLimitByAccount(httpx.ModerateLimit),
		)
	}

	r.Mux.Handle("GET /v1/users", manage(http.HandlerFunc(h.HandleList)))
	r.Mux.Handle("POST /v1/users", manage(http.HandlerFunc(h.HandleCreate)))
	r.Mux.Handle("GET /v1/users/{id}", manage(http.HandlerFunc(h.HandleGet)))
	r.Mux.Handle("PUT /v1/users/{id}", manage(http.HandlerFunc(h.HandleUpdate)))
	r.Mux.Handle("DELETE /v1/users/{id}", manage(http.HandlerFunc(h.HandleDelete)))
	r.Mux.Handle("POST /v1/users/bulk-delete", manage(http.HandlerFunc(h.HandleBulkDelete)))

	// Export needs its own permission on top of user management.
	r.Mux.Handle("GET /v1/users/export",
		httpx.Chain(http.HandlerFunc(h.HandleExport),
			httpx.AuthnMiddleware(r.verifier),
			RequirePermission(domain.PermExportData),
			httpx.RateLimitByAccount(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerCoaches() {
	h := &CoachesHandler{CoachService: r.CoachService, Avatars: r.avatars}

	// Reads need view_profile, writes need edit_profile; both are coach-tier
	// permissions. Ownership checks in the handlers confine non-admins to
	// their own records, manage_coaches grants cross-account access.
	read := func(next http.Handler) http.Handler {
		return httpx.Chain(next,
			httpx.AuthnMiddleware(r.verifier),
			RequirePermission(domain.PermViewProfile),
			httpx.RateLimitByAccount(httpx.LenientLimit),
		)
	}
	write := func(next http.Handler) http.Handler {
		return httpx.Chain(next,
			httpx.AuthnMiddleware(r.verifier),
			RequirePermission(domain.PermEditProfile),
			httpx.RateLimitByAccount(httpx.LenientLimit),
		)
	}

	r.Mux.Handle("GET /v1/coaches", read(http.HandlerFunc(h.HandleList)))
	r.Mux.Handle("POST /v1/coaches", write(http.HandlerFunc(h.HandleCreate)))
	r.Mux.Handle("GET /v1/coaches/{id}", read(http.HandlerFunc(h.HandleGet)))
	r.Mux.Handle("PUT /v1/coaches/{id}", write(http.HandlerFunc(h.HandleUpdate)))
	r.Mux.Handle("DELETE /v1/coaches/{id}", write(http.HandlerFunc(h.HandleDelete)))
	r.Mux.Handle("POST /v1/coaches/{id}/avatar", write(http.HandlerFunc(h.HandleAvatar)))
	r.Mux.Handle("DELETE /v1/coaches/{id}/avatar", write(http.HandlerFunc(h.HandleAvatarDelete)))
}

func (r *Router) registerCustomers() {
	h := &CustomersHandler{CustomerService: r.CustomerService, ExportService: r.ExportService, Avatars: r.avatars}

	// Client records: reads behind view_clients, writes behind edit_profile.
	read := func(next http.Handler) http.Handler {
		return httpx.Chain(next,
			httpx.AuthnMiddleware(r.verifier),
			RequirePermission(domain.PermViewClients),
			httpx.RateLimitByAccount(httpx.LenientLimit),
		)
	}
	write := func(next http.Handler) http.Handler {
		return httpx.Chain(next,
			httpx.AuthnMiddleware(r.verifier),
			RequirePermission(domain.PermEditProfile),
			httpx.RateLimitByAccount(httpx.LenientLimit),
		)
	}

	r.Mux.Handle("GET /v1/customers", read(http.HandlerFunc(h.HandleList)))
	r.Mux.Handle("POST /v1/customers", write(http.HandlerFunc(h.HandleCreate)))
	r.Mux.Handle("GET /v1/customers/{id}", read(http.HandlerFunc(h.HandleGet)))
	r.Mux.Handle("PUT /v1/customers/{id}", write(http.HandlerFunc(h.HandleUpdate)))
	r.Mux.Handle("DELETE /v1/customers/{id}", write(http.HandlerFunc(h.HandleDelete)))
	r.Mux.Handle("POST /v1/customers/{id}/avatar", write(http.HandlerFunc(h.HandleAvatar)))
	r.Mux.Handle("DELETE /v1/customers/{id}/avatar", write(http.HandlerFunc(h.HandleAvatarDelete)))

	// Export needs its own permission on top of customer access.
	r.Mux.Handle("GET /v1/customers/export",
		httpx.Chain(http.HandlerFunc(h.HandleExport),
			httpx.AuthnMiddleware(r.verifier),
			RequirePermission(domain.PermExportData),
			httpx.RateLimitByAccount(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerProfile() {
	h := &ProfileHandler{ProfileService: r.ProfileService}

	r.Mux.Handle("GET /v1/profile",
		httpx.Chain(http.HandlerFunc(h.HandleGet),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByAccount(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("PUT /v1/profile",
		httpx.Chain(http.HandlerFunc(h.HandleUpdate),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByAccount(httpx.ModerateLimit),
		),
	)

	// Strict: password changes verify the current password.
	r.Mux.Handle("POST /v1/profile/password",
		httpx.Chain(http.HandlerFunc(h.HandleChangePassword),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByAccount(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerMFA() {
	h := &MFAHandler{MFAService: r.MFAService}

	r.Mux.Handle("POST /v1/mfa/totp/enroll",
		httpx.Chain(http.HandlerFunc(h.HandleEnroll),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByAccount(httpx.ModerateLimit),
		),
	)

	// Strict: prevents brute force of TOTP codes.
	r.Mux.Handle("POST /v1/mfa/totp/activate",
		httpx.Chain(http.HandlerFunc(h.HandleActivate),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByAccount(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("DELETE /v1/mfa/totp",
		httpx.Chain(http.HandlerFunc(h.HandleDisable),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByAccount(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}
