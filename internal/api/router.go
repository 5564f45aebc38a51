package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/voxcart/voxcart/internal/adminrole"
	"github.com/voxcart/voxcart/internal/api/handlers"
	"github.com/voxcart/voxcart/internal/api/middleware"
	"github.com/voxcart/voxcart/internal/audit"
	"github.com/voxcart/voxcart/internal/auth"
	"github.com/voxcart/voxcart/internal/cache"
	"github.com/voxcart/voxcart/internal/config"
	"github.com/voxcart/voxcart/internal/credential"
	"github.com/voxcart/voxcart/internal/entitlement"
	"github.com/voxcart/voxcart/internal/generation"
	"github.com/voxcart/voxcart/internal/profile"
	"github.com/voxcart/voxcart/internal/queue"
	"github.com/voxcart/voxcart/internal/quota"
	"github.com/voxcart/voxcart/internal/settings"
	"github.com/voxcart/voxcart/internal/tts"
)

type Router struct {
	mux   *chi.Mux
	db    *pgxpool.Pool
	redis *redis.Client
	cfg   *config.Config
}

func NewRouter(db *pgxpool.Pool, rdb *redis.Client, cfg *config.Config) *Router {
	return &Router{
		mux:   chi.NewRouter(),
		db:    db,
		redis: rdb,
		cfg:   cfg,
	}
}

func (rt *Router) Setup() http.Handler {
	r := rt.mux

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS([]string{"*"}))

	rl := middleware.NewRateLimiter(100, 200)
	r.Use(rl.Limit)

	// Health endpoints (no auth)
	health := handlers.NewHealthHandler(rt.db, rt.redis)
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)

	// Services
	c := cache.NewCache(rt.redis)
	settingsSvc := settings.NewService(rt.db, c)
	profileSvc := profile.NewService(rt.db, settingsSvc)
	creds := credential.NewPGStore(rt.db)
	planResolver := entitlement.NewResolver(profileSvc, profileSvc, rt.cfg.Auth.AdminEmails)
	adminResolver := adminrole.NewResolver(adminrole.NewPGRoleStore(rt.db), profileSvc, rt.cfg.Auth.AdminEmails)
	accountant := quota.NewAccountant(quota.NewPGCountStore(rt.db), profileSvc)
	auditSvc := audit.NewService(rt.db)
	queueClient := queue.NewClient(rt.cfg.Redis)
	generationSvc := generation.NewService(rt.db, queueClient)
	voiceCatalog := tts.NewVoiceCatalog(rt.cfg.GoogleTTS)

	gateway := auth.NewGateway(creds, planResolver)
	jwtMW := auth.NewJWTMiddleware(rt.cfg.Auth.JWTSecret, profileSvc, planResolver, adminResolver)

	generationsH := handlers.NewGenerationsHandler(generationSvc, accountant, settingsSvc)
	keysH := handlers.NewKeysHandler(creds)
	voicesH := handlers.NewVoicesHandler(voiceCatalog, c)
	adminH := handlers.NewAdminHandler(profileSvc, adminResolver, settingsSvc, auditSvc)

	r.Route("/api/v1", func(r chi.Router) {
		// Programmatic access: API key gateway
		r.Post("/authorize", gateway.AuthorizeHandler)

		r.Group(func(r chi.Router) {
			r.Use(gateway.RequireAPIKey)
			r.Post("/generations", generationsH.Create)
			r.Get("/generations", generationsH.List)
			r.Get("/generations/{id}", generationsH.Get)
			r.Get("/quota", generationsH.Quota)
			r.Get("/voices", voicesH.List)
		})

		// Dashboard: JWT sessions
		r.Route("/dashboard", func(r chi.Router) {
			r.Use(jwtMW.Authenticate)

			r.Post("/generations", generationsH.Create)
			r.Get("/generations", generationsH.List)
			r.Get("/generations/{id}", generationsH.Get)
			r.Get("/quota", generationsH.Quota)
			r.Get("/voices", voicesH.List)

			r.Route("/keys", func(r chi.Router) {
				r.Use(auth.RequireCapability(entitlement.CapabilityAPIAccess))
				r.Post("/", keysH.Create)
				r.Get("/", keysH.List)
				r.Delete("/{id}", keysH.Delete)
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(auth.RequireAdmin)
				r.Get("/users", adminH.ListUsers)
				r.Put("/users/{id}/plan", adminH.UpdateUserPlan)
				r.Post("/users/{id}/role", adminH.AssignAdminRole)
				r.Delete("/users/{id}/role", adminH.RemoveAdminRole)
				r.Get("/admins", adminH.ListAdmins)
				r.Get("/settings", adminH.GetSettings)
				r.Put("/settings", adminH.UpdateSettings)
				r.Get("/audit", adminH.AuditLogs)
			})
		})
	})

	return r
}
