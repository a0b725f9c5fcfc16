package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/dultive/dultive-api/internal/application/auth"
	"github.com/dultive/dultive-api/internal/application/post"
	"github.com/dultive/dultive-api/internal/application/user"
	"github.com/dultive/dultive-api/internal/config"
	"github.com/dultive/dultive-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/dultive/dultive-api/internal/infrastructure/jwt"
	s3infra "github.com/dultive/dultive-api/internal/infrastructure/s3"
	"github.com/dultive/dultive-api/internal/infrastructure/smtp"
	"github.com/dultive/dultive-api/internal/infrastructure/sns"
	"github.com/dultive/dultive-api/internal/transport/http/handler"
	appmiddleware "github.com/dultive/dultive-api/internal/transport/http/middleware"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo         *dynamo.UserRepo
	VerificationRepo *dynamo.VerificationRepo
	PostRepo         *dynamo.PostRepo
	LikeRepo         *dynamo.LikeRepo
	InteractionRepo  *dynamo.InteractionRepo
	S3Store          *s3infra.Store
	Mailer           smtp.Mailer
	Events           sns.Publisher
	JWTProvider      *jwtinfra.Provider
}

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(appmiddleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authMw := appmiddleware.Auth(deps.JWTProvider)
	optionalAuthMw := appmiddleware.OptionalAuth(deps.JWTProvider)

	// 5 requests/second, burst of 10 — applied to the public auth endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	authSvc := auth.NewService(auth.ServiceDeps{
		UserRepo:         deps.UserRepo,
		VerificationRepo: deps.VerificationRepo,
		Mailer:           deps.Mailer,
		JWTProvider:      deps.JWTProvider,
		CodeTTL:          cfg.VerificationTTL,
		ResendInterval:   cfg.ResendInterval,
		MaxAttempts:      cfg.MaxCodeAttempts,
	})
	userSvc := user.NewService(user.ServiceDeps{
		UserRepo:   deps.UserRepo,
		ImageStore: deps.S3Store,
	})
	postSvc := post.NewService(post.ServiceDeps{
		PostRepo:        deps.PostRepo,
		LikeRepo:        deps.LikeRepo,
		InteractionRepo: deps.InteractionRepo,
		UserRepo:        deps.UserRepo,
		ImageStore:      deps.S3Store,
		Events:          deps.Events,
	})

	healthH := handler.NewHealthHandler()
	authH := handler.NewAuthHandler(authSvc)
	userH := handler.NewUserHandler(userSvc)
	postH := handler.NewPostHandler(postSvc)

	r.Get("/health", healthH.Ping)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		// Public, rate-limited.
		r.With(sensitiveRL.Limit).Post("/auth/verification-code", authH.RequestVerificationCode)
		r.With(sensitiveRL.Limit).Post("/auth/register", authH.Register)
		r.With(sensitiveRL.Limit).Post("/auth/login", authH.Login)

		// Feed is browsable anonymously; a token personalizes the like state.
		r.With(optionalAuthMw).Get("/posts", postH.Feed)
		r.With(optionalAuthMw).Get("/posts/search", postH.Feed)
		r.With(optionalAuthMw).Get("/posts/{id}", postH.Get)

		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Get("/users/me", userH.Me)
			r.Put("/users/me", userH.UpdateMe)

			r.Post("/posts", postH.Create)
			r.Get("/posts/my-posts", postH.MyPosts)
			r.Delete("/posts/{id}", postH.Delete)
			r.Post("/posts/{id}/like", postH.ToggleLike)
			r.Post("/posts/{id}/interactions", postH.CreateInteraction)
			r.Get("/posts/{id}/interactions", postH.ListInteractions)
			r.Put("/interactions/{id}", postH.UpdateInteraction)
		})
	})

	return r
}
