package app

import (
	"net/http"
	"taskBurst/internal/handlers"
	"taskBurst/internal/middleware"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type RouterConfig struct {
	RequestTimeout time.Duration
	RateLimit      int
	CORSOrigins    []string
}

type AuthService interface {
	handlers.AuthService
	middleware.Authenticator
}

func NewRouter(cfg RouterConfig, taskService handlers.TaskService, authService AuthService) http.Handler {
	taskHandler := handlers.NewTaskHandler(taskService)
	authHandler := handlers.NewAuthHandler(authService)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Cache-Invalidate", "X-Request-ID", "X-RateLimit-Remaining"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(middleware.Authenticate(authService))
	r.Use(middleware.RateLimit(cfg.RateLimit))
	if cfg.RequestTimeout > 0 {
		r.Use(chimw.Timeout(cfg.RequestTimeout))
	}

	r.Get("/health", taskHandler.HealthCheck)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", authHandler.SignUp)   // POST /auth/signup
		r.Post("/signin", authHandler.SignIn)   // POST /auth/signin
		r.Post("/refresh", authHandler.Refresh) // POST /auth/refresh
		r.Post("/signout", authHandler.SignOut) // POST /auth/signout
		r.Get("/me", authHandler.Me)            // GET /auth/me
	})

	r.Route("/tasks", func(r chi.Router) {
		r.Use(middleware.RequireUser)

		r.Get("/", taskHandler.ListTasks) // GET /tasks?filter=&sort=
		r.Post("/", taskHandler.PostTask) // POST /tasks

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", taskHandler.GetTask)               // GET /tasks/{id}
			r.Patch("/", taskHandler.PatchTask)           // PATCH /tasks/{id}
			r.Delete("/", taskHandler.DeleteTask)         // DELETE /tasks/{id}
			r.Post("/complete", taskHandler.CompleteTask) // POST /tasks/{id}/complete
		})
	})

	return otelhttp.NewHandler(r, "taskburst")
}
