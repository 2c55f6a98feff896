package httpserver

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"dmchat/internal/config"
	"dmchat/internal/domain"
	"dmchat/internal/observability"
	"dmchat/internal/security"
	"dmchat/internal/service"
)

// RequestTimeout bounds the time a handler may spend on one request.
const RequestTimeout = 30 * time.Second

// NewRouter constructs the main HTTP router and wires routes, services, and middleware.
// The repositories may come from any store backing.
func NewRouter(
	cfg *config.Config,
	users domain.UserRepository,
	messages domain.MessageRepository,
	tokenSvc *security.TokenService,
	passwordHasher *security.PasswordHasher,
	encryptor *security.Encryptor,
) http.Handler {
	r := chi.NewRouter()

	// Middlewares
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger)
	r.Use(observability.HTTPMetricsMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(RequestTimeout))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Services
	authSvc := service.NewAuthService(users, tokenSvc, passwordHasher)
	userSvc := service.NewUserService(users)
	msgSvc := service.NewMessageService(messages, users, encryptor, cfg.MaxMessageLength)
	convSvc := service.NewConversationService(messages, users, encryptor)

	r.Get("/metrics", promhttp.Handler().ServeHTTP)
	r.Get("/uploads/{filename}", handleServeUpload(cfg.UploadDir))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", handleRegister(authSvc))
			r.Post("/login", handleLogin(authSvc))
			r.With(AuthMiddleware(authSvc)).Get("/profile", handleProfile())
		})

		// Authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(authSvc))

			r.Route("/messages", func(r chi.Router) {
				r.Post("/", handleSendMessage(msgSvc))
				r.Get("/conversations", handleListConversations(convSvc))
				r.Get("/conversation/{userID}", handleGetConversation(msgSvc))
				r.Get("/users", handleListContacts(userSvc))
				r.Patch("/{messageID}/read", handleMarkRead(msgSvc))
			})

			r.Post("/users/me/avatar", handleUploadAvatar(cfg, userSvc))
		})
	})

	return r
}

// writeJSON is a small helper to send JSON responses.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}
