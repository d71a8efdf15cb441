/*
Package handler provides the HTTP handlers and routing setup for the EcoTrade server.

This file defines the main Router, applying middleware like logging, CORS,
metrics, and IP-based rate limiting before delegating requests to specific
handlers (REST API and WebSocket).
*/
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"ecotrade/internal/pkg/auth/jwt"
	"ecotrade/internal/pkg/limiter"
	"ecotrade/internal/pkg/logx"
	"ecotrade/internal/pkg/metrics"
	"ecotrade/internal/pkg/resp"
)

const (
	// Registration and password reset are the abuse-prone endpoints.
	AuthRate  = 0.1
	AuthBurst = 5

	// WebSocket connects are cheap to request but expensive to hold.
	ConnectRate  = 0.5
	ConnectBurst = 10
)

// Router sets up the main HTTP routing table (chi.Router) for the application.
// It initializes IP-based rate limiters, configures CORS, and applies global
// and per-route middleware.
func Router(deps *AppDeps) http.Handler {
	authLimiter := limiter.NewIPRateLimiter(rate.Limit(AuthRate), AuthBurst)
	connectLimiter := limiter.NewIPRateLimiter(rate.Limit(ConnectRate), ConnectBurst)

	r := chi.NewRouter()

	allowedOrigins := make(map[string]struct{})
	for _, origin := range deps.Config.AllowedOrigins {
		allowedOrigins[origin] = struct{}{}
	}

	wsUpgrader := websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if deps.Config.Environment == "development" {
				return true
			}

			origin := r.Header.Get("Origin")
			if _, ok := allowedOrigins[origin]; ok {
				return true
			}

			logx.Warn("WebSocket connection rejected: Origin not allowed.", "origin", origin)
			return false
		},
	}

	corsAllowedOrigins := []string{}
	if deps.Config.Environment == "development" {
		corsAllowedOrigins = []string{"*"}
	} else if len(deps.Config.AllowedOrigins) > 0 {
		corsAllowedOrigins = deps.Config.AllowedOrigins
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   corsAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{},
		AllowCredentials: true,
		MaxAge:           300,
	})
	r.Use(c.Handler)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logx.RequestLogger())
	r.Use(metrics.HTTPMiddleware)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		data := map[string]string{
			"status":  "ok",
			"service": "EcoTrade Server",
		}
		resp.RespondSuccess(w, r, data)
	})

	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api", func(api chi.Router) {
		api.Use(jwt.IdentityExtractorMiddleware(deps.Config.JWTSecret))

		api.Route("/auth", func(auth chi.Router) {
			auth.Use(authLimiter.Middleware)
			auth.Post("/register", HandleRegister(deps))
			auth.Post("/login", HandleLogin(deps))
			auth.Post("/forgot-password", HandleForgotPassword(deps))
			auth.Post("/reset-password", HandleResetPassword(deps))
			auth.Get("/me", HandleGetMe(deps))
		})

		api.Route("/items", func(items chi.Router) {
			items.Get("/", HandleListItems(deps))
			items.Post("/", HandleCreateItem(deps))
			items.Get("/user/{userId}", HandleListUserItems(deps))
			items.Patch("/trade-requests/{id}", HandleAnswerTradeRequest(deps))
			items.Patch("/trade-requests/{id}/complete", HandleCompleteTrade(deps))
			items.Post("/trade-requests/{id}/rate", HandleRateTrade(deps))
			items.Get("/{id}", HandleGetItem(deps))
			items.Put("/{id}", HandleUpdateItem(deps))
			items.Delete("/{id}", HandleDeleteItem(deps))
			items.Post("/{id}/request", HandleRequestTrade(deps))
		})

		api.Route("/users", func(users chi.Router) {
			users.Put("/profile", HandleUpdateProfile(deps))
			users.Post("/avatar", HandleUploadAvatar(deps))
			users.Get("/{id}", HandleGetUserProfile(deps))
			users.Get("/{id}/trade-requests", HandleListUserTrades(deps))
			users.Get("/{id}/reviews", HandleListUserReviews(deps))
			users.Patch("/{id}/status", HandleSetUserStatus(deps))
		})

		api.Route("/chat", func(ch chi.Router) {
			ch.Get("/", HandleListChats(deps))
			ch.Post("/create", HandleCreateChat(deps))
			ch.Get("/online-users", HandleOnlineUsers(deps))
			ch.Get("/{chatId}/messages", HandleListMessages(deps))
			ch.Post("/{chatId}/messages", HandlePostMessage(deps))
			ch.Patch("/{chatId}/read", HandleMarkRead(deps))
		})

		api.Post("/files/presign-upload", HandlePresignPhotoUpload(deps))
		api.Get("/files/presign-download", HandlePresignPhotoDownload(deps))
	})

	r.Get("/ws", HandleWebSocket(wsUpgrader, connectLimiter, deps))

	return r
}
