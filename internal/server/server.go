package server

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/listwise/internal/handler"
	"github.com/dukerupert/listwise/internal/middleware"
	"github.com/dukerupert/listwise/internal/store"
	"github.com/dukerupert/listwise/internal/validation"
	ws "github.com/dukerupert/listwise/internal/websocket"
)

const (
	authRateLimit  = 10
	authRateWindow = time.Minute
)

type Config struct {
	JWTSecret  string
	SessionTTL time.Duration
}

type Server struct {
	hub          *ws.Hub
	authH        *handler.AuthHandler
	listH        *handler.ListHandler
	itemH        *handler.ItemHandler
	budgetH      *handler.BudgetHandler
	purchaseH    *handler.PurchaseHandler
	healthH      *handler.HealthHandler
	sessionStore *store.SessionStore
	rateLimiter  *middleware.RateLimiter
	cfg          Config
	logger       *slog.Logger
}

func New(db *sql.DB, cfg Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))
	v := validation.New()

	userStore := store.NewUserStore(db)
	sessionStore := store.NewSessionStore(db)

	return &Server{
		hub:          hub,
		authH:        handler.NewAuthHandler(userStore, sessionStore, hub, v, cfg.JWTSecret, cfg.SessionTTL, logger.With("component", "auth")),
		listH:        handler.NewListHandler(store.NewListStore(db), v, logger.With("component", "list")),
		itemH:        handler.NewItemHandler(store.NewItemStore(db), v, logger.With("component", "item")),
		budgetH:      handler.NewBudgetHandler(store.NewBudgetStore(db), v, logger.With("component", "budget")),
		purchaseH:    handler.NewPurchaseHandler(store.NewPurchaseStore(db), v, logger.With("component", "purchase")),
		healthH:      handler.NewHealthHandler(db, hub),
		sessionStore: sessionStore,
		rateLimiter:  middleware.NewRateLimiter(authRateLimit, authRateWindow),
		cfg:          cfg,
		logger:       logger,
	}
}

// Hub returns the session notification hub.
func (s *Server) Hub() *ws.Hub {
	return s.hub
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes (no auth required)
	outerMux.HandleFunc("POST /auth/signup", s.rateLimitedHandler(s.authH.SignUp))
	outerMux.HandleFunc("POST /auth/token", s.rateLimitedHandler(s.authH.Token))
	outerMux.HandleFunc("GET /health", s.healthH.Health)

	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.cfg.JWTSecret, s.sessionStore)
	outerMux.Handle("/", authMiddleware(protectedMux))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	return middleware.RateLimit(s.rateLimiter, middleware.RealIP)(h).ServeHTTP
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /auth/logout", s.authH.Logout)
	mux.HandleFunc("GET /auth/events", ws.HandleWebSocket(s.hub, s.logger.With("component", "events")))

	mux.HandleFunc("GET /rest/lists", s.listH.List)
	mux.HandleFunc("POST /rest/lists", s.listH.Create)
	mux.HandleFunc("GET /rest/lists/{id}", s.listH.Get)
	mux.HandleFunc("PATCH /rest/lists/{id}", s.listH.Update)
	mux.HandleFunc("DELETE /rest/lists/{id}", s.listH.Delete)

	mux.HandleFunc("POST /rest/items", s.itemH.Create)
	mux.HandleFunc("PATCH /rest/items/{id}", s.itemH.Update)
	mux.HandleFunc("DELETE /rest/items/{id}", s.itemH.Delete)

	mux.HandleFunc("GET /rest/budgets", s.budgetH.List)
	mux.HandleFunc("POST /rest/budgets", s.budgetH.Create)
	mux.HandleFunc("PATCH /rest/budgets/{id}", s.budgetH.Update)

	mux.HandleFunc("GET /rest/purchases", s.purchaseH.List)
	mux.HandleFunc("POST /rest/purchases", s.purchaseH.Create)
}

// RunCleanup removes expired sessions and rate-limit entries every interval
// until ctx is done.
func (s *Server) RunCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.sessionStore.DeleteExpired()
			if err != nil {
				s.logger.Error("cleanup sessions", "error", err)
			} else if n > 0 {
				s.logger.Info("cleaned up sessions", "count", n)
			}
			s.rateLimiter.Cleanup()
		}
	}
}
