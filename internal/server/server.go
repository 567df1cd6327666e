package server

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/cors"

	"github.com/dukerupert/tripkit/internal/auth"
	"github.com/dukerupert/tripkit/internal/dining"
	"github.com/dukerupert/tripkit/internal/guard"
	"github.com/dukerupert/tripkit/internal/handler"
	"github.com/dukerupert/tripkit/internal/metrics"
	"github.com/dukerupert/tripkit/internal/middleware"
	"github.com/dukerupert/tripkit/internal/store"
	"github.com/dukerupert/tripkit/internal/weather"
)

// Options are the deployment switches that change routing behavior.
type Options struct {
	ConcealOwnership   bool
	CORSOrigins        []string
	WeatherRequireAuth bool
	DiningRequireAuth  bool
}

type Server struct {
	tokens   *auth.TokenManager
	metrics  *metrics.Metrics
	opts     Options
	userH    *handler.UserHandler
	expenseH *handler.ExpenseHandler
	listH    *handler.PackingListHandler
	itemH    *handler.ItemHandler
	weatherH *handler.WeatherHandler
	diningH  *handler.DiningHandler
	healthH  *handler.HealthHandler
	logger   *slog.Logger
}

func New(
	db *sql.DB,
	tokens *auth.TokenManager,
	weatherSvc *weather.Service,
	diningSvc *dining.Service,
	m *metrics.Metrics,
	opts Options,
	logger *slog.Logger,
) (*Server, error) {
	userStore := store.NewUserStore(db)
	expenseStore := store.NewExpenseStore(db)
	listStore := store.NewPackingListStore(db)

	credentials, err := auth.NewCredentials(userStore)
	if err != nil {
		return nil, fmt.Errorf("init credentials: %w", err)
	}

	g := guard.New(expenseStore, listStore, guard.WithConcealOwnership(opts.ConcealOwnership))

	return &Server{
		tokens:   tokens,
		metrics:  m,
		opts:     opts,
		userH:    handler.NewUserHandler(credentials, tokens, logger.With("component", "user")),
		expenseH: handler.NewExpenseHandler(expenseStore, g, logger.With("component", "expense")),
		listH:    handler.NewPackingListHandler(listStore, g, logger.With("component", "packing_list")),
		itemH:    handler.NewItemHandler(listStore, g, logger.With("component", "item")),
		weatherH: handler.NewWeatherHandler(weatherSvc, m, logger.With("component", "weather")),
		diningH:  handler.NewDiningHandler(diningSvc, m, logger.With("component", "dining")),
		healthH:  handler.NewHealthHandler(db, logger.With("component", "health")),
		logger:   logger,
	}, nil
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	// Public routes (no auth required)
	mux.HandleFunc("POST /user/register", s.userH.Register)
	mux.HandleFunc("POST /user/login", s.userH.Login)
	mux.HandleFunc("GET /health", s.healthH.Health)
	mux.Handle("GET /metrics", s.metrics.Handler())

	s.registerProtectedRoutes(mux)
	s.registerProxyRoutes(mux)

	origins := s.opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	corsPolicy := cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	})

	// Metrics wraps the mux directly so it sees the matched route pattern.
	var h http.Handler = middleware.Metrics(s.metrics)(mux)
	h = corsPolicy(h)
	h = middleware.RequestLogger(s.logger.With("component", "http"))(h)
	return middleware.RequestID(h)
}

// protect wraps a single route so the mux still records its own pattern.
func (s *Server) protect(h http.HandlerFunc) http.Handler {
	return middleware.RequireAuth(s.tokens)(h)
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	mux.Handle("GET /user/me", s.protect(s.userH.Me))
	mux.Handle("PUT /user/password", s.protect(s.userH.ChangePassword))

	// Expense routes
	mux.Handle("POST /expenses", s.protect(s.expenseH.Create))
	mux.Handle("GET /expenses", s.protect(s.expenseH.List))
	mux.Handle("GET /expenses/{id}", s.protect(s.expenseH.Get))
	mux.Handle("PUT /expenses/{id}", s.protect(s.expenseH.Update))
	mux.Handle("DELETE /expenses/{id}", s.protect(s.expenseH.Delete))

	// Packing list routes
	mux.Handle("POST /packing-list", s.protect(s.listH.Create))
	mux.Handle("GET /packing-list", s.protect(s.listH.List))
	mux.Handle("GET /packing-list/{id}", s.protect(s.listH.Get))
	mux.Handle("PUT /packing-list/{id}", s.protect(s.listH.Update))
	mux.Handle("DELETE /packing-list/{id}", s.protect(s.listH.Delete))

	// Item routes
	mux.Handle("POST /packing-list/{listId}/items", s.protect(s.itemH.Create))
	mux.Handle("GET /packing-list/{listId}/items", s.protect(s.itemH.List))
	mux.Handle("GET /packing-list/{listId}/items/{id}", s.protect(s.itemH.Get))
	mux.Handle("PUT /packing-list/{listId}/items/{id}", s.protect(s.itemH.Update))
	mux.Handle("DELETE /packing-list/{listId}/items/{id}", s.protect(s.itemH.Delete))
	mux.Handle("PATCH /packing-list/{listId}/items/{id}", s.protect(s.itemH.Toggle))
	mux.Handle("PATCH /packing-list/{listId}/items/{id}/toggle", s.protect(s.itemH.Toggle))
}

func (s *Server) registerProxyRoutes(mux *http.ServeMux) {
	weatherAuth := middleware.OptionalAuth(s.tokens)
	if s.opts.WeatherRequireAuth {
		weatherAuth = middleware.RequireAuth(s.tokens)
	}
	diningAuth := middleware.OptionalAuth(s.tokens)
	if s.opts.DiningRequireAuth {
		diningAuth = middleware.RequireAuth(s.tokens)
	}

	mux.Handle("GET /destination/weather", weatherAuth(http.HandlerFunc(s.weatherH.Forecast)))
	mux.Handle("GET /recommendations", diningAuth(http.HandlerFunc(s.diningH.Recommendations)))
}
