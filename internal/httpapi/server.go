// Package httpapi exposes sessions, the market and admin tools as a JSON API.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"

	"calorina/internal/auth"
	"calorina/internal/catalog"
	"calorina/internal/i18n"
	"calorina/internal/session"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// MealImporter turns a recipe page into a meal draft.
type MealImporter interface {
	ImportURL(ctx context.Context, url string) (catalog.Draft, error)
}

// Deps are the collaborators of a Server. Importer and Metrics are optional.
type Deps struct {
	Sessions        *session.Manager
	Users           *auth.Directory
	Tokens          *auth.Issuer
	Catalog         *catalog.Catalog
	Importer        MealImporter
	Metrics         http.Handler
	DataDir         string
	DefaultLanguage i18n.Language
	Logger          *slog.Logger
}

// Server routes API requests.
type Server struct {
	Deps
	logger *slog.Logger
}

// NewServer creates a Server.
func NewServer(deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if deps.DefaultLanguage == "" {
		deps.DefaultLanguage = i18n.English
	}
	return &Server{Deps: deps, logger: logger}
}

// Handler returns the routed handler wrapped with CORS and access logging.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	if s.Metrics != nil {
		r.Handle("/metrics", s.Metrics).Methods(http.MethodGet)
	}

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/auth/signup", s.handleSignUp).Methods(http.MethodPost)
	api.HandleFunc("/auth/signin", s.handleSignIn).Methods(http.MethodPost)
	api.HandleFunc("/market/meals", s.handleListMeals).Methods(http.MethodGet)
	api.HandleFunc("/market/meals/{id:[0-9]+}", s.handleGetMeal).Methods(http.MethodGet)
	api.HandleFunc("/cafe/drinks", s.handleListDrinks).Methods(http.MethodGet)
	api.HandleFunc("/subscription/options", s.handleSubscriptionOptions).Methods(http.MethodGet)
	api.HandleFunc("/appearance", s.handleAppearance).Methods(http.MethodGet)

	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(s.requireSession, requireAdmin)
	admin.HandleFunc("/users", s.handleListUsers).Methods(http.MethodGet)
	admin.HandleFunc("/meals", s.handleAddMeal).Methods(http.MethodPost)
	admin.HandleFunc("/meals/import", s.handleImportMeal).Methods(http.MethodPost)
	admin.HandleFunc("/drinks", s.handleAddDrink).Methods(http.MethodPost)
	admin.HandleFunc("/background", s.handleSetBackground).Methods(http.MethodPut)

	user := api.NewRoute().Subrouter()
	user.Use(s.requireSession)
	user.HandleFunc("/auth/logout", s.handleLogout).Methods(http.MethodPost)
	user.HandleFunc("/session", s.handleSession).Methods(http.MethodGet)
	user.HandleFunc("/session/language", s.handleSetLanguage).Methods(http.MethodPut)
	user.HandleFunc("/session/reset", s.handleReset).Methods(http.MethodPost)
	user.HandleFunc("/chat/start", s.handleStartChat).Methods(http.MethodPost)
	user.HandleFunc("/chat", s.handleChat).Methods(http.MethodPost)
	user.HandleFunc("/notifications", s.handleNotifications).Methods(http.MethodGet)
	user.HandleFunc("/profile", s.handleQuestionnaire).Methods(http.MethodPut)
	user.HandleFunc("/plan", s.handlePlan).Methods(http.MethodGet)
	user.HandleFunc("/plan/custom-meals", s.handleCustomMeals).Methods(http.MethodPost)
	user.HandleFunc("/completion", s.handleCompletion).Methods(http.MethodPost)
	user.HandleFunc("/stats", s.handleStats).Methods(http.MethodGet)
	user.HandleFunc("/cart", s.handleCart).Methods(http.MethodGet)
	user.HandleFunc("/cart", s.handleClearCart).Methods(http.MethodDelete)
	user.HandleFunc("/cart/items", s.handleAddToCart).Methods(http.MethodPost)
	user.HandleFunc("/cart/items/{id:[0-9]+}", s.handleUpdateCartItem).Methods(http.MethodPut)
	user.HandleFunc("/cart/items/{id:[0-9]+}", s.handleRemoveCartItem).Methods(http.MethodDelete)
	user.HandleFunc("/subscription", s.handleSubscribe).Methods(http.MethodPost)

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders: []string{"Authorization", "Content-Type", "Accept-Language"},
	})
	return c.Handler(s.accessLog(r))
}
