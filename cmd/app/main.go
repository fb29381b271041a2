/*
 * Copyright (c) 2026 Francesco Biribo'
 *
 * Permission to use, copy, modify, and distribute this software for any purpose with or without fee is hereby granted, provided that the above copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"secrets/internal"
	"secrets/internal/entity"
	"secrets/internal/handler"
	"secrets/internal/httpserver"
	"secrets/internal/logutil"
	"secrets/internal/middleware"
	"secrets/internal/repository"
	"secrets/internal/service"
	"secrets/internal/view"

	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const sessionPurgeInterval = time.Hour

func main() {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg, err := internal.LoadConfig()
	if err != nil {
		logger.Fatal().Err(err).Msg("loading configuration")
	}

	// An unreachable store at startup is fatal, the process must not accept
	// traffic it cannot serve.
	db, err := gorm.Open(sqlite.Open(cfg.DatabasePath), &gorm.Config{TranslateError: true})
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfg.DatabasePath).Msg("opening database")
	}
	if err := db.AutoMigrate(&entity.User{}, &entity.Session{}); err != nil {
		logger.Fatal().Err(err).Msg("migrating database")
	}

	cookieStore := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	cookieStore.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.SessionTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	userRepo := repository.NewSQLiteUserRepository(db)
	sessionRepo := repository.NewSQLiteSessionRepository(db)

	authService := service.NewAuthService(userRepo, logger)
	sessionService := service.NewSessionService(sessionRepo, userRepo, cfg.SessionTTL, logger)
	secretService := service.NewSecretService(userRepo, logger)

	templates, err := internal.RetrieveWebTemplates(cfg.TemplateDirectory)
	if err != nil {
		logger.Fatal().Err(err).Str("dir", cfg.TemplateDirectory).Msg("loading templates")
	}
	renderer := view.NewPageRenderer(templates)

	router := buildRouter(cfg, cookieStore, renderer, authService, sessionService, secretService, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logutil.WithLogger(ctx, logger)

	go purgeSessions(ctx, sessionService)

	if err := httpserver.Serve(ctx, cfg.BindAddr, router); err != nil {
		logger.Fatal().Err(err).Msg("http server failed")
	}
}

func buildRouter(cfg *internal.Config, cookieStore *sessions.CookieStore, renderer *view.PageRenderer,
	authService service.AuthService, sessionService service.SessionService, secretService service.SecretService,
	logger zerolog.Logger) *mux.Router {

	pageHandler := handler.NewPageHandler(renderer)
	authHandler := handler.NewAuthHandler(authService, sessionService, cookieStore, renderer, logger)
	secretHandler := handler.NewSecretHandler(secretService, renderer, logger)

	router := mux.NewRouter()
	router.HandleFunc("/", pageHandler.Home).Methods(http.MethodGet)
	router.HandleFunc("/login", authHandler.Login).Methods(http.MethodGet, http.MethodPost)
	router.HandleFunc("/register", authHandler.Register).Methods(http.MethodGet, http.MethodPost)
	router.HandleFunc("/logout", authHandler.Logout).Methods(http.MethodGet)

	router.HandleFunc("/secrets", middleware.Auth(cookieStore, sessionService, secretHandler.Secrets)).Methods(http.MethodGet)
	router.HandleFunc("/submit", middleware.Auth(cookieStore, sessionService, secretHandler.Submit)).Methods(http.MethodGet, http.MethodPost)

	if cfg.FederatedLoginConfigured() {
		oauthConfig := &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleCallbackURL,
			Scopes:       []string{"openid"},
			Endpoint:     google.Endpoint,
		}
		oauthHandler := handler.NewOAuthHandler(oauthConfig, handler.DefaultUserInfoURL, authService, sessionService, cookieStore, logger)
		router.HandleFunc("/auth/google", oauthHandler.Begin).Methods(http.MethodGet)
		router.HandleFunc("/auth/google/secrets", oauthHandler.Callback).Methods(http.MethodGet)
	} else {
		logger.Warn().Msg("google credentials missing, federated login disabled")
	}

	router.PathPrefix("/static/").Handler(
		http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.StaticDirectory))))

	return router
}

// purgeSessions deletes expired sessions on a fixed interval until the
// context ends.
func purgeSessions(ctx context.Context, sessionService service.SessionService) {
	ticker := time.NewTicker(sessionPurgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := sessionService.PurgeExpired(); err != nil {
				logger := logutil.GetOrDefault(ctx)
				logger.Warn().Err(err).Msg("session purge failed")
			}
		}
	}
}
