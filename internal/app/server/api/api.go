// Server surface consumed by the point-of-sale clients:
//
//	GET  /api/v1/health             # connectivity probe (public)
//	POST /api/v1/auth/register      # open an account + trial profile (public)
//	POST /api/v1/auth/login         # open a session (public)
//	GET  /api/v1/profile            # plan and subscription state (auth)
//	POST /api/v1/sync/{collection}  # upload a batch of rows (auth)
//	GET  /api/v1/sync/{collection}  # download rows past a watermark (auth)
package api

import (
	authAPI "contafeira/internal/app/server/api/http/auth"
	healthAPI "contafeira/internal/app/server/api/http/health"
	"contafeira/internal/app/server/api/http/middleware"
	"contafeira/internal/app/server/api/http/middleware/auth"
	"contafeira/internal/app/server/api/http/middleware/logger"
	profileAPI "contafeira/internal/app/server/api/http/profile"
	recordsAPI "contafeira/internal/app/server/api/http/records"
	"contafeira/internal/app/server/config"
	"contafeira/internal/domain/account"
	"contafeira/internal/domain/record"
	"contafeira/internal/infrastructure/storage/postgres"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"golang.org/x/exp/slog"
)

type Handlers struct {
	Health  *healthAPI.Handler
	Auth    *authAPI.Handler
	Profile *profileAPI.Handler
	Records *recordsAPI.Handler
}

// New builds a *chi.Mux with every operation registered through huma.
func New(cfg *config.Config, storage *postgres.Storage, log *slog.Logger) *chi.Mux {
	mux := chi.NewMux()

	humaConfig := huma.DefaultConfig("ContaFeira API", "1.0.0")
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {Type: "http", Scheme: "bearer"},
	}

	API := humachi.New(mux, humaConfig)

	h := handlers(cfg, storage, log)
	h.Health.SetupRoutes(API)
	h.Auth.SetupRoutes(API)
	h.Profile.SetupRoutes(API)
	h.Records.SetupRoutes(API)

	return mux
}

func handlers(cfg *config.Config, storage *postgres.Storage, log *slog.Logger) *Handlers {
	accountRepo := postgres.NewAccountRepository(storage, log)
	accountService := account.NewService(accountRepo, cfg.Server.SessionTTL, cfg.Trial.Duration, log)
	authMW := auth.New(accountService, log)
	loggerMW := logger.New(log)
	middlewares := middleware.NewContainer()

	middlewares.Add(loggerMW.Middleware())
	healthHandler := healthAPI.NewHandler(log, middlewares.GetAllAndClear())

	middlewares.Add(loggerMW.Middleware())
	authHandler := authAPI.NewHandler(accountService, log, middlewares.GetAllAndClear())

	middlewares.Add(authMW.Middleware())
	middlewares.Add(loggerMW.Middleware())
	profileHandler := profileAPI.NewHandler(accountService, log, middlewares.GetAllAndClear())

	recordRepo := postgres.NewRecordRepository(storage, log)
	recordService := record.NewService(recordRepo, log)
	middlewares.Add(authMW.Middleware())
	middlewares.Add(loggerMW.Middleware())
	recordsHandler := recordsAPI.NewHandler(recordService, log, middlewares.GetAllAndClear())

	return &Handlers{
		Health:  healthHandler,
		Auth:    authHandler,
		Profile: profileHandler,
		Records: recordsHandler,
	}
}
