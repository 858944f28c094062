package app

import (
	"advisorapi/config"
	"advisorapi/internal/database"
	"advisorapi/internal/events"
	"advisorapi/internal/handlers/middleware"
	"advisorapi/internal/logger"
	"advisorapi/internal/metrics"
	"advisorapi/internal/repositories"
	"advisorapi/internal/services"
	"advisorapi/internal/websockets"

	advisorController "advisorapi/internal/controllers/advisor"
)

type App struct {
	Database   database.DB
	Middleware middleware.Middleware
	Websocket  *websockets.Manager
	EventBus   *events.EventBus
	Metrics    *metrics.Metrics
	Config     config.Config

	// Services
	TransactionService       *services.TransactionService
	HealthStatusService      *services.HealthStatusService
	CacheInvalidationService *services.CacheInvalidationService

	// Repositories
	AdvisorRepo repositories.AdvisorRepository

	// Controllers
	AdvisorController *advisorController.AdvisorController
}

func New() (*App, error) {
	log := logger.New("app").Function("New")

	config, err := config.InitConfig()
	if err != nil {
		return &App{}, log.Err("failed to initialize config", err)
	}

	return NewWithConfig(config)
}

func NewWithConfig(cfg config.Config) (*App, error) {
	log := logger.New("app").Function("NewWithConfig")

	db, err := database.New(cfg)
	if err != nil {
		return &App{}, log.Err("failed to create database", err)
	}

	eventBus := events.New(db.Cache.Events, cfg)
	appMetrics := metrics.New()

	// Initialize services
	transactionService := services.NewTransactionService(db)
	healthStatusService := services.NewHealthStatusService(nil)
	cacheInvalidationService := services.NewCacheInvalidationService(eventBus)

	// Initialize repositories
	var advisorRepo repositories.AdvisorRepository
	if cfg.DatabaseDriver == config.DriverMemory {
		advisorRepo = repositories.NewAdvisorMemory()
	} else {
		advisorRepo = repositories.NewAdvisor(db)
	}

	// Initialize controllers with repositories and services
	middleware := middleware.New(cfg, appMetrics)
	advisorController := advisorController.New(
		advisorRepo,
		healthStatusService,
		transactionService,
		cacheInvalidationService,
		appMetrics,
	)

	websocket, err := websockets.New(db, eventBus, cfg, appMetrics)
	if err != nil {
		_ = db.Close()
		return &App{}, log.Err("failed to create websocket manager", err)
	}

	app := &App{
		Database:                 db,
		Config:                   cfg,
		Middleware:               middleware,
		Metrics:                  appMetrics,
		TransactionService:       transactionService,
		HealthStatusService:      healthStatusService,
		CacheInvalidationService: cacheInvalidationService,
		AdvisorRepo:              advisorRepo,
		AdvisorController:        advisorController,
		Websocket:                websocket,
		EventBus:                 eventBus,
	}

	if err := app.validate(); err != nil {
		_ = app.Close()
		return &App{}, log.Err("failed to validate app", err)
	}

	return app, nil
}

func (a *App) validate() error {
	log := logger.New("app").Function("validate")
	if a.Database.SQL == nil && a.Config.DatabaseDriver != config.DriverMemory {
		return log.ErrMsg("database is nil")
	}

	if a.Config == (config.Config{}) {
		return log.ErrMsg("config is nil")
	}

	nilChecks := []any{
		a.Websocket,
		a.EventBus,
		a.Metrics,
		a.TransactionService,
		a.HealthStatusService,
		a.CacheInvalidationService,
		a.AdvisorController,
		a.AdvisorRepo,
	}

	for _, check := range nilChecks {
		if check == nil {
			return log.ErrMsg("nil check failed")
		}
	}

	return nil
}

func (a *App) Close() (err error) {
	if a.Websocket != nil {
		a.Websocket.Close()
	}

	if a.EventBus != nil {
		if closeErr := a.EventBus.Close(); closeErr != nil {
			err = closeErr
		}
	}

	if dbErr := a.Database.Close(); dbErr != nil {
		err = dbErr
	}

	return err
}
