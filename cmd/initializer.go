package main

import (
	"database/sql"
	"log"
	"net/http"
	"time"

	"firebase.google.com/go/messaging"
	"github.com/redis/go-redis/v9"

	"engineBack/internal/config"
	"engineBack/internal/exporters"
	"engineBack/internal/handlers"
	"engineBack/internal/repositories"
	"engineBack/internal/services"
	"engineBack/utils"
)

type application struct {
	errorLog *log.Logger
	infoLog  *log.Logger
	db       *sql.DB
	cfg      config.Config
	tokens   *utils.Manager
	hub      *EventHub

	budgetRepo *repositories.BudgetRepository

	profileHandler     *handlers.BusinessProfileHandler
	packHandler        *handlers.ContentPackHandler
	approvalHandler    *handlers.ApprovalHandler
	templateHandler    *handlers.WorkflowTemplateHandler
	budgetHandler      *handlers.BudgetHandler
	analyticsHandler   *handlers.AnalyticsHandler
	generationHandler  *handlers.GenerationHandler
	exportHandler      *handlers.ExportHandler
	deviceTokenHandler *handlers.DeviceTokenHandler
	seedHandler        *handlers.SeedHandler
}

func initializeApp(db *sql.DB, cache *redis.Client, fcm *messaging.Client, cfg config.Config, errorLog, infoLog *log.Logger) (*application, error) {
	tokens, err := utils.NewManager(cfg.Auth.SigningKey)
	if err != nil {
		return nil, err
	}

	// Repositories
	profileRepo := &repositories.BusinessProfileRepository{DB: db}
	packRepo := &repositories.ContentPackRepository{DB: db}
	approvalRepo := &repositories.ApprovalRepository{DB: db}
	budgetRepo := &repositories.BudgetRepository{DB: db}
	deviceTokenRepo := &repositories.DeviceTokenRepository{DB: db}

	// Event sinks
	hub := NewEventHub(errorLog)
	notifications := &services.NotificationService{
		Client:   fcm,
		Tokens:   deviceTokenRepo,
		Packs:    packRepo,
		ErrorLog: errorLog,
	}
	events := services.EventFanout{hub, notifications}

	// Services
	profileService := &services.BusinessProfileService{Repo: profileRepo}
	budgetService := services.NewBudgetService(budgetRepo)
	forecastService := services.NewBudgetForecastService(budgetRepo)
	approvalService := services.NewApprovalService(approvalRepo, packRepo, events)
	customService := services.NewCustomApprovalService(approvalRepo, approvalRepo, approvalRepo, packRepo, events)
	packService := &services.ContentPackService{
		Packs:  packRepo,
		Gate:   approvalService,
		Budget: budgetService,
	}
	analyticsService := services.NewAnalyticsService(packRepo, budgetRepo, cache)
	generationService := services.NewContentGenerationService(profileRepo, packService, budgetService)
	generationService.HTTPClient = &http.Client{Timeout: 90 * time.Second}

	var artifactStore *exporters.S3Store
	if cfg.S3.Bucket != "" {
		artifactStore, err = exporters.NewS3Store(cfg.S3.Endpoint, cfg.S3.Region, cfg.S3.Bucket,
			cfg.S3.AccessKey, cfg.S3.SecretKey)
		if err != nil {
			errorLog.Printf("s3 unavailable, export storage disabled: %v", err)
			artifactStore = nil
		}
	}

	return &application{
		errorLog:   errorLog,
		infoLog:    infoLog,
		db:         db,
		cfg:        cfg,
		tokens:     tokens,
		hub:        hub,
		budgetRepo: budgetRepo,

		profileHandler:     &handlers.BusinessProfileHandler{Service: profileService},
		packHandler:        &handlers.ContentPackHandler{Service: packService},
		approvalHandler:    &handlers.ApprovalHandler{Approvals: approvalService, Custom: customService},
		templateHandler:    &handlers.WorkflowTemplateHandler{Repo: approvalRepo},
		budgetHandler:      &handlers.BudgetHandler{Budget: budgetService, Forecast: forecastService},
		analyticsHandler:   &handlers.AnalyticsHandler{Service: analyticsService},
		generationHandler:  &handlers.GenerationHandler{Service: generationService},
		exportHandler:      &handlers.ExportHandler{Packs: packService, Store: artifactStore},
		deviceTokenHandler: &handlers.DeviceTokenHandler{Repo: deviceTokenRepo},
		seedHandler: &handlers.SeedHandler{
			Profiles:  profileService,
			Packs:     packService,
			Approvals: approvalService,
			Budget:    budgetService,
			Templates: approvalRepo,
		},
	}, nil
}
