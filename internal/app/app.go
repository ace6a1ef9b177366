package app

import (
	"context"
	"log"
	"time"

	"alcyxob/fitness-coach/internal/api"
	"alcyxob/fitness-coach/internal/config"
	"alcyxob/fitness-coach/internal/llm"
	"alcyxob/fitness-coach/internal/repository"
	"alcyxob/fitness-coach/internal/repository/mongo"
	"alcyxob/fitness-coach/internal/service"
	"alcyxob/fitness-coach/internal/storage"

	driver "go.mongodb.org/mongo-driver/mongo"
)

// App is the wired dependency graph shared by the server and the CLI.
type App struct {
	Config   config.Config
	DB       *driver.Database
	Goals    repository.GoalRepository
	Services api.Services

	client *driver.Client
}

// New connects to MongoDB, ensures indexes and builds every service.
// The plan archive is skipped when no bucket is configured.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		return nil, err
	}
	appDB := dbClient.Database(cfg.Database.Name)
	log.Println("INFO: Database connection established.")

	indexCtx, cancel := context.WithTimeout(ctx, time.Minute)
	mongo.EnsureIndexes(indexCtx, appDB)
	cancel()

	var archive storage.PlanArchive
	if cfg.S3.BucketName != "" {
		archive, err = storage.NewS3Archive(ctx, cfg.S3)
		if err != nil {
			_ = mongo.DisconnectDB(dbClient)
			return nil, err
		}
	} else {
		log.Println("WARN: s3.bucket_name is empty; plan archiving is disabled.")
	}

	userRepo := mongo.NewMongoUserRepository(appDB)
	goalRepo := mongo.NewMongoGoalRepository(appDB)
	exerciseRepo := mongo.NewMongoExerciseRepository(appDB)
	mealRepo := mongo.NewMongoMealRepository(appDB)
	planRepo := mongo.NewMongoPlanRepository(appDB)
	blockedRepo := mongo.NewMongoBlockedItemRepository(appDB)
	archiveRepo := mongo.NewMongoPlanArchiveRepository(appDB)

	generator := llm.NewClient(llm.Config{
		BaseURL:       cfg.LLM.BaseURL,
		APIKey:        cfg.LLM.APIKey,
		Model:         cfg.LLM.Model,
		FallbackModel: cfg.LLM.FallbackModel,
		Temperature:   cfg.LLM.Temperature,
		Timeout:       cfg.LLM.Timeout,
	})

	svc := api.Services{
		Auth:     service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiration),
		Catalog:  service.NewCatalogService(exerciseRepo, mealRepo),
		Profile:  service.NewProfileService(userRepo, blockedRepo, exerciseRepo, mealRepo),
		Goals:    service.NewGoalService(goalRepo),
		Tracking: service.NewTrackingService(planRepo),
		Coach: service.NewCoachService(service.CoachDeps{
			Users:         userRepo,
			Goals:         goalRepo,
			Exercises:     exerciseRepo,
			Meals:         mealRepo,
			Plans:         planRepo,
			Blocked:       blockedRepo,
			Archives:      archiveRepo,
			Generator:     generator,
			Tuning:        cfg.Generation.Tuning(),
			Archive:       archive,
			ArchivePrefix: cfg.S3.ArchivePrefix,
		}),
	}

	return &App{
		Config:   cfg,
		DB:       appDB,
		Goals:    goalRepo,
		Services: svc,
		client:   dbClient,
	}, nil
}

func (a *App) Close() {
	log.Println("INFO: Disconnecting MongoDB...")
	if err := mongo.DisconnectDB(a.client); err != nil {
		log.Printf("ERROR: Failed to disconnect MongoDB: %v", err)
	}
}
