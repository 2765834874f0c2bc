package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"student-backend/internal/predictions"
	"student-backend/internal/predictor"
	"student-backend/internal/shared/auth"
	"student-backend/internal/shared/config"
	"student-backend/internal/shared/server"
	"student-backend/internal/shared/server/middleware"
	"student-backend/internal/shared/storage/db"
	"student-backend/internal/shared/storage/object"
	localstore "student-backend/internal/shared/storage/object/local"
	s3store "student-backend/internal/shared/storage/object/s3"
	"student-backend/internal/shared/telemetry"
	"student-backend/internal/teachers"
)

// App holds shared dependencies and the configured router.
type App struct {
	Config             config.Config
	Router             *gin.Engine
	DB                 *sql.DB
	Store              object.ObjectStore
	Predictor          predictor.Predictor
	Signer             *auth.Signer
	TeachersRepo       teachers.Repo
	PredictionsRepo    predictions.Repo
	TeachersService    *teachers.Service
	PredictionsService *predictions.Service
}

// Build prepares dependencies and wires routes.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}

	signer, err := auth.NewSigner(cfg.JWTSecret, cfg.JWTTTL, cfg.Env)
	if err != nil {
		return nil, err
	}

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:    cfg,
		DB:        sqlDB,
		Store:     store,
		Predictor: buildPredictor(cfg),
		Signer:    signer,
	}

	if sqlDB != nil {
		app.TeachersRepo = &teachers.PGRepo{DB: sqlDB}
		app.PredictionsRepo = &predictions.PGRepo{DB: sqlDB}
	} else {
		app.TeachersRepo = teachers.NewMemoryRepo()
		app.PredictionsRepo = predictions.NewMemoryRepo()
	}

	app.TeachersService = teachers.NewService(app.TeachersRepo, signer)
	app.PredictionsService = &predictions.Service{
		Repo:          app.PredictionsRepo,
		Store:         store,
		Predictor:     app.Predictor,
		MaxPhotoBytes: cfg.MaxPhotoBytes,
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:            cfg,
		Verifier:          signer,
		TeacherHandler:    teachers.NewHandler(app.TeachersService),
		PredictionHandler: predictions.NewHandler(app.PredictionsService),
		Limiter:           middleware.NewRateLimiter(nil),
	})

	return app, nil
}

// Close releases the database pool.
func (a *App) Close() error {
	if a.DB == nil {
		return nil
	}
	return a.DB.Close()
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.memory_repos", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
	if err == nil {
		err = db.RunMigrations(ctx, sqlDB)
		if err != nil {
			sqlDB.Close()
			err = fmt.Errorf("run migrations: %w", err)
		}
	}
	if err != nil {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.memory_repos", map[string]any{"reason": err.Error()})
			return nil, nil
		}
		return nil, err
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildPredictor(cfg config.Config) predictor.Predictor {
	if cfg.PredictorURL == "" {
		telemetry.Info("bootstrap.predictor", map[string]any{"kind": "rule_baseline"})
		return predictor.RuleBaseline{}
	}
	telemetry.Info("bootstrap.predictor", map[string]any{"kind": "remote", "url": cfg.PredictorURL})
	return predictor.NewRemote(cfg.PredictorURL, cfg.PredictorTimeout)
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
