package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/charlesng35/dairyadmin/internal/api"
	"github.com/charlesng35/dairyadmin/internal/app"
	"github.com/charlesng35/dairyadmin/internal/app/maintenance"
	iauth "github.com/charlesng35/dairyadmin/internal/auth"
	"github.com/charlesng35/dairyadmin/internal/cache"
	"github.com/charlesng35/dairyadmin/internal/database"
	"github.com/charlesng35/dairyadmin/internal/monitoring"
	"github.com/charlesng35/dairyadmin/internal/monitoring/checks"
	"github.com/charlesng35/dairyadmin/internal/realtime"
	"github.com/charlesng35/dairyadmin/internal/security"
	"github.com/charlesng35/dairyadmin/internal/services"
)

// runtimeStack bundles long-lived services used by the HTTP server.
type runtimeStack struct {
	DB       *gorm.DB
	Redis    *cache.RedisClient
	Cache    cache.Store
	Hub      *realtime.Hub
	AuditSvc *services.AuditService
	Cleaner  *maintenance.Cleaner
	Health   *monitoring.HealthManager
	Router   *gin.Engine
}

// bootstrapRuntime initialises the database, cache, background jobs and the HTTP router.
func bootstrapRuntime(ctx context.Context, cfg *app.Config, log *zap.Logger) (*runtimeStack, error) {
	stack := &runtimeStack{}
	var err error
	success := false

	defer func() {
		if !success {
			stack.Shutdown(context.Background(), log)
		}
	}()

	// enable gin debug mod
	if debug, _ := os.LookupEnv("GIN_DEBUG"); debug != "true" {
		gin.SetMode(gin.ReleaseMode)
	}

	stack.DB, err = initialiseDatabase(cfg, log)
	if err != nil {
		return nil, err
	}

	dbStore := cache.NewDatabaseStore(stack.DB)
	stack.Cache = dbStore

	if cfg.Cache.RedisEnabled() {
		if stack.Redis, err = cache.NewRedisClient(cfg.Cache.RedisClientConfig()); err != nil {
			log.Warn("redis unavailable; falling back to database-backed cache", zap.Error(err))
			stack.Redis = nil
		} else {
			stack.Cache = stack.Redis
			log.Info("redis connected", zap.String("addr", cfg.Cache.Redis.Address))
		}
	}

	jwtSvc, err := iauth.NewJWTService(cfg.Auth.JWTServiceConfig())
	if err != nil {
		return nil, fmt.Errorf("initialise jwt service: %w", err)
	}

	stack.AuditSvc, err = services.NewAuditService(stack.DB)
	if err != nil {
		return nil, fmt.Errorf("initialise audit service: %w", err)
	}

	stack.Cleaner = maintenance.NewCleaner(stack.AuditSvc, dbStore,
		maintenance.WithAuditRetentionDays(cfg.Maintenance.AuditRetentionDays),
		maintenance.WithAuditSchedule(cfg.Maintenance.AuditSchedule),
		maintenance.WithCacheSchedule(cfg.Maintenance.CacheSchedule),
	)
	if err := stack.Cleaner.Start(); err != nil {
		return nil, fmt.Errorf("start maintenance jobs: %w", err)
	}

	stack.Hub = realtime.NewHub()
	stack.Health = newHealthManager(stack, cfg)

	stack.Router, err = api.NewRouter(api.Dependencies{
		DB:     stack.DB,
		JWT:    jwtSvc,
		Config: cfg,
		Cache:  stack.Cache,
		Hub:    stack.Hub,
		Health: stack.Health,
	})
	if err != nil {
		return nil, fmt.Errorf("build api router: %w", err)
	}

	report := stack.Health.EvaluateReadiness(ctx)
	log.Info("readiness evaluated", zap.String("status", string(report.Status)))
	logSecurityAudit(ctx, security.NewAuditor(stack.DB, jwtSvc, cfg), log)

	success = true
	return stack, nil
}

func logSecurityAudit(ctx context.Context, auditor *security.Auditor, log *zap.Logger) {
	result := auditor.Run(ctx)
	for _, check := range result.Checks {
		switch check.Status {
		case security.StatusFail:
			log.Error("security check failed", zap.String("check", check.ID), zap.String("message", check.Message), zap.String("remediation", check.Remediation))
		case security.StatusWarn:
			log.Warn("security check warning", zap.String("check", check.ID), zap.String("message", check.Message), zap.String("remediation", check.Remediation))
		}
	}
}

func newHealthManager(stack *runtimeStack, cfg *app.Config) *monitoring.HealthManager {
	health := monitoring.NewHealthManager()
	health.RegisterLiveness(monitoring.Static("server"))
	health.RegisterReadiness(checks.Database(stack.DB, 0))

	var pinger checks.RedisPinger
	if stack.Redis != nil {
		pinger = stack.Redis
	}
	health.RegisterReadiness(checks.Redis(pinger, cfg.Cache.Redis.Enabled, cfg.Cache.Redis.Timeout))
	health.RegisterReadiness(checks.Maintenance(stack.Cleaner, 0, nil))
	health.RegisterReadiness(checks.Realtime(stack.Hub))
	return health
}

// Shutdown gracefully stops background jobs and releases resources.
func (s *runtimeStack) Shutdown(ctx context.Context, log *zap.Logger) {
	if s == nil {
		return
	}

	if s.Cleaner != nil {
		select {
		case <-s.Cleaner.Stop().Done():
		case <-ctx.Done():
		}
		if err := s.Cleaner.RunOnce(ctx); err != nil {
			log.Warn("maintenance shutdown cleanup failed", zap.Error(err))
		}
	}

	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			log.Warn("failed to close redis client", zap.Error(err))
		}
	}

	closeDatabase(s.DB, log)
}

func initialiseDatabase(cfg *app.Config, log *zap.Logger) (*gorm.DB, error) {
	dbCfg := cfg.Database.DatabaseClientConfig()
	if dbCfg.Driver == "" {
		dbCfg.Driver = "sqlite"
	}

	db, err := database.Open(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if cfg.Database.Seed {
		err = database.AutoMigrateAndSeed(db)
	} else {
		err = database.AutoMigrate(db)
	}
	if err != nil {
		closeDatabase(db, log)
		return nil, fmt.Errorf("auto-migrate database: %w", err)
	}

	log.Info("database connected", zap.String("driver", strings.ToLower(dbCfg.Driver)))
	return db, nil
}

func closeDatabase(db *gorm.DB, log *zap.Logger) {
	if db == nil {
		return
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Warn("failed to obtain underlying sql DB for closing", zap.Error(err))
		return
	}

	if err := sqlDB.Close(); err != nil {
		log.Warn("failed to close database", zap.Error(err))
	}
}
