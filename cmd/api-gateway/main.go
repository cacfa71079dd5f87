package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/talent-eval-api/api/swagger"
	"github.com/noah-isme/talent-eval-api/internal/ai"
	"github.com/noah-isme/talent-eval-api/internal/connector"
	"github.com/noah-isme/talent-eval-api/internal/handler"
	"github.com/noah-isme/talent-eval-api/internal/middleware"
	"github.com/noah-isme/talent-eval-api/internal/repository"
	"github.com/noah-isme/talent-eval-api/internal/service"
	"github.com/noah-isme/talent-eval-api/pkg/cache"
	"github.com/noah-isme/talent-eval-api/pkg/config"
	"github.com/noah-isme/talent-eval-api/pkg/database"
	"github.com/noah-isme/talent-eval-api/pkg/jobs"
	"github.com/noah-isme/talent-eval-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/talent-eval-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/talent-eval-api/pkg/middleware/requestid"
	"github.com/noah-isme/talent-eval-api/pkg/vault"
)

// @title Talent Evaluation API
// @version 1.0.0
// @description AI-driven candidate evaluation engine and assessment platform connectors
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to redis", "error", err)
	}
	defer redisClient.Close()

	secrets, err := vault.New(cfg.Vault.Key, cfg.Vault.KeyFile)
	if err != nil {
		logr.Sugar().Fatalw("failed to init vault", "error", err)
	}

	analysisVersionRepo := repository.NewAnalysisVersionRepository(db)
	assessmentResultRepo := repository.NewAssessmentResultRepository(db)
	webhookEventRepo := repository.NewWebhookEventRepository(db)
	providerSettingsRepo := repository.NewProviderSettingsRepository(db)
	connectorConfigRepo := repository.NewConnectorConfigRepository(db)
	candidateRepo := repository.NewCandidateRepository(db)
	assessmentRepo := repository.NewAssessmentRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsSvc := service.NewMetricsService()

	resolver := service.NewProviderResolver(providerSettingsRepo, cacheRepo, cfg.AI.SettingsCacheTTL, logr)
	gateway := ai.NewGateway(resolver, secrets, ai.GatewayConfig{
		RequestTimeout:   cfg.AI.RequestTimeout,
		MaxRetries:       cfg.AI.MaxRetries,
		RetryBaseDelay:   cfg.AI.RetryBaseDelay,
		DefaultMaxTokens: cfg.AI.DefaultMaxTokens,
	}, logr, metricsSvc)

	registry := connector.NewRegistry()
	for _, c := range []connector.Connector{
		connector.NewGenericWebhookConnector(secrets, nil, logr),
		connector.NewCodepadConnector(secrets, nil, logr),
	} {
		if err := registry.Register(c); err != nil {
			logr.Sugar().Fatalw("failed to register connector", "connector", c.Name(), "error", err)
		}
	}
	initializeConnectors(context.Background(), registry, connectorConfigRepo, logr)

	analysisSvc := service.NewAnalysisService(gateway, analysisVersionRepo, candidateRepo, assessmentRepo, logr, metricsSvc)
	assessmentSvc := service.NewAssessmentAnalysisService(gateway, assessmentRepo, candidateRepo, nil, logr)

	queue := jobs.NewQueue("evaluation", func(ctx context.Context, job jobs.Job) error {
		return dispatchJob(ctx, job, analysisSvc, assessmentSvc)
	}, jobs.QueueConfig{
		Workers:    cfg.Jobs.Workers,
		BufferSize: cfg.Jobs.BufferSize,
		MaxRetries: cfg.Jobs.MaxRetries,
		RetryDelay: cfg.Jobs.RetryDelay,
		Logger:     logr,
	})
	queue.Start(context.Background())
	defer queue.Stop()

	webhookSvc := service.NewWebhookService(registry, webhookEventRepo, assessmentResultRepo, assessmentRepo, queue, logr, metricsSvc)
	connectorSvc := service.NewConnectorService(registry, assessmentResultRepo, assessmentRepo, candidateRepo, logr)

	go pruneWebhookLedger(context.Background(), webhookEventRepo, cfg.Webhook.DedupeTTL, logr)

	analysisHandler := handler.NewAnalysisHandler(analysisSvc, queue)
	assessmentHandler := handler.NewAssessmentHandler(assessmentSvc)
	connectorHandler := handler.NewConnectorHandler(connectorSvc)
	webhookHandler := handler.NewWebhookHandler(webhookSvc, cfg.Webhook.MaxBodyBytes)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "database unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		if cfg.Analysis.Enabled {
			api.POST("/candidates/:id/analyses", analysisHandler.Generate)
			api.GET("/candidates/:id/analyses", analysisHandler.List)
			api.GET("/candidates/:id/analyses/latest", analysisHandler.Latest)
			api.POST("/candidates/:id/analyses/tab-summary", analysisHandler.TabSummary)
			api.GET("/candidates/:id/analyses/export", analysisHandler.ExportHistory)
		}
		api.POST("/candidates/:id/predict-performance", assessmentHandler.PredictPerformance)

		api.POST("/assessments/questions/generate", assessmentHandler.GenerateQuestions)
		api.POST("/assessments/responses/grade", assessmentHandler.GradeResponses)
		api.POST("/assessments/:id/analyze", assessmentHandler.AnalyzeResults)
		api.POST("/assessments/:id/team-fit", assessmentHandler.AnalyzeTeamFit)

		api.GET("/connectors", connectorHandler.List)
		api.GET("/connectors/:name", connectorHandler.Get)
		api.POST("/connectors/:name/test", connectorHandler.Test)
		api.POST("/connectors/:name/invites", connectorHandler.SendInvite)
		api.GET("/connectors/:name/results/:externalId", connectorHandler.PollResults)
		api.DELETE("/connectors/:name/invites/:externalId", connectorHandler.CancelInvite)

		api.POST("/webhooks/:connector", webhookHandler.Receive)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

// initializeConnectors feeds stored credentials to each registered
// connector. A connector without a stored config stays unconfigured and is
// skipped by lookups that require configuration.
func initializeConnectors(ctx context.Context, registry *connector.Registry, repo *repository.ConnectorConfigRepository, logr *zap.Logger) {
	configs, err := repo.List(ctx)
	if err != nil {
		logr.Sugar().Errorw("failed to load connector configs", "error", err)
		return
	}
	for _, cfg := range configs {
		c := registry.Get(cfg.ConnectorName)
		if c == nil {
			logr.Sugar().Warnw("config for unregistered connector ignored", "connector", cfg.ConnectorName)
			continue
		}
		if err := c.Initialize(cfg); err != nil {
			logr.Sugar().Errorw("connector initialization failed", "connector", cfg.ConnectorName, "error", err)
			continue
		}
		logr.Sugar().Infow("connector initialized", "connector", cfg.ConnectorName, "configured", c.IsConfigured())
	}
}

func dispatchJob(ctx context.Context, job jobs.Job, analyses *service.AnalysisService, assessments *service.AssessmentAnalysisService) error {
	switch job.Type {
	case service.JobTypeResultsAnalysis:
		assessmentID, ok := job.Payload.(string)
		if !ok {
			return fmt.Errorf("job %s: expected assessment id payload", job.ID)
		}
		_, err := assessments.AnalyzeResults(ctx, assessmentID)
		return err
	case service.JobTypeGenerateAnalysis:
		payload, ok := job.Payload.(service.AnalysisJobPayload)
		if !ok {
			return fmt.Errorf("job %s: expected analysis payload", job.ID)
		}
		_, err := analyses.GenerateAnalysis(ctx, payload.CandidateID, payload.AnalysisType, payload.Trigger)
		return err
	default:
		return fmt.Errorf("job %s: unknown type %q", job.ID, job.Type)
	}
}

// pruneWebhookLedger periodically drops dedupe rows past the retention
// horizon so the unique index stays small.
func pruneWebhookLedger(ctx context.Context, repo *repository.WebhookEventRepository, ttl time.Duration, logr *zap.Logger) {
	if ttl <= 0 {
		return
	}
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pruned, err := repo.DeleteOlderThan(ctx, time.Now().UTC().Add(-ttl))
			if err != nil {
				logr.Sugar().Errorw("webhook ledger prune failed", "error", err)
				continue
			}
			if pruned > 0 {
				logr.Sugar().Infow("webhook ledger pruned", "rows", pruned)
			}
		}
	}
}
