package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mfreeman481/paysheet-api/internal/handler"
	internalmiddleware "github.com/mfreeman481/paysheet-api/internal/middleware"
	"github.com/mfreeman481/paysheet-api/internal/service"
	"github.com/mfreeman481/paysheet-api/pkg/config"
	"github.com/mfreeman481/paysheet-api/pkg/logger"
	corsmiddleware "github.com/mfreeman481/paysheet-api/pkg/middleware/cors"
	reqidmiddleware "github.com/mfreeman481/paysheet-api/pkg/middleware/requestid"
	"github.com/mfreeman481/paysheet-api/pkg/storage"
)

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

	artifactStore, err := storage.NewLocalStorage(cfg.Paysheet.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init artifact storage", "error", err)
	}
	if deleted, err := artifactStore.CleanupOlderThan(7 * cfg.Paysheet.SignedURLTTL); err != nil {
		logr.Sugar().Warnw("artifact cleanup failed", "error", err)
	} else if len(deleted) > 0 {
		logr.Sugar().Infow("expired artifacts removed", "count", len(deleted))
	}

	signer := storage.NewSignedURLSigner(cfg.Paysheet.SignedURLSecret, cfg.Paysheet.SignedURLTTL)
	metricsSvc := service.NewMetricsService()

	rosterSvc := service.NewRosterService(cfg.Roster.Dir, cfg.Roster.DefaultNames, logr)
	ingestSvc := service.NewIngestService(cfg.Paysheet.ReportSheetName, logr)
	weekSvc := service.NewWeekService(logr)
	filterSvc := service.NewFilterService(logr)
	composerSvc := service.NewComposerService(service.ComposerLayout{
		HeaderRow:         cfg.Paysheet.HeaderRow,
		DataStartRow:      cfg.Paysheet.DataStartRow,
		DataEndRow:        cfg.Paysheet.DataEndRow,
		WeekOfScanRows:    cfg.Paysheet.WeekOfScanRows,
		WeekOfScanCols:    cfg.Paysheet.WeekOfScanCols,
		DefaultWeekOfCell: cfg.Paysheet.DefaultWeekOfCell,
		DescriptionLimit:  cfg.Paysheet.DescriptionLimit,
	}, logr)
	paysheetSvc := service.NewPaysheetService(
		rosterSvc, ingestSvc, weekSvc, filterSvc, composerSvc,
		artifactStore, signer, metricsSvc, logr,
		service.PaysheetServiceConfig{APIPrefix: cfg.APIPrefix},
	)

	rosterHandler := handler.NewRosterHandler(rosterSvc)
	paysheetHandler := handler.NewPaysheetHandler(paysheetSvc, weekSvc, cfg.Paysheet.MaxUploadBytes)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))
	r.MaxMultipartMemory = cfg.Paysheet.MaxUploadBytes

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	api := r.Group(cfg.APIPrefix)
	{
		api.GET("/rosters/:team", rosterHandler.Get)
		api.PUT("/rosters/:team", rosterHandler.Save)

		api.POST("/paysheets/preview", paysheetHandler.Preview)
		api.POST("/paysheets/preview/export", paysheetHandler.ExportPreview)
		api.POST("/paysheets/generate", paysheetHandler.Generate)
		api.GET("/paysheets/download/:token", paysheetHandler.Download)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
