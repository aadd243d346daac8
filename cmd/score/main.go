// Command score runs the orphan-well risk analysis: load the well inventory
// and spatial layers, score every well, and export the results. With
// HTTP_ADDR set it keeps serving the finished results until interrupted.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	exportadapter "github.com/wellshed/wellrisk/internal/adapter/export"
	httpadapter "github.com/wellshed/wellrisk/internal/adapter/http"
	kafkaadapter "github.com/wellshed/wellrisk/internal/adapter/kafka"
	"github.com/wellshed/wellrisk/internal/cache"
	"github.com/wellshed/wellrisk/internal/config"
	"github.com/wellshed/wellrisk/internal/engine"
	"github.com/wellshed/wellrisk/internal/geo"
	"github.com/wellshed/wellrisk/internal/ingest"
	"github.com/wellshed/wellrisk/internal/observability"
)

func main() {
	wellsPath := flag.String("wells", "", "path to the well inventory JSON file (required)")
	layersPath := flag.String("layers", "", "path to the spatial layers JSON file (optional)")
	flag.Parse()

	if *wellsPath == "" {
		fmt.Fprintln(os.Stderr, "usage: score -wells wells.json [-layers layers.json]")
		os.Exit(2)
	}

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	if err := run(cfg, logger, metrics, *wellsPath, *layersPath); err != nil {
		logger.Error("analysis failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics, wellsPath, layersPath string) error {
	wells, err := ingest.LoadWells(wellsPath)
	if err != nil {
		return err
	}
	logger.Info("loaded well inventory", "wells", len(wells), "path", wellsPath)

	var (
		aquifers  []geo.Polygon
		flowlines []geo.Polyline
		domestic  []geo.TaggedPoint
		countyUse map[string]float64
	)
	if layersPath != "" {
		aquifers, flowlines, domestic, countyUse, err = ingest.LoadLayers(layersPath)
		if err != nil {
			return err
		}
		logger.Info("loaded spatial layers",
			"aquifers", len(aquifers), "flowlines", len(flowlines), "domestic_wells", len(domestic))
	} else {
		logger.Warn("no layers file supplied, proximity components degrade to zero")
	}

	store, err := geo.NewStore(aquifers, flowlines, domestic, cfg.GridCellM)
	if err != nil {
		return err
	}

	var resultCache *cache.Store
	if cfg.CacheEnabled {
		resultCache = cache.NewStore(cfg.CacheDir, logger)
	}

	eng, err := engine.New(store, cfg.ScoringParams(), cfg.Bands(), cfg.SafeguardConfig(countyUse), engine.Options{
		Cache:   resultCache,
		Logger:  logger,
		Metrics: metrics,
		Workers: cfg.Workers,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var srv *httpadapter.Server
	if cfg.HTTPAddr != "" {
		srv = httpadapter.NewServer(cfg.HTTPAddr, eng, eng, logger)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("http server error", "error", err)
			}
		}()
	}

	rs, err := eng.Run(ctx, wells)
	if err != nil {
		return err
	}

	csvPath, jsonPath, err := exportadapter.WriteFiles(cfg.OutputDir, rs)
	if err != nil {
		return err
	}
	logger.Info("results exported", "csv", csvPath, "json", jsonPath)

	if cfg.KafkaEnabled {
		writer := kafkaadapter.NewWriter(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		if err := writer.PublishResultSet(ctx, rs); err != nil {
			logger.Error("kafka publish error", "error", err)
		}
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	if srv != nil {
		<-ctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("http server shutdown error", "error", err)
		}
	}

	logger.Info("done")
	return nil
}
