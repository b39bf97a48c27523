package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gorm.io/gorm"

	"github.com/just-nibble/stargazer-service/internal/adapters/api"
	"github.com/just-nibble/stargazer-service/internal/adapters/db"
	"github.com/just-nibble/stargazer-service/internal/adapters/llm"
	"github.com/just-nibble/stargazer-service/internal/core/service"
	"github.com/just-nibble/stargazer-service/internal/routes"
	"github.com/just-nibble/stargazer-service/pkg/config"
	"github.com/just-nibble/stargazer-service/pkg/logger"
)

func main() {
	logger.Init()

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to load configuration")
	}

	switch os.Args[1] {
	case "ingest":
		runIngest(cfg, os.Args[2:])
	case "enrich":
		runEnrich(cfg, os.Args[2:])
	case "export":
		runExport(cfg, os.Args[2:])
	case "serve":
		runServe(cfg, os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: stargazer <ingest|enrich|export|serve> [flags]")
}

func runIngest(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	repoFlag := fs.String("repo", cfg.Repository, "repository to track, owner/name")
	limit := fs.Int("limit", 0, "only keep the most recent N stargazers")
	fs.Parse(args)

	owner, name := mustRepo(*repoFlag)
	store := db.NewGormStargazerStore(mustDB(cfg))
	ingestor := service.NewIngestor(store, mustClient(cfg), logger.Log)

	if _, err := ingestor.Run(context.Background(), owner, name, *limit); err != nil {
		logger.Log.WithError(err).Fatal("ingestion failed")
	}
}

func runEnrich(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("enrich", flag.ExitOnError)
	limit := fs.Int("limit", 0, "enrich at most N pending stargazers")
	sample := fs.Float64("sample", 0, "enrich a random fraction (0,1] of pending stargazers")
	fs.Parse(args)

	store := db.NewGormStargazerStore(mustDB(cfg))
	extractor := llm.NewExtractor(cfg.LLMAPIKey, cfg.LLMBaseURL, cfg.LLMModelName)
	enricher := service.NewEnricher(store, mustClient(cfg), extractor, logger.Log)

	opts := service.EnrichOptions{Limit: *limit, Sample: *sample}
	if _, err := enricher.Run(context.Background(), opts); err != nil {
		logger.Log.WithError(err).Fatal("enrichment failed")
	}
}

func runExport(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	repoFlag := fs.String("repo", cfg.Repository, "repository to track, owner/name")
	output := fs.String("o", "", "output path, - for stdout")
	fs.Parse(args)

	owner, name := mustRepo(*repoFlag)
	exporter := service.NewExporter(db.NewGormStargazerStore(mustDB(cfg)))

	path := *output
	if path == "" {
		path = fmt.Sprintf("%s-%s-stargazers.csv", owner, name)
	}

	out := os.Stdout
	if path != "-" {
		f, err := os.Create(path)
		if err != nil {
			logger.Log.WithError(err).Fatal("failed to create output file")
		}
		defer f.Close()
		out = f
	}

	if err := exporter.Write(out); err != nil {
		logger.Log.WithError(err).Fatal("export failed")
	}
	if path != "-" {
		logger.Log.WithField("path", path).Info("export written")
	}
}

func runServe(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	repoFlag := fs.String("repo", cfg.Repository, "repository to track, owner/name")
	fs.Parse(args)

	owner, name := mustRepo(*repoFlag)
	store := db.NewGormStargazerStore(mustDB(cfg))
	client := mustClient(cfg)
	extractor := llm.NewExtractor(cfg.LLMAPIKey, cfg.LLMBaseURL, cfg.LLMModelName)

	ingestor := service.NewIngestor(store, client, logger.Log)
	enricher := service.NewEnricher(store, client, extractor, logger.Log)
	exporter := service.NewExporter(store)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	monitor := service.NewMonitor(ingestor, enricher, owner, name, cfg.MonitorInterval, logger.Log)
	go monitor.Start(ctx)

	handler := routes.NewHandler(store, ingestor, exporter, owner, name, logger.Log)
	server := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: routes.NewRouter(handler),
	}

	go func() {
		logger.Log.WithField("port", cfg.ServerPort).Info("stargazer service started")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.WithError(err).Fatal("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Log.WithError(err).Error("server forced to shutdown")
	}
}

func mustRepo(repo string) (string, string) {
	owner, name, err := config.SplitRepo(repo)
	if err != nil {
		logger.Log.WithField("repo", repo).Fatal("a repository is required, set -repo or REPOSITORY")
	}
	return owner, name
}

func mustClient(cfg *config.Config) *api.GitHubClient {
	if cfg.GithubToken == "" {
		logger.Log.Fatal("GITHUB_TOKEN is required")
	}
	return api.NewGitHubClient(cfg.GithubToken)
}

func mustDB(cfg *config.Config) *gorm.DB {
	gdb, err := db.InitDB(cfg)
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to initialize database")
	}
	return gdb
}
