package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/annolab/imagejudge/internal/domain"
	"github.com/annolab/imagejudge/internal/reader"
	"github.com/annolab/imagejudge/internal/router"
	"github.com/annolab/imagejudge/internal/server"
	"github.com/annolab/imagejudge/internal/session"
	"github.com/annolab/imagejudge/internal/storage"
	"github.com/labstack/echo/v4"
)

func main() {
	slog.SetLogLoggerLevel(slog.LevelDebug)

	sCfg, err := server.LoadConfig()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	cfg := LoadAppConfig()

	schema, err := loadSchema(cfg.SchemaPath)
	if err != nil {
		slog.Error("Failed to load question schema", "path", cfg.SchemaPath, "error", err)
		os.Exit(1)
	}
	slog.Info("Question schema loaded", "questions", schema.Len())

	store, err := storage.NewStore(context.Background(), cfg.Store)
	if err != nil {
		slog.Error("Failed to create record store", "type", cfg.Store.Type, "error", err)
		os.Exit(1)
	}
	slog.Info("Record store ready", "type", cfg.Store.Type)

	e := echo.New()
	e.HideBanner = true
	s := server.NewServer(e, sCfg)

	e.GET("/", func(c echo.Context) error {
		return c.String(200, "imagejudge API is running")
	})

	var routerOpts []router.AnnotateRouterOption
	if cfg.ImageRoot != "" {
		routerOpts = append(routerOpts, router.WithImageRoot(cfg.ImageRoot))
	}
	if cfg.Strict {
		routerOpts = append(routerOpts, router.WithStrictSubmissions())
		slog.Info("Strict submissions enabled")
	}

	annotateRouter := router.NewAnnotateRouter(e, session.NewManager(), store, schema, routerOpts...)
	annotateRouter.Bind()

	if err := s.Start(); err != nil {
		e.Logger.Error("Failed to start server: ", err)
		os.Exit(1)
	}
}

func loadSchema(path string) (*domain.QuestionSchema, error) {
	if path == "" {
		return domain.DefaultSchema(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return reader.NewYAMLSchemaLoader(f).Load(true)
}
