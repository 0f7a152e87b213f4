package main

import (
	"os"

	"github.com/annolab/imagejudge/internal/storage"
)

// AppConfig wires the engine: which store backend to flush to, where the
// question schema lives, and how filesystem sessions resolve images.
type AppConfig struct {
	Store      storage.Config
	SchemaPath string
	ImageRoot  string
	Strict     bool
}

func LoadAppConfig() *AppConfig {
	storeType := storage.Type(os.Getenv("STORE_TYPE"))
	if storeType == "" {
		storeType = storage.JSONFile
	}

	storePath := os.Getenv("STORE_PATH")
	if storePath == "" {
		storePath = "annotations.json"
	}

	return &AppConfig{
		Store: storage.Config{
			Type:    storeType,
			Path:    storePath,
			ConnStr: os.Getenv("DATABASE_URL"),
		},
		SchemaPath: os.Getenv("SCHEMA_PATH"),
		ImageRoot:  os.Getenv("IMAGE_ROOT"),
		Strict:     os.Getenv("STRICT_SUBMISSIONS") == "true",
	}
}
