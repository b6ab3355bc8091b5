/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/valpere/encomment/internal/config"
	"github.com/valpere/encomment/internal/store"
	"github.com/valpere/encomment/internal/translator"
)

// buildServices constructs the translation services named in cfg, in order.
// An empty list is not an error: the annotator then writes placeholders.
// Empty model lists fall back to each service's defaults.
func buildServices(cfg *config.Config, log *charmlog.Logger) ([]translator.TranslationService, error) {
	var list []translator.TranslationService

	for _, name := range cfg.Services {
		switch name {
		case "google":
			list = append(list, translator.NewGoogleService())
		case "systran":
			list = append(list, translator.NewSystranService(cfg.Systran.Key))
		case "mymemory":
			list = append(list, translator.NewMyMemoryService(cfg.MyMemory.Email))
		case "ollama":
			list = append(list, translator.NewOllamaTranslator(cfg.Ollama.URL, cfg.Ollama.Models))
		case "openrouter":
			list = append(list, translator.NewOpenRouterService(cfg.OpenRouter.Key, "", cfg.OpenRouter.Models))
		default:
			log.Warn("unknown service, skipping", "service", name)
		}
	}

	if len(cfg.Services) > 0 && len(list) == 0 {
		return nil, fmt.Errorf("no valid services configured")
	}
	return list, nil
}

// maxChars returns the chunk size for the orchestrator. MyMemory rejects
// long queries, so its limit applies when nothing else is configured.
func maxChars(cfg *config.Config, services []translator.TranslationService) int {
	if cfg.MaxChars > 0 {
		return cfg.MaxChars
	}
	for _, svc := range services {
		if svc.Name() == "mymemory" {
			return translator.MyMemoryMaxChars
		}
	}
	return 0
}

func serviceConfig(cfg *config.Config) translator.ServiceConfig {
	return translator.ServiceConfig{
		Credentials: cfg.Google.Credentials,
		ProjectID:   cfg.Google.Project,
		Timeout:     cfg.Timeout,
	}
}

// openStore opens the database at path, creating its directory.
func openStore(path string) (*store.Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	db, err := store.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// openStoreFor opens the database for a maintenance subcommand. An explicit
// --db wins; otherwise the configured path is used.
func openStoreFor(cmd *cobra.Command, dbPath string) (*store.Store, error) {
	if !cmd.Flags().Changed("db") {
		cfg, err := config.Load(cfgFile, nil)
		if err != nil {
			return nil, err
		}
		dbPath = cfg.DBPath
	}
	return openStore(dbPath)
}
