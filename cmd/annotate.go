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
	"context"
	"fmt"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/valpere/encomment/internal/annotator"
	"github.com/valpere/encomment/internal/config"
	"github.com/valpere/encomment/internal/dialect"
	"github.com/valpere/encomment/internal/logger"
	"github.com/valpere/encomment/internal/orchestrator"
	"github.com/valpere/encomment/internal/refiner"
	"github.com/valpere/encomment/internal/sourcefile"
	"github.com/valpere/encomment/internal/store"
)

func runAnnotate(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	log, err := logger.New(logger.Options{Level: cfg.Log.Level, Prefix: "encomment"})
	if err != nil {
		return err
	}

	report, err := annotateFile(cmd.Context(), cfg, args[0], log)
	if err != nil {
		return err
	}

	fmt.Printf("Wrote %s\n", report.OutputFile)
	fmt.Printf("Comment groups: %d, blocks/docstrings: %d\n", report.Groups, report.Regions)
	fmt.Printf("Translated: %d, placeholders: %d", report.Translated, report.Fallbacks)
	if report.CacheHits > 0 {
		fmt.Printf(" (%d from translation memory)", report.CacheHits)
	}
	fmt.Println()
	return nil
}

// annotateFile runs the whole pipeline for one input file and returns the
// run record that was (or would have been) saved to history.
func annotateFile(ctx context.Context, cfg *config.Config, path string, log *charmlog.Logger) (*store.Run, error) {
	started := time.Now()

	profile, err := dialect.ForPath(path)
	if err != nil {
		return nil, err
	}

	lines, err := sourcefile.Read(path)
	if err != nil {
		return nil, err
	}

	var db *store.Store
	if !cfg.NoCache && cfg.DBPath != "" {
		db, err = openStore(cfg.DBPath)
		if err != nil {
			log.Warn("translation memory unavailable", "err", err)
			db = nil
		} else {
			defer db.Close()
		}
	}

	services, err := buildServices(cfg, log)
	if err != nil {
		return nil, err
	}

	orch := orchestrator.New(services, orchestrator.OrchestratorConfig{
		Timeout:        cfg.Timeout,
		MaxAttempts:    cfg.MaxRetries,
		MaxChars:       maxChars(cfg, services),
		SourceLang:     cfg.Source,
		TargetLang:     cfg.Target,
		SkipValidation: !cfg.Validate,
		Service:        serviceConfig(cfg),
	})
	orch.SetLogger(log)
	if db != nil {
		orch.SetMemory(db)
	}
	if cfg.Refine {
		orch.SetRefiner(refiner.NewOllamaRefiner(cfg.Refiner.Model, cfg.Refiner.URL))
	}

	var tr annotator.Translator = orch
	if len(services) == 0 {
		log.Info("no translation services configured, inserting placeholders")
		if db == nil {
			tr = nil
		}
	}

	log.Debug("annotating", "file", path, "dialect", profile.Name, "lines", len(lines))
	a := annotator.New(tr, annotator.Options{FlattenMarkup: cfg.FlattenMarkup, Logger: log})
	res := a.Annotate(ctx, lines, profile)

	out := cfg.Output
	if out == "" {
		out = sourcefile.OutputPath(path)
	}
	if err := sourcefile.Write(out, res.Lines); err != nil {
		return nil, err
	}

	run := &store.Run{
		InputFile:  path,
		OutputFile: out,
		Dialect:    profile.Name,
		Groups:     res.Groups,
		Regions:    res.Regions,
		Translated: res.Translated,
		Fallbacks:  res.Fallbacks,
		CacheHits:  orch.Stats().CacheHits,
		StartedAt:  started,
		FinishedAt: time.Now(),
	}

	if db != nil {
		id, err := db.SaveRun(ctx, *run)
		if err != nil {
			log.Warn("failed to record run", "err", err)
		} else {
			run.ID = id
		}
	}

	return run, nil
}
