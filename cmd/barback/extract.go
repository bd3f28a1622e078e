package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/barback/internal/api"
	"github.com/jackzampolin/barback/internal/extract"
	"github.com/jackzampolin/barback/internal/llmcall"
	"github.com/jackzampolin/barback/internal/menu"
	"github.com/jackzampolin/barback/internal/providers"
)

// traceAuto writes the trace to a timestamped file under the home directory.
const traceAuto = "auto"

var (
	extractOut      string
	extractProvider string
	extractModel    string
	extractTrace    string
)

var extractCmd = &cobra.Command{
	Use:   "extract <menu-file>",
	Short: "Classify menu entries and write the cocktails to JSON",
	Long: `Classify every entry of a menu file and write the cocktails to a JSON array.

Menu files ending in .json, .yaml or .yml hold a list of strings. Any other
file is plain text with entries separated by blank lines.

Examples:
  barback extract menu.txt
  barback extract menu.json --out cocktails.json
  barback extract menu.txt --model gpt-4o --trace calls.jsonl
  barback extract menu.txt --trace auto`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		h, err := getHome()
		if err != nil {
			return err
		}
		mgr, err := loadConfig(h)
		if err != nil {
			return err
		}
		cfg := mgr.Get()

		providerName := firstNonEmpty(extractProvider, cfg.Defaults.LLMProvider)
		provCfg, ok := cfg.GetLLMProvider(providerName)
		if !ok {
			return fmt.Errorf("LLM provider %q is not configured", providerName)
		}

		registry, err := providers.NewRegistryFromConfig(cfg.ToProviderRegistryConfig())
		if err != nil {
			return err
		}
		client, err := registry.GetLLM(providerName)
		if err != nil {
			return fmt.Errorf("LLM provider %q is disabled or unavailable: %w", providerName, err)
		}

		entries, err := menu.Load(args[0])
		if err != nil {
			return err
		}

		var recorder *llmcall.Recorder
		if tracePath := firstNonEmpty(extractTrace, cfg.Output.TracePath); tracePath != "" {
			if tracePath == traceAuto {
				tracePath = h.TracePath(time.Now())
			}
			recorder, err = llmcall.OpenFile(tracePath, logger)
			if err != nil {
				return err
			}
			defer func() {
				if cerr := recorder.Close(); cerr != nil {
					logger.Warn("failed to close trace file", "path", tracePath, "error", cerr)
				}
			}()
		}

		classifier, err := extract.NewLLMClassifier(extract.LLMClassifierConfig{
			Client:      client,
			Model:       firstNonEmpty(extractModel, provCfg.Model),
			Temperature: provCfg.Temperature,
			Recorder:    recorder,
			Logger:      logger,
		})
		if err != nil {
			return err
		}

		logger.Info("starting extraction",
			"menu", args[0],
			"entries", len(entries),
			"provider", providerName,
			"model", firstNonEmpty(extractModel, provCfg.Model))

		outPath := firstNonEmpty(extractOut, cfg.Output.Path)
		summary, err := extract.Run(ctx, entries, classifier, outPath, extract.WithLogger(logger))
		if err != nil {
			return err
		}
		return api.Output(summary)
	},
}

func init() {
	extractCmd.Flags().StringVar(&extractOut, "out", "", "output JSON file (default from config: sample_cocktails.json)")
	extractCmd.Flags().StringVar(&extractProvider, "provider", "", "LLM provider name from config (default from config)")
	extractCmd.Flags().StringVar(&extractModel, "model", "", "model identifier (default from provider config)")
	extractCmd.Flags().StringVar(&extractTrace, "trace", "", "write every LLM call to this JSON lines file (\"auto\" for ~/.barback/traces)")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
