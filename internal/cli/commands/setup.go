package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/gapview/internal/cli/config"
	"github.com/leapstack-labs/gapview/internal/cli/output"
	"github.com/leapstack-labs/gapview/internal/dataset"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Dataset  *dataset.Dataset
	Renderer *output.Renderer
}

// NewCommandContext loads the configured dataset and creates a renderer.
func NewCommandContext(cmd *cobra.Command) (*CommandContext, error) {
	cc := NewCommandContextWithoutDataset(cmd)

	ds, err := loadDataset(cmd, cc.Cfg, cc.Logger)
	if err != nil {
		return nil, err
	}
	cc.Dataset = ds
	return cc, nil
}

// NewCommandContextWithoutDataset creates a CommandContext without loading data.
// Useful for commands that don't read observations.
func NewCommandContextWithoutDataset(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())
	mode := output.Mode(cfg.OutputFormat)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// getConfig returns the current configuration.
// It uses config.GetCurrentConfig() if available, otherwise falls back to environment variables.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}

	return &config.Config{
		Dataset: config.DatasetConfig{
			Location: getEnvOrDefault(config.EnvPrefix+"DATASET_LOCATION", dataset.DefaultLocation),
			Table:    getEnvOrDefault(config.EnvPrefix+"DATASET_TABLE", dataset.DefaultTable),
		},
		Serve: config.ServeConfig{
			Port:            config.DefaultPort,
			SessionSecret:   getEnvOrDefault(config.EnvPrefix+"SERVE_SESSION_SECRET", config.DefaultSessionSecret),
			ShutdownTimeout: config.DefaultShutdownTimeout,
		},
		Verbose:      os.Getenv(config.EnvPrefix+"VERBOSE") == "true",
		OutputFormat: getEnvOrDefault(config.EnvPrefix+"OUTPUT", config.DefaultOutput),
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func loadDataset(cmd *cobra.Command, cfg *config.Config, logger *slog.Logger) (*dataset.Dataset, error) {
	ds, err := dataset.Load(cmd.Context(), cfg.DatasetSource(), logger)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w\nHint: use --dataset or set dataset.location in gapview.yaml", err)
	}
	if err != nil {
		return nil, err
	}
	return ds, nil
}
