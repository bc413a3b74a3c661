// Package cli wires configuration, logging and the pipeline stages behind
// the insightpost command line.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hoanghai1803/insightpost/internal/ai"
	"github.com/hoanghai1803/insightpost/internal/config"
	"github.com/hoanghai1803/insightpost/internal/feeds"
	"github.com/hoanghai1803/insightpost/internal/pipeline"
	"github.com/hoanghai1803/insightpost/internal/publisher"
)

var (
	configPath string
	postsDir   string
	debug      bool
)

var rootCmd = &cobra.Command{
	Use:   "insightpost",
	Short: "Turn the latest feed entry into a daily insight post",
	Long: `insightpost fetches the newest entry of a syndication feed, asks a
generative model for a short actionable insight, and writes it as a
Jekyll post under _posts/.

Run failures are reported in the log; the command still exits 0 so a
scheduler does not treat a quiet feed as a broken job.`,
	SilenceUsage: true,
	RunE:         runRun,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "insightpost.toml", "Path to config file")
	rootCmd.PersistentFlags().StringVar(&postsDir, "posts-dir", "", "Override publish.posts_dir")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(runCmd, previewCmd, versionCmd)
}

// Execute runs the root command.
func Execute(version string) error {
	appVersion = version

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

// loadConfig reads the config file, applies flag overrides and installs the
// default logger.
func loadConfig() (*config.Config, error) {
	setupLogging(slog.LevelInfo)

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if postsDir != "" {
		cfg.Publish.PostsDir = postsDir
	}

	level, err := config.ParseLogLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	if debug {
		level = slog.LevelDebug
	}
	setupLogging(level)

	return cfg, nil
}

func setupLogging(level slog.Level) {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

// buildPipeline creates the three stages from cfg.
func buildPipeline(cfg *config.Config) (*pipeline.Pipeline, error) {
	collector := feeds.NewFetcher(feeds.Options{
		URL:              cfg.Feed.URL,
		UserAgent:        cfg.Feed.UserAgent,
		Timeout:          time.Duration(cfg.Feed.TimeoutSeconds) * time.Second,
		PlainTextSummary: cfg.Feed.PlainTextSummary,
	})

	provider, err := ai.NewProvider(ai.ProviderConfig{
		Provider: cfg.AI.Provider,
		APIKey:   cfg.AI.APIKey,
		Model:    cfg.AI.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("creating AI provider: %w", err)
	}
	slog.Debug("AI provider configured", "provider", cfg.AI.Provider, "model", cfg.AI.Model)

	pub := publisher.New(publisher.Options{
		Dir:    cfg.Publish.PostsDir,
		Unique: cfg.Publish.UniqueFilenames,
	})

	return pipeline.New(pipeline.Config{APIKey: cfg.AI.APIKey}, collector, provider, pub)
}
