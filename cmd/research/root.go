package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/aishitdharwal/ai-agent/app"
	"github.com/aishitdharwal/ai-agent/config"
	"github.com/aishitdharwal/ai-agent/log"
)

const defaultTopic = "Latest developments in quantum computing"

var (
	envFile  string
	logLevel string

	cfg    *config.Config
	logger log.Logger = log.NoOpLogger{}
)

var rootCmd = &cobra.Command{
	Use:   "research",
	Short: "Run and inspect the research agents",
	Long: `research runs the naive and stateful research agents from the command line,
invokes the Lambda handler locally or a deployed API, and inspects saved state.

Settings come from the environment, seeded from a .env file:
  OPENAI_API_KEY, TAVILY_API_KEY (or BRAVE_API_KEY with SEARCH_PROVIDER=brave),
  STATE_BACKEND (s3, file, memory, redis, sqlite, postgres), LOG_LEVEL.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var files []string
		if envFile != "" {
			files = append(files, envFile)
		}
		c, err := config.Load(files...)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("log-level") {
			c.LogLevel = logLevel
		}
		l, err := app.NewLogger(c)
		if err != nil {
			return err
		}
		cfg, logger = c, l
		log.SetDefaultLogger(l)
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "env file to load (default: .env if present)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level, overrides LOG_LEVEL (debug, info, warn, error, none)")
}
