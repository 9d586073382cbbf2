package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cognicore/nlformer/pkg/nlformer/config"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	configPath string
	debug      bool

	engineCfg = config.Default()
	logger    = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "nlformer",
	Short: "Weighted forward-chaining rule inference",
	Long: "nlformer applies weighted if-then rules to facts, chaining derived facts\n" +
		"through successive layers and blending competing rule weights with softmax.",
	SilenceUsage: true,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if configPath != "" {
			cfg, err := config.LoadEngine(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			engineCfg = cfg
		}

		l, err := newLogger(engineCfg.LogLevel, debug)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "Engine configuration YAML")
	pf.BoolVar(&debug, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(inferCmd)
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.Version = version
}

// newLogger builds a production logger at the configured level; debug
// overrides it.
func newLogger(level string, debug bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	if debug {
		lvl = zapcore.DebugLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
