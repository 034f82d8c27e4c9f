package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/tessro/lookout/internal/config"
	"github.com/tessro/lookout/internal/errors"
	"github.com/tessro/lookout/internal/logging"
)

var (
	cfgFile string
	jsonOut bool
	verbose bool

	cfg       *config.Config
	logCloser io.Closer
)

// fileLogging marks commands that own the terminal and must not log to it.
const fileLogging = "file"

var rootCmd = &cobra.Command{
	Use:   "lookout",
	Short: "Monitor and command remote devices from the terminal",
	Long: `Lookout is a terminal dashboard for a fleet of remote devices.

It shows the device registry kept by the backend, the media each device has
uploaded, and sends the devices remote commands. Run without arguments to
open the dashboard.`,
	Annotations: map[string]string{"logging": fileLogging},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := initConfig(); err != nil {
			return err
		}
		return initLogging(cmd)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCloser != nil {
			_ = logCloser.Close()
		}
	},
	RunE:          runUI,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: ~/.lookoutrc)")
	rootCmd.PersistentFlags().BoolVarP(&jsonOut, "json", "j", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

func initConfig() error {
	var err error
	if cfgFile != "" {
		cfg, err = config.LoadFrom(cfgFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", errors.ErrConfigNotFound, cfgFile)
		}
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%w: %w", errors.ErrInvalidConfig, err)
	}

	return nil
}

func initLogging(cmd *cobra.Command) error {
	logCfg := cfg.Log
	if verbose {
		logCfg.Level = "debug"
	}

	mode := logging.ModeConsole
	if cmd.Annotations["logging"] == fileLogging {
		mode = logging.ModeFile
	}

	closer, err := logging.Setup(logCfg, mode)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	logCloser = closer
	return nil
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errors.Format(err))
		os.Exit(1)
	}
}

// Config returns the loaded configuration.
func Config() *config.Config {
	return cfg
}

// JSONOutput returns true if JSON output is requested.
func JSONOutput() bool {
	return jsonOut
}

// Verbose returns true if verbose output is requested.
func Verbose() bool {
	return verbose
}
