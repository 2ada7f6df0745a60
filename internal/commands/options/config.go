package options

import (
	"github.com/spf13/cobra"

	"carecal/internal/config"
	appLog "carecal/internal/log"
)

// ConfigOptions locate the config file and pick the log level.
type ConfigOptions struct {
	Path  string
	Debug bool
}

func AddConfigArgs(cmd *cobra.Command, o *ConfigOptions) {
	cmd.PersistentFlags().StringVar(&o.Path, "config", config.DefaultPath,
		"Path to the config file. Created with defaults when missing.")
	cmd.PersistentFlags().BoolVar(&o.Debug, "debug", false,
		"Log at debug level regardless of log_level.")
}

// Load reads the config and applies its log level.
func (o *ConfigOptions) Load() (*config.Config, error) {
	cfg, err := config.Load(o.Path)
	if err != nil {
		return nil, err
	}
	level := appLog.ParseLevel(cfg.LogLevel)
	if o.Debug {
		level = appLog.LevelDebug
	}
	appLog.SetLevel(level)
	return cfg, nil
}
