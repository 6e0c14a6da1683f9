// Package cli wires the flowerfield commands.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rook-computer/flowerfield/internal/app"
	"github.com/rook-computer/flowerfield/internal/config"
	"github.com/rook-computer/flowerfield/internal/logging"
)

const envStdioLog = "FLOWERFIELD_STDIO_LOG"

type rootOptions struct {
	configFile string
	stdioLog   string
	closeLog   func()
}

// NewRootCommand builds the flowerfield command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{closeLog: func() {}}
	root := &cobra.Command{
		Use:           "flowerfield",
		Short:         "Procedural flower field generator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Redirect all stdout/stderr output (including panic stack traces)
			// so crashes are diagnosable while the console is in graphics mode.
			path := opts.stdioLog
			if path == "" {
				path = os.Getenv(envStdioLog)
			}
			if path != "" {
				if err := redirectStdIO(path); err != nil {
					fmt.Fprintln(os.Stderr, "stdio log redirect error:", err)
				}
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			opts.closeLog()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.configFile, "config", "", "path to a JSON, YAML or TOML config file")
	pf.StringVar(&opts.stdioLog, "stdio-log", "", "redirect stdout+stderr (including panics) to this file; also configurable via "+envStdioLog)
	pf.String("log.level", "info", "log level: debug, info, warn, error or none")
	pf.String("log.file", "", "write logs to this file instead of stderr")

	root.AddCommand(
		newRenderCommand(opts),
		newServeCommand(opts),
		newDisplayCommand(opts),
		newVersionCommand(),
	)
	return root
}

// load reads the configuration for cmd and sets up logging.
func (o *rootOptions) load(cmd *cobra.Command) (config.Config, app.Logger, error) {
	conf, err := config.Load(cmd, o.configFile)
	if err != nil {
		return config.Config{}, nil, err
	}
	closeLog, err := logging.Setup(conf.Log.Level, conf.Log.File)
	if err != nil {
		return config.Config{}, nil, err
	}
	o.closeLog = closeLog
	return conf, app.ZeroLogger{}, nil
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "flowerfield:", err)
		return 1
	}
	return 0
}
