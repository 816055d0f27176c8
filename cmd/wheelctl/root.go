package main

import (
	"os"
	"time"

	"axon-backend/infrastructure/config"
	"axon-backend/infrastructure/remote"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// globalOptions are the persistent flags shared by every subcommand
type globalOptions struct {
	configFile string
	server     string
	token      string
	userID     string
	verbose    bool
	noColor    bool
}

// app carries what subcommands need once flags are parsed
type app struct {
	opts   globalOptions
	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "wheelctl",
		Short:         "Operate on consequence wheels",
		Long:          brand.Sprint("wheelctl") + " lays out, reports on and watches consequence wheels",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.opts.configFile, "config", "", "YAML config file (overrides CONFIG_FILE)")
	flags.StringVar(&a.opts.server, "server", "", "API base URL (default from config)")
	flags.StringVar(&a.opts.token, "token", os.Getenv("WHEELCTL_TOKEN"), "bearer token for the API")
	flags.StringVar(&a.opts.userID, "user", os.Getenv("WHEELCTL_USER"), "caller ID sent when the API runs without auth")
	flags.BoolVarP(&a.opts.verbose, "verbose", "v", false, "log debug output to stderr")
	flags.BoolVar(&a.opts.noColor, "no-color", false, "disable colored output")

	root.AddCommand(
		a.layoutCmd(),
		a.reportCmd(),
		a.watchCmd(),
		a.listCmd(),
		a.voteCmd(),
		a.tokenCmd(),
	)
	return root
}

func (a *app) init() error {
	if a.opts.noColor {
		color.NoColor = true
	}
	if a.opts.configFile != "" {
		if err := os.Setenv("CONFIG_FILE", a.opts.configFile); err != nil {
			return err
		}
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	if a.opts.server != "" {
		cfg.RemoteBaseURL = a.opts.server
	}
	a.cfg = cfg

	zc := zap.NewDevelopmentConfig()
	zc.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	if a.opts.verbose {
		zc.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	zc.OutputPaths = []string{"stderr"}
	logger, err := zc.Build()
	if err != nil {
		return err
	}
	a.logger = logger
	return nil
}

// client builds an API client from config and flags
func (a *app) client() *remote.Client {
	var opts []remote.Option
	if a.opts.token != "" {
		opts = append(opts, remote.WithToken(a.opts.token))
	}
	if a.opts.userID != "" {
		opts = append(opts, remote.WithUserID(a.opts.userID))
	}
	timeout := a.cfg.RemoteTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return remote.NewClient(a.cfg.RemoteBaseURL, timeout, a.cfg.CircuitBreaker, a.logger, opts...)
}
