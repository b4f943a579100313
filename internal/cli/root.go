// Package cli implements the timetrack command line client.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"kuenkele/timetrack/internal/client"
	"kuenkele/timetrack/internal/config"
	"kuenkele/timetrack/internal/logger"
	"kuenkele/timetrack/internal/platform"
)

// app holds the dependencies shared by all commands. It is filled in by the
// root command's PersistentPreRunE.
type app struct {
	cfg      *config.Config
	log      *logger.Logger
	client   *client.APIClient
	store    *client.TokenStore
	creds    *client.Credentials
	platform platform.Platform
	location *time.Location
	out      io.Writer
	in       io.Reader
	now      func() time.Time
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	a := &app{now: time.Now}

	var (
		configPath string
		verbose    bool
	)

	root := &cobra.Command{
		Use:   "timetrack",
		Short: "Track work time against projects",
		Long: `timetrack talks to a timetrack server to start and stop project timers,
list projects and review the activities of a day.

Run "timetrack login" first.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd, configPath, verbose)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.persistSession()
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", defaultConfigPath(), "Path to configuration file")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log requests to stderr")

	root.AddCommand(
		newLoginCmd(a),
		newLogoutCmd(a),
		newProjectsCmd(a),
		newStatusCmd(a),
		newHealthCmd(a),
		newActivitiesCmd(a),
	)

	return root
}

// Execute runs the CLI and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func defaultConfigPath() string {
	if p := os.Getenv("TIMETRACK_CONFIG"); p != "" {
		return p
	}
	return "config/local.yaml"
}

func (a *app) setup(cmd *cobra.Command, configPath string, verbose bool) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	level := "error"
	if verbose {
		level = "debug"
	}
	a.log, err = logger.New(level, "console")
	if err != nil {
		return err
	}

	a.location, err = cfg.Work.Location()
	if err != nil {
		return fmt.Errorf("invalid work time zone %q: %w", cfg.Work.TimeZone, err)
	}

	a.out = cmd.OutOrStdout()
	a.in = cmd.InOrStdin()

	userAgent := "timetrack-cli"
	if p, err := platform.NewPlatform(); err != nil {
		a.log.Debug("Browser support unavailable", zap.Error(err))
	} else {
		a.platform = p
		info := p.GetSystemInfo()
		userAgent = fmt.Sprintf("timetrack-cli (%s/%s)", info.OS, info.Arch)
	}

	a.store, err = client.NewTokenStore(cfg.Client.TokenFile)
	if err != nil {
		return err
	}
	a.creds, err = a.store.Load()
	if err != nil {
		return err
	}

	a.client, err = client.NewAPIClient(cfg.Client.BaseURL, cfg.Client.Timeout, userAgent, a.log.Logger)
	if err != nil {
		return err
	}
	a.client.SetSession(a.creds.Session)
	if a.creds.IDToken != "" && !a.creds.TokenExpired(a.now()) {
		a.client.SetToken(a.creds.IDToken)
	}

	return nil
}

// persistSession stores a session the server minted during the command,
// e.g. after a bearer token was exchanged.
func (a *app) persistSession() error {
	if a.client == nil || a.creds == nil {
		return nil
	}
	session := a.client.Session()
	if session == "" || session == a.creds.Session {
		return nil
	}
	a.creds.Session = session
	return a.store.Save(a.creds)
}

// describe turns client errors into messages for the terminal.
func describe(err error) error {
	var authErr *client.AuthError
	if errors.As(err, &authErr) {
		return fmt.Errorf("%s (run \"timetrack login\")", authErr.Message)
	}
	return err
}
