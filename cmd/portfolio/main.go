// Command portfolio runs the portfolio content service.
//
//	portfolio serve                 run the HTTP server
//	portfolio seed                  copy the bundled dataset into the document store
//	portfolio hash-password         print a bcrypt hash for admin.password_hash
//
// Settings come from flags, PORTFOLIO_* environment variables and an
// optional portfolio.yaml, in that order of precedence.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/sakif/portfolio/internal/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app carries what every subcommand needs once flags are parsed.
type app struct {
	cfgFile string
	cfg     config.Config
	logger  *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "portfolio",
		Short:         "Portfolio content service",
		Long:          "Serves projects, certificates and comments for the portfolio site, merged from the document store, the local cache and the bundled dataset.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		},
	}

	d := config.Default()
	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default is ./"+config.DefaultFile+")")
	flags.Int("port", d.Port, "HTTP port")
	flags.String("log-level", d.LogLevel, "log level: debug, info, warn, error")
	flags.String("db-path", d.DBPath, "SQLite database file")
	flags.String("driver", d.Store.Driver, "document store: sqlite, surreal or none")

	root.AddCommand(
		newServeCmd(a),
		newSeedCmd(a),
		newHashPasswordCmd(),
	)
	return root
}

func (a *app) load(cmd *cobra.Command) error {
	cfg, err := config.Load(a.cfgFile, cmd.Flags())
	if err != nil {
		return err
	}
	level, err := cfg.Level()
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	return nil
}
