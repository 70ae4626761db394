// Package cli implements the pagedlist command line tool.
package cli

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type app struct {
	v   *viper.Viper
	cfg Config
	log *logrus.Logger
}

// NewRootCommand builds the pagedlist command tree.
func NewRootCommand() *cobra.Command {
	a := &app{v: newViper()}

	root := &cobra.Command{
		Use:           "pagedlist",
		Short:         "Print one page of a list of lines or of a SQL query as JSON",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.IntP("page", "p", 1, "one-based page number")
	flags.IntP("size", "s", 10, "maximum number of items per page")
	flags.String("log-level", "warn", "log level (debug, info, warn, error)")
	flags.Duration("timeout", 30*time.Second, "timeout for source reads, 0 disables it")
	flags.String("config", "", "config file")

	root.AddCommand(newLinesCommand(a), newSQLCommand(a))
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	if err := a.v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}
	if err := readConfigFile(a.v, a.v.GetString("config")); err != nil {
		return err
	}
	if err := load(a.v, &a.cfg); err != nil {
		return err
	}

	level, err := logrus.ParseLevel(a.cfg.LogLevel)
	if err != nil {
		return err
	}
	a.log = logrus.New()
	a.log.SetOutput(cmd.ErrOrStderr())
	a.log.SetLevel(level)
	a.log.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true})
	return nil
}

// context returns the command context bounded by the configured timeout.
func (a *app) context(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if a.cfg.Timeout > 0 {
		return context.WithTimeout(ctx, a.cfg.Timeout)
	}
	return context.WithCancel(ctx)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
