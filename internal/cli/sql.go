package cli

import (
	"database/sql"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	_ "modernc.org/sqlite"

	pl "github.com/zhangzqs/pagedlist-go"
	"github.com/zhangzqs/pagedlist-go/sqlsource"
)

func newSQLCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sql",
		Short: "Paginate the rows of a query against a SQLite database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var cfg SQLConfig
			if err := load(a.v, &cfg); err != nil {
				return err
			}

			db, err := sql.Open("sqlite", cfg.DSN)
			if err != nil {
				return errors.Wrapf(err, "failed to open database %s", cfg.DSN)
			}
			defer db.Close()

			src := pl.NewLoggingSource[map[string]any](sqlsource.New(db, cfg.Query, sqlsource.ScanMap), a.log)

			ctx, cancel := a.context(cmd)
			defer cancel()

			page, err := pl.PaginateSource[map[string]any](ctx, src, a.cfg.Page, a.cfg.Size)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), page)
		},
	}

	cmd.Flags().String("dsn", "", "path of the SQLite database")
	cmd.Flags().String("query", "", "query to paginate, including its ORDER BY")
	return cmd
}
