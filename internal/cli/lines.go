package cli

import (
	"bufio"
	"iter"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	pl "github.com/zhangzqs/pagedlist-go"
)

const maxLineSize = 1 << 20

func newLinesCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "lines [file]",
		Short: "Paginate the lines of a file, or of stdin when no file is given",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			name := "stdin"
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return errors.Wrapf(err, "failed to open file %s", args[0])
				}
				defer f.Close()
				in, name = f, args[0]
			}

			scanner := bufio.NewScanner(in)
			scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

			page, err := pl.PaginateSeq(scanLines(scanner), a.cfg.Page, a.cfg.Size)
			if err != nil {
				return err
			}
			if err := scanner.Err(); err != nil {
				return errors.Wrapf(err, "failed to read %s", name)
			}

			a.log.WithFields(logrus.Fields{
				"input": name,
				"page":  page.PageNumber(),
				"total": page.TotalItemCount(),
			}).Debug("paginated lines")
			return writeJSON(cmd.OutOrStdout(), page)
		},
	}
}

func scanLines(scanner *bufio.Scanner) iter.Seq[string] {
	return func(yield func(string) bool) {
		for scanner.Scan() {
			if !yield(scanner.Text()) {
				return
			}
		}
	}
}
