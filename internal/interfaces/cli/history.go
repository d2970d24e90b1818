package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/turtacn/ChemConformer/internal/infrastructure/storage/ledger"
	"github.com/turtacn/ChemConformer/pkg/errors"
)

// newHistoryCmd builds the "history" subcommand: list refinement runs from
// the sqlite ledger.
func newHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [name]",
		Short: "List recorded refinement runs",
		Long:  "history lists runs from the sqlite run ledger, newest first.  With a name\nargument only that species' runs are shown.  Requires output.ledger_path to\nbe configured.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			if cliCtx.Store == nil {
				return errors.InvalidParam("run ledger disabled; set output.ledger_path or CHEMCONF_OUTPUT_LEDGER_PATH")
			}

			var runs []ledger.Record
			if len(args) == 1 {
				runs, err = cliCtx.Store.History(cmd.Context(), args[0])
			} else {
				runs, err = cliCtx.Store.Recent(cmd.Context(), limit)
			}
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tMETHOD\tENERGY\tATOMS\tSOLVENT\tWHEN")
			for _, r := range runs {
				fmt.Fprintf(w, "%s\t%s\t%.8f\t%d\t%s\t%s\n",
					r.Name, r.Method, r.Energy, r.NAtoms, r.Solvent,
					r.CreatedAt.Format("2006-01-02 15:04:05"))
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of runs to list")
	return cmd
}
