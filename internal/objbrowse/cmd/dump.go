package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/spf13/cobra"

	"objbrowse/internal/asmview"
	"objbrowse/internal/selection"
)

var dumpCmd = &cobra.Command{
	Use:   "dump [symbol-id]",
	Short: "Print the disassembly of a symbol without the TUI",
	Long: `Fetch the disassembly of one symbol and print its instruction rows.
Rows overlapping the --select ranges are marked with '>'.`,
	Example: `
# Print symbol 7
objbrowse dump 7

# Mark the instructions covering byte offsets 0x10 to 0x20 and offset 4
objbrowse dump 7 --select 0x10:0x20 --select 4
  `,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		id, err := parseSymbolID(args[0])
		if err != nil {
			return err
		}
		selectArgs, _ := cmd.Flags().GetStringArray("select")
		rs, err := parseRanges(selectArgs)
		if err != nil {
			return err
		}

		entity := selection.Symbol(id)
		sel := selection.Selection{Entity: entity, Ranges: rs}
		return runDump(cmd.Context(), cfg, sel, cmd.OutOrStdout())
	},
}

// runDump fetches sel's entity and writes its rows to w.
func runDump(ctx context.Context, cfg ObjbrowseConfig, sel selection.Selection, w io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.Timeout() > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout())
		defer cancel()
	}

	fetch := asmview.FetchBatch(&http.Client{}, cfg.Server)
	slog.Debug("Fetching disassembly", "server", cfg.Server, "entity", sel.Entity)
	batch, err := fetch(ctx, sel.Entity.AsmPath())
	if err != nil {
		return fmt.Errorf("%s: %w", asmview.FailureTitle(err), err)
	}

	rows, err := asmview.Layout(batch, sel.Entity, sel)
	if err != nil {
		return fmt.Errorf("%s: %w", asmview.FailureTitle(err), err)
	}

	fmt.Fprintf(w, "; %s (%d instructions)\n", sel.Entity, len(rows))
	if len(rows) > 0 {
		fmt.Fprintln(w, asmview.RenderRows(rows, asmview.PlainStyles()))
	}
	return nil
}

func init() {
	dumpCmd.Flags().StringArrayP("select", "s", nil, "Byte range to mark, as start:end or a single offset")
	rootCmd.AddCommand(dumpCmd)
}
