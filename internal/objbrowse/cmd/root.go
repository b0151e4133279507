package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"objbrowse/internal/asmview"
	"objbrowse/internal/fetch"
	"objbrowse/internal/logging"
	obslog "objbrowse/internal/objbrowse/log"
	"objbrowse/internal/selection"
)

func init() {
	rootCmd.PersistentFlags().StringP("server", "S", defaultServer, "Base URL of the disassembly backend")
	rootCmd.PersistentFlags().Duration("timeout", 0, "Timeout for one disassembly request (default 30s)")
	rootCmd.PersistentFlags().String("config", "", "Path to a JSON config file (see 'objbrowse schema')")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "Debug")

	rootCmd.Flags().BoolP("help", "h", false, "Help")
	rootCmd.Flags().BoolP("no-tui", "n", false, "Print rows without the TUI")
	rootCmd.Flags().StringArrayP("select", "s", nil, "Initial byte range to select, as start:end or a single offset")
}

var rootCmd = &cobra.Command{
	Use:   "objbrowse [symbol-id]",
	Short: "Terminal assembly browser",
	Long: `Objbrowse shows the disassembly of a symbol served by an object browsing
backend and lets you follow symbol references between functions.`,
	Example: `
# Browse symbol 7 from the default server
objbrowse 7

# Browse a remote backend, selecting byte offset 0x20
objbrowse --server http://build-host:8000 7 --select 0x20
  `,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		debug, _ := cmd.Flags().GetBool("debug")
		obslog.Setup(os.Stderr, debug)
		return nil
	},
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
		sel := selection.Selection{Entity: selection.Symbol(id), Ranges: rs}

		noTUI, _ := cmd.Flags().GetBool("no-tui")
		if !term.IsTerminal(os.Stdout.Fd()) {
			noTUI = true
		}
		if noTUI || cfg.NoColor {
			os.Setenv("OBJBROWSE_NO_COLOR", "1")
		}
		if noTUI {
			return runDump(cmd.Context(), cfg, sel, cmd.OutOrStdout())
		}
		return runTUI(cmd.Context(), cfg, sel)
	},
}

func runTUI(ctx context.Context, cfg ObjbrowseConfig, sel selection.Selection) error {
	if ctx == nil {
		ctx = context.Background()
	}

	// The TUI owns the terminal, so diagnostics go to a file unless the
	// user chose otherwise.
	if os.Getenv("OBJBROWSE_LOG_TO_FILE") == "" {
		os.Setenv("OBJBROWSE_LOG_TO_FILE", "1")
	}
	if cfg.Debug && os.Getenv("OBJBROWSE_LOG_LEVEL") == "" {
		os.Setenv("OBJBROWSE_LOG_LEVEL", "debug")
	}
	logger := logging.NewLogger()
	defer logger.Close()

	client := &http.Client{Timeout: cfg.Timeout()}
	res := fetch.New(ctx, asmview.FetchBatch(client, cfg.Server), fetch.WithLogger(logger.Logger))
	asm := asmview.New(res, logger.Logger)

	program := tea.NewProgram(
		newAppModel(asm, sel),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	if _, err := program.Run(); err != nil {
		slog.Error("TUI run error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

func Execute() {
	// Bypass fang's styled output when stdout is piped.
	if !term.IsTerminal(os.Stdout.Fd()) {
		if err := rootCmd.Execute(); err != nil {
			os.Exit(1)
		}
		return
	}

	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(1)
	}
}
