package cmd

import (
	"fmt"
	"os"

	"github.com/nxadm/tail"
	"github.com/spf13/cobra"

	"objbrowse/internal/logging"
)

var logsCmd = &cobra.Command{
	Use:   "logs [file]",
	Short: "Show the debug log",
	Long: `Print the most recent debug log written with OBJBROWSE_LOG_TO_FILE=1,
or the given file. With --follow, keep printing lines as they are written.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		follow, _ := cmd.Flags().GetBool("follow")

		var path string
		if len(args) == 1 {
			path = args[0]
		} else {
			latest, err := logging.LatestLogFile(os.Getenv("OBJBROWSE_LOG_DIR"))
			if err != nil {
				return err
			}
			path = latest
		}

		t, err := tail.TailFile(path, tail.Config{
			Follow:    follow,
			ReOpen:    follow,
			MustExist: true,
			Logger:    tail.DiscardingLogger,
		})
		if err != nil {
			return fmt.Errorf("open log: %w", err)
		}
		defer t.Cleanup()

		out := cmd.OutOrStdout()
		var done <-chan struct{}
		if ctx := cmd.Context(); ctx != nil {
			done = ctx.Done()
		}
		for {
			select {
			case line, ok := <-t.Lines:
				if !ok {
					return t.Err()
				}
				if line.Err != nil {
					return line.Err
				}
				fmt.Fprintln(out, line.Text)
			case <-done:
				return t.Stop()
			}
		}
	},
}

func init() {
	logsCmd.Flags().BoolP("follow", "f", false, "Keep printing new lines")
	rootCmd.AddCommand(logsCmd)
}
