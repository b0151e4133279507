package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"objbrowse/internal/logging"
)

var serveCmd = &cobra.Command{
	Use:   "serve [dir]",
	Short: "Serve prepared disassembly payloads",
	Long: `Serve DIR/<id>.json at /sym/<id>/asm so the panel can be used without a
disassembly backend. The files are served as they are.`,
	Example: `
# Serve fixtures on the default address
objbrowse serve ./testdata

# In another terminal
objbrowse --server http://localhost:8000 7
  `,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := args[0]
		if fi, err := os.Stat(dir); err != nil {
			return fmt.Errorf("cannot access %s: %w", dir, err)
		} else if !fi.IsDir() {
			return fmt.Errorf("%s is not a directory", dir)
		}
		addr, _ := cmd.Flags().GetString("addr")

		logger := logging.NewLogger()
		defer logger.Close()

		srv := &http.Server{
			Addr:              addr,
			Handler:           fixtureHandler(dir, logger.Logger),
			ReadHeaderTimeout: 10 * time.Second,
		}
		return serve(cmd.Context(), srv, logger.Logger)
	},
}

// fixtureHandler serves dir/<id>.json for GET /sym/<id>/asm.
func fixtureHandler(dir string, logger *log.Logger) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /sym/{id}/asm", func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(r.PathValue("id"))
		if err != nil || id < 0 {
			http.Error(w, "bad symbol id", http.StatusBadRequest)
			return
		}
		path := filepath.Join(dir, strconv.Itoa(id)+".json")
		data, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			http.NotFound(w, r)
			return
		}
		if err != nil {
			logger.Error("read fixture", "path", path, "err", err)
			http.Error(w, "cannot read fixture", http.StatusInternalServerError)
			return
		}
		logger.Debug("serving", "id", id, "bytes", len(data))
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	})
	return mux
}

// serve runs srv until ctx is done.
func serve(ctx context.Context, srv *http.Server, logger *log.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}
	errc := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", srv.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func init() {
	serveCmd.Flags().String("addr", "localhost:8000", "Listen address")
	rootCmd.AddCommand(serveCmd)
}
