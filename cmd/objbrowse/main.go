// Command objbrowse browses the disassembly served by an object browsing
// backend in the terminal.
package main

import (
	"log/slog"
	"net/http"
	"os"

	_ "net/http/pprof" // profiling

	"objbrowse/internal/objbrowse/cmd"
	"objbrowse/internal/objbrowse/log"
)

// OBJBROWSE_PROFILE=1 serves pprof on the default address; any other value
// is taken as the listen address.
const defaultProfileAddr = "localhost:6060"

func main() {
	defer log.RecoverPanic("main", func() {
		slog.Error("objbrowse terminated due to unhandled panic")
		os.Exit(2)
	})

	if addr := os.Getenv("OBJBROWSE_PROFILE"); addr != "" {
		if addr == "1" {
			addr = defaultProfileAddr
		}
		go func() {
			slog.Info("Serving pprof", "addr", addr)
			if err := http.ListenAndServe(addr, nil); err != nil {
				slog.Error("pprof listener stopped", "addr", addr, "error", err)
			}
		}()
	}

	cmd.Execute()
}
