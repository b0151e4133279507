package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"objbrowse/internal/ranges"
)

const defaultServer = "http://localhost:8000"

// ObjbrowseConfig represents configuration for the objbrowse tool
type ObjbrowseConfig struct {
	Server         string `json:"server" jsonschema:"title=Server,description=Base URL of the disassembly backend,default=http://localhost:8000"`
	TimeoutSeconds int    `json:"timeoutSeconds" jsonschema:"title=Timeout,description=Seconds to wait for one disassembly request (0 disables),minimum=0,default=30"`
	Debug          bool   `json:"debug" jsonschema:"title=Debug,description=Enable debug logging"`
	NoColor        bool   `json:"noColor" jsonschema:"title=No Color,description=Disable syntax colouring of operands"`
}

func defaultConfig() ObjbrowseConfig {
	return ObjbrowseConfig{
		Server:         defaultServer,
		TimeoutSeconds: 30,
	}
}

// Timeout returns the request timeout, zero meaning none.
func (c ObjbrowseConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// loadConfig layers the config file, the environment and command line
// flags over the defaults, in that order.
func loadConfig(cmd *cobra.Command) (ObjbrowseConfig, error) {
	cfg := defaultConfig()

	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = os.Getenv("OBJBROWSE_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := json.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if v := os.Getenv("OBJBROWSE_SERVER"); v != "" {
		cfg.Server = v
	}
	if os.Getenv("OBJBROWSE_NO_COLOR") != "" {
		cfg.NoColor = true
	}

	flags := cmd.Flags()
	if flags.Changed("server") {
		cfg.Server, _ = flags.GetString("server")
	}
	if flags.Changed("timeout") {
		d, _ := flags.GetDuration("timeout")
		cfg.TimeoutSeconds = int(d / time.Second)
	}
	if flags.Changed("debug") {
		cfg.Debug, _ = flags.GetBool("debug")
	}

	if cfg.Server == "" {
		return cfg, fmt.Errorf("no server configured")
	}
	if cfg.TimeoutSeconds < 0 {
		return cfg, fmt.Errorf("negative timeout %d", cfg.TimeoutSeconds)
	}
	return cfg, nil
}

// parseSymbolID parses a symbol id argument.
func parseSymbolID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id < 0 {
		return 0, fmt.Errorf("invalid symbol id %q", s)
	}
	return id, nil
}

// parseRanges parses "start:end" or "offset" arguments. Numbers may be decimal
// or 0x-prefixed hex.
func parseRanges(args []string) (ranges.Set, error) {
	var rs []ranges.Range
	for _, arg := range args {
		startText, endText, isRange := strings.Cut(arg, ":")
		start, err := strconv.ParseInt(startText, 0, 0)
		if err != nil || start < 0 {
			return ranges.Set{}, fmt.Errorf("invalid range %q", arg)
		}
		end := start + 1
		if isRange {
			if end, err = strconv.ParseInt(endText, 0, 0); err != nil || end < start {
				return ranges.Set{}, fmt.Errorf("invalid range %q", arg)
			}
		}
		rs = append(rs, ranges.Range{Start: int(start), End: int(end)})
	}
	return ranges.New(rs...), nil
}
