package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

// Environment variables that configure mimamem. Command-line flags take
// precedence over them.
const (
	envImage       = "MIMA_IMAGE"
	envTraceDB     = "MIMA_TRACE_DB"
	envMonitorPort = "MIMA_MONITOR_PORT"
)

type config struct {
	image       string
	traceDB     string
	monitorPort int
	pokes       []poke
}

func addMemoryFlags(cmd *cobra.Command) {
	cmd.Flags().String("image", "",
		"dump file to preload the memory from (env "+envImage+")")
	cmd.Flags().String("trace-db", "",
		"record every memory access into this SQLite database (env "+
			envTraceDB+")")
	cmd.Flags().StringArray("set", nil,
		"set a word before use, as address=value (repeatable)")
}

func loadConfig(cmd *cobra.Command) (*config, error) {
	cfg := &config{
		image:   os.Getenv(envImage),
		traceDB: os.Getenv(envTraceDB),
	}

	if port := os.Getenv(envMonitorPort); port != "" {
		n, err := strconv.Atoi(port)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q", envMonitorPort, port)
		}

		cfg.monitorPort = n
	}

	if cmd.Flags().Changed("image") {
		cfg.image = GetString(cmd, "image")
	}

	if cmd.Flags().Changed("trace-db") {
		cfg.traceDB = GetString(cmd, "trace-db")
	}

	if cmd.Flags().Lookup("port") != nil && cmd.Flags().Changed("port") {
		port, err := cmd.Flags().GetInt("port")
		if err != nil {
			return nil, err
		}

		cfg.monitorPort = port
	}

	for _, s := range GetStringArray(cmd, "set") {
		p, err := parsePoke(s)
		if err != nil {
			return nil, err
		}

		cfg.pokes = append(cfg.pokes, p)
	}

	return cfg, nil
}
