package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/browser"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mimavm/mima/monitoring"
)

func newServeCmd() *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the memory over HTTP until interrupted.",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}

	addMemoryFlags(serveCmd)
	serveCmd.Flags().Int("port", 0,
		"port of the monitoring server, random if unset (env "+
			envMonitorPort+")")
	serveCmd.Flags().Bool("open", false, "open the server in a browser")

	return serveCmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	mem, cleanup, err := buildMemory(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	monitor := monitoring.NewMonitor().WithPortNumber(cfg.monitorPort)
	monitor.RegisterMemory(mainMemoryName, mem)

	url := monitor.StartServer()

	if GetFlag(cmd, "open") {
		err := browser.OpenURL(url)
		if err != nil {
			log.Warnf("cannot open browser: %v", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	log.Info("shutting down")

	return nil
}
