// Package cmd provides the command-line interface of mimamem.
package cmd

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

const defaultEnvFile = ".env"

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "mimamem",
		Short: "Inspect and serve the main memory of a MIMA machine.",
		Long: `mimamem builds a MIMA main memory (2^20 words of 24 bits), ` +
			`optionally preloads it from a dump file, and prints or serves it.`,
		SilenceUsage:      true,
		PersistentPreRunE: setUp,
	}

	rootCmd.PersistentFlags().BoolP("verbose", "v", false,
		"increase logging verbosity and trace every memory access")
	rootCmd.PersistentFlags().String("env-file", defaultEnvFile,
		"file to load environment variables from")

	rootCmd.AddCommand(newDumpCmd(), newEncodeCmd(), newServeCmd())

	return rootCmd
}

func setUp(cmd *cobra.Command, _ []string) error {
	if GetFlag(cmd, "verbose") {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.InfoLevel)
	}

	envFile := GetString(cmd, "env-file")

	err := godotenv.Load(envFile)
	if errors.Is(err, fs.ErrNotExist) &&
		!cmd.Flags().Changed("env-file") {
		return nil
	}

	if err != nil {
		return err
	}

	log.Debugf("loaded environment from %s", envFile)

	return nil
}

// Execute runs the command line. It exits the process on failure, after
// running the registered exit handlers.
func Execute() {
	err := newRootCmd().Execute()
	if err != nil {
		atexit.Exit(1)
	}
}
