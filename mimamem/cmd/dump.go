package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mimavm/mima/memory"
)

func newDumpCmd() *cobra.Command {
	dumpCmd := &cobra.Command{
		Use:   "dump",
		Short: "Print the content of the memory.",
		Long: "Print the memory as lines of `<address> : <value>` in binary. " +
			"Without --start and --end, all 2^20 words are printed.",
		Args: cobra.NoArgs,
		RunE: runDump,
	}

	addMemoryFlags(dumpCmd)
	dumpCmd.Flags().Bool("reverse", false,
		"print the whole memory from the highest address down")
	dumpCmd.Flags().String("start", "", "first address of the range to print")
	dumpCmd.Flags().String("end", "", "address after the range to print")
	dumpCmd.Flags().StringP("output", "o", "",
		"write the dump to this file instead of stdout")

	return dumpCmd
}

func runDump(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	mem, cleanup, err := buildMemory(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	out := cmd.OutOrStdout()
	toFile := GetString(cmd, "output") != ""

	if toFile {
		f, err := os.Create(GetString(cmd, "output"))
		if err != nil {
			return err
		}
		defer f.Close()

		out = f
	}

	text, err := formatDump(cmd, mem, out)
	if err != nil {
		return err
	}

	if !toFile && text != "" {
		text += "\n"
	}

	_, err = io.WriteString(out, text)

	return err
}

func formatDump(
	cmd *cobra.Command,
	mem *memory.Memory,
	out io.Writer,
) (string, error) {
	hasStart := cmd.Flags().Changed("start")
	hasEnd := cmd.Flags().Changed("end")

	if hasStart != hasEnd {
		return "", errors.New("--start and --end must be given together")
	}

	if !hasStart {
		if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			log.Warnf("printing all %d words to the terminal",
				memory.AddressSpaceSize)
		}

		return mem.FormatAll(GetFlag(cmd, "reverse")), nil
	}

	if GetFlag(cmd, "reverse") {
		return "", errors.New("--reverse cannot be combined with a range")
	}

	start, err := parseNumber(GetString(cmd, "start"), 32)
	if err != nil {
		return "", fmt.Errorf("--start: %w", err)
	}

	end, err := parseNumber(GetString(cmd, "end"), 32)
	if err != nil {
		return "", fmt.Errorf("--end: %w", err)
	}

	return mem.FormatRange(uint32(start), uint32(end))
}
