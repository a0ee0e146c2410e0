package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mimavm/mima/memory"
)

func newEncodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "encode NUMBER WIDTH",
		Short: "Print a number in binary, zero-padded to WIDTH digits.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			number, err := parseNumber(args[0], 64)
			if err != nil {
				return err
			}

			width, err := parseNumber(args[1], 16)
			if err != nil {
				return err
			}

			s, err := memory.EncodeFixedWidthBinary(number, uint(width))
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), s)

			return err
		},
	}
}
