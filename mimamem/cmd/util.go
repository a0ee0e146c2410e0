package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

// GetFlag gets an expected boolean flag, or exits if it is not defined.
func GetFlag(cmd *cobra.Command, flag string) bool {
	r, err := cmd.Flags().GetBool(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// GetString gets an expected string flag, or exits if it is not defined.
func GetString(cmd *cobra.Command, flag string) string {
	r, err := cmd.Flags().GetString(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// GetStringArray gets an expected string array flag, or exits if it is not
// defined.
func GetStringArray(cmd *cobra.Command, flag string) []string {
	r, err := cmd.Flags().GetStringArray(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// parseNumber accepts decimal numbers and numbers with a 0x, 0o, or 0b
// prefix.
func parseNumber(s string, bitSize int) (uint64, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 0, bitSize)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", s)
	}

	return n, nil
}

// A poke sets one word before the memory is used.
type poke struct {
	address uint32
	value   uint32
}

// parsePoke parses an "address=value" pair.
func parsePoke(s string) (poke, error) {
	addressStr, valueStr, ok := strings.Cut(s, "=")
	if !ok {
		return poke{}, fmt.Errorf("invalid word %q, expected address=value", s)
	}

	address, err := parseNumber(addressStr, 32)
	if err != nil {
		return poke{}, err
	}

	value, err := parseNumber(valueStr, 32)
	if err != nil {
		return poke{}, err
	}

	return poke{address: uint32(address), value: uint32(value)}, nil
}
