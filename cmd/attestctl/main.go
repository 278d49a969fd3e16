// Command attestctl inspects signed minutes offline and against a running
// service: it hashes canonical forms, reads the hash stamped on a PDF,
// checks it with the public validation endpoint, and issues API tokens.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const programName = "attestctl"

var globalFlags = struct {
	debug bool
}{}

func newLogger() *zap.Logger {
	if !globalFlags.debug {
		return zap.NewNop()
	}
	l, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return l
}

// readInput reads a file argument, or stdin when it is "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return b, nil
}

func rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           programName,
		Short:         "Inspect and validate signed chapter documents",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVarP(&globalFlags.debug, "debug", "D", false, "enable debug logging")

	root.AddCommand(hashCommand())
	root.AddCommand(canonicalCommand())
	root.AddCommand(extractCommand())
	root.AddCommand(validateCommand())
	root.AddCommand(tokenCommand())
	return root
}

func main() {
	if err := rootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", programName, err)
		os.Exit(1)
	}
}
