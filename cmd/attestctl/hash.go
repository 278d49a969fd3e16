package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dalemusser/chapterhub/internal/app/documents/attest"
)

func hashCommand() *cobra.Command {
	var expect string
	cmd := &cobra.Command{
		Use:   "hash <canonical-file|->",
		Short: "Print the content hash of a canonical form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			if expect != "" {
				if !attest.Verify(b, expect) {
					return fmt.Errorf("hash mismatch: got %s", attest.Hash(b))
				}
				fmt.Fprintln(cmd.OutOrStdout(), "ok")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), attest.Hash(b))
			return nil
		},
	}
	cmd.Flags().StringVar(&expect, "expect", "", "fail unless the form hashes to this value")
	return cmd
}

func canonicalCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "canonical <canonical-file|->",
		Short: "Decode a canonical form and print it indented",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			c, err := attest.ParseCanonical(b)
			if err != nil {
				return err
			}
			if c.Version == 0 {
				return errors.New("not a canonical form: missing version")
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetEscapeHTML(false)
			enc.SetIndent("", "  ")
			return enc.Encode(c)
		},
	}
}

func extractCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "extract <pdf|->",
		Short: "Print the hash stamped on a signed artifact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			h, ok := attest.ExtractHash(b)
			if !ok {
				return errors.New("no attestation stamp found")
			}
			fmt.Fprintln(cmd.OutOrStdout(), h)
			return nil
		},
	}
}
