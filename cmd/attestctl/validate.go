package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dalemusser/chapterhub/internal/app/documents/attest"
	"github.com/dalemusser/chapterhub/internal/app/documents/generator"
)

// errNotValid is returned when the service does not vouch for the document.
var errNotValid = errors.New("document not valid")

func validateCommand() *cobra.Command {
	var (
		base    string
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:     "validate <pdf|hash>",
		Aliases: []string{"verify"},
		Short:   "Check a signed artifact or hash against the validation endpoint",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger()
			defer func() { _ = log.Sync() }()

			hash := strings.ToLower(strings.TrimSpace(args[0]))
			if !attest.IsHash(hash) {
				b, err := readInput(cmd, args[0])
				if err != nil {
					return err
				}
				h, ok := attest.ExtractHash(b)
				if !ok {
					return errors.New("no attestation stamp found")
				}
				hash = h
			}
			log.Debug("validating", zap.String("hash", hash), zap.String("base", base))

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			v, err := fetchValidation(ctx, http.DefaultClient, base, hash)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(v); err != nil {
				return err
			}
			if !v.Verified || (v.ArtifactIntact != nil && !*v.ArtifactIntact) {
				return errNotValid
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&base, "base", attest.DefaultBaseURL, "service base URL")
	cmd.Flags().DurationVar(&timeout, "timeout", 15*time.Second, "request timeout")
	return cmd
}

func fetchValidation(ctx context.Context, client *http.Client, base, hash string) (generator.Validation, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, attest.ValidationURL(base, hash), nil)
	if err != nil {
		return generator.Validation{}, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return generator.Validation{}, fmt.Errorf("validate: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return generator.Validation{}, fmt.Errorf("%w: no signed document has hash %s", errNotValid, hash)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return generator.Validation{}, fmt.Errorf("validate: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var v generator.Validation
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		return generator.Validation{}, fmt.Errorf("decode validation: %w", err)
	}
	return v, nil
}
