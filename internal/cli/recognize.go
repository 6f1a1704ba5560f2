package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/cobra"

	"github.com/mokayaj857/vireya/internal/services"
	"github.com/mokayaj857/vireya/internal/upload"
)

func recognizeCmd(e *env) *cobra.Command {
	var (
		fields   []string
		maxBytes int64
	)
	cmd := &cobra.Command{
		Use:   "recognize <image>",
		Short: "Identify a drug from a photo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			extra, err := parseFields(fields)
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			f := upload.File{
				Name:        filepath.Base(args[0]),
				ContentType: mimetype.Detect(data).String(),
				Data:        data,
			}
			if _, err := upload.Validate(f, maxBytes); err != nil {
				return fmt.Errorf("%s: %w", f.Name, err)
			}

			c, err := e.client()
			if err != nil {
				return err
			}
			r := &services.DrugRecognizer{API: c, Extra: extra}
			res, err := r.Recognize(cmd.Context(), f)
			if err != nil {
				return describeError(err)
			}
			if !e.pretty() {
				return printValue(cmd.OutOrStdout(), res, false)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Drug:       %s\n", res.DrugName)
			if p := res.ConfidencePercent(); p != "" {
				fmt.Fprintf(out, "Confidence: %s\n", p)
			}
			if res.Description != "" {
				fmt.Fprintf(out, "About:      %s\n", res.Description)
			}
			if res.Dosage != "" {
				fmt.Fprintf(out, "Dosage:     %s\n", res.Dosage)
			}
			for _, w := range res.Warnings {
				fmt.Fprintf(out, "Warning:    %s\n", w)
			}
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&fields, "field", nil, "extra form field as key=value (repeatable)")
	cmd.Flags().Int64Var(&maxBytes, "max-bytes", upload.DefaultMaxBytes, "largest accepted image")
	return cmd
}

func parseFields(kvs []string) (map[string]string, error) {
	if len(kvs) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(kvs))
	for _, kv := range kvs {
		k, v, ok := strings.Cut(kv, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("bad --field %q, want key=value", kv)
		}
		out[k] = v
	}
	return out, nil
}
