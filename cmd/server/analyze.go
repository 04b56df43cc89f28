package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/dreamtracer/dreamtracer-api/internal/analysis"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type analyzeOptions struct {
	text       string
	culture    string
	preference string
	format     string
	concurrent bool
}

func analyzeCmd() *cobra.Command {
	var opts analyzeOptions
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze a dream offline and print the report",
		Long: "Runs the analysis pipeline on --text, or on stdin when --text is empty.\n" +
			"No database or network access is needed.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			text := opts.text
			if text == "" {
				raw, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("failed to read dream text: %w", err)
				}
				text = string(raw)
			}
			return runAnalyze(cmd, text, opts)
		},
	}
	cmd.Flags().StringVar(&opts.text, "text", "", "dream text to analyze")
	cmd.Flags().StringVar(&opts.culture, "culture", string(analysis.CultureKorean), "cultural background: korean, western or eastern")
	cmd.Flags().StringVar(&opts.preference, "preference", string(analysis.PreferenceBalanced), "analysis style: balanced, psychological or practical")
	cmd.Flags().StringVar(&opts.format, "format", "json", "output format: json or yaml")
	cmd.Flags().BoolVar(&opts.concurrent, "concurrent", false, "run analyzers in parallel")
	return cmd
}

func runAnalyze(cmd *cobra.Command, text string, opts analyzeOptions) error {
	text = strings.TrimSpace(text)
	if opts.format != "json" && opts.format != "yaml" {
		return fmt.Errorf("unsupported format %q", opts.format)
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	system := analysis.NewSystem(analysis.WithLogger(log), analysis.WithConcurrency(opts.concurrent))
	report := system.AnalyzeDream(cmd.Context(), text, analysis.UserProfile{
		CulturalBackground: analysis.ParseCulture(opts.culture),
		Preferences:        analysis.Preferences{PreferredAnalysisType: analysis.ParsePreference(opts.preference)},
	})
	return writeReport(cmd.OutOrStdout(), report, opts.format)
}

// writeReport prints report as indented JSON or as YAML with the JSON field
// names.
func writeReport(w io.Writer, report *analysis.Report, format string) error {
	raw, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if format == "json" {
		_, err = fmt.Fprintln(w, string(raw))
		return err
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return enc.Close()
}
