package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/newthinker/tradevision/internal/analysis"
	"github.com/newthinker/tradevision/internal/client"
	"github.com/newthinker/tradevision/internal/intake"
	"github.com/newthinker/tradevision/internal/report"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	serverURL  string
	outPath    string
	jsonOutput bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <screenshot>",
	Short: "Analyze a chart screenshot",
	Long: `Analyze reads a PNG or JPEG chart screenshot and prints the model's verdict.
With --server the image is sent to a running TradeVision server, otherwise the
configured provider is called directly.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&serverURL, "server", "", "TradeVision server URL (e.g. http://localhost:8080)")
	analyzeCmd.Flags().StringVarP(&outPath, "out", "o", "", "write the JSON export to this file or directory")
	analyzeCmd.Flags().BoolVar(&jsonOutput, "json", false, "print raw JSON instead of the result card")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	level := "warn"
	if debug {
		level = "debug"
	}
	log := newLogger(cfg, level)
	defer log.Sync()

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading screenshot: %w", err)
	}

	in := intake.New(func(sel *intake.Selection) {
		if sel != nil {
			log.Debug("screenshot accepted",
				zap.String("file", sel.File.Name),
				zap.String("mime_type", sel.File.MimeType),
				zap.Int("bytes", len(sel.File.Data)),
			)
		}
	})
	sel, err := in.Select(intake.File{Name: filepath.Base(args[0]), Data: data})
	if err != nil {
		return err
	}
	defer in.Clear()

	mimeType, payload, err := intake.SplitDataURL(sel.Preview)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var out json.RawMessage
	if serverURL != "" {
		out, err = client.New(serverURL).Analyze(ctx, payload, mimeType)
	} else {
		var analyzer *analysis.Analyzer
		analyzer, err = newAnalyzer(cfg, log, nil)
		if err != nil {
			return err
		}
		out, err = analyzer.Analyze(ctx, analysis.Request{Image: payload, MimeType: mimeType})
	}
	if err != nil {
		return err
	}

	res := report.Decode(out)
	stdout := cmd.OutOrStdout()
	if jsonOutput {
		fmt.Fprintln(stdout, report.RawJSON(res))
	} else {
		fmt.Fprintln(stdout, report.RenderTerminal(report.NewView(res)))
	}

	if outPath != "" {
		filename, export := report.Export(res, time.Now())
		path := exportPath(outPath, filename)
		if err := os.WriteFile(path, export, 0o644); err != nil {
			return fmt.Errorf("writing export: %w", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "saved %s\n", path)
	}

	return nil
}

// exportPath resolves --out: a directory receives the generated file name.
func exportPath(out, filename string) string {
	if strings.HasSuffix(out, string(os.PathSeparator)) {
		return filepath.Join(out, filename)
	}
	if info, err := os.Stat(out); err == nil && info.IsDir() {
		return filepath.Join(out, filename)
	}
	return out
}
