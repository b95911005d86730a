package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/cardscan/constants"
	"github.com/joseph-ayodele/cardscan/internal/async"
	"github.com/joseph-ayodele/cardscan/internal/core"
	coreasync "github.com/joseph-ayodele/cardscan/internal/core/async"
	"github.com/joseph-ayodele/cardscan/internal/ingest"
	"github.com/joseph-ayodele/cardscan/internal/services"
)

func newParseCmd(root *rootOptions) *cobra.Command {
	var persist bool
	cmd := &cobra.Command{
		Use:   "parse [file|-]",
		Short: "Parse already recognized card text with the offline heuristic",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				data []byte
				err  error
			)
			if len(args) == 0 || args[0] == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(args[0])
			}
			if err != nil {
				return err
			}
			svcs, err := root.build(cmd, services.Options{Database: persist})
			if err != nil {
				return err
			}
			defer svcs.Close()

			res, err := svcs.Processor.ParseText(cmd.Context(), string(data), persist)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), scanOutput(res))
		},
	}
	cmd.Flags().BoolVar(&persist, "persist", false, "store the result for review")
	return cmd
}

func newScanCmd(root *rootOptions) *cobra.Command {
	var (
		mode    string
		persist bool
	)
	cmd := &cobra.Command{
		Use:   "scan <image>",
		Short: "Scan a card photo (ai: two-stage provider pipeline, heuristic: local tesseract)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, ok := constants.ParseScanMethod(mode)
			if !ok {
				return fmt.Errorf("--mode must be ai or heuristic, got %q", mode)
			}
			svcs, err := root.build(cmd, services.Options{Database: persist, RequireAI: m == constants.MethodAI})
			if err != nil {
				return err
			}
			defer svcs.Close()

			res, err := svcs.Processor.ScanFile(cmd.Context(), args[0], m, persist)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), scanOutput(res))
		},
	}
	cmd.Flags().StringVar(&mode, "mode", "ai", "ai or heuristic")
	cmd.Flags().BoolVar(&persist, "persist", false, "store the result for review")
	return cmd
}

func newBatchCmd(root *rootOptions) *cobra.Command {
	var (
		dir, out, mode string
		workers        int
		timeout        time.Duration
		includeHidden  bool
	)
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Scan every card in a directory and export the results to XLSX",
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, ok := constants.ParseScanMethod(mode)
			if !ok {
				return fmt.Errorf("--mode must be ai or heuristic, got %q", mode)
			}
			if out == "" {
				out = filepath.Join(filepath.Dir(filepath.Clean(dir)), "contacts.xlsx")
			}
			files, stats, problems, err := ingest.CollectCardFiles(dir, nil, !includeHidden)
			if err != nil {
				return err
			}
			for _, p := range problems {
				cmd.PrintErrf("skipping %s: %v\n", p.Path, p.Err)
			}

			svcs, err := root.build(cmd, services.Options{Database: true, RequireAI: m == constants.MethodAI})
			if err != nil {
				return err
			}
			defer svcs.Close()
			logger := root.logger()
			logger.Info("batch.discovered", "dir", dir, "scanned", stats.Scanned, "matched", stats.Matched)

			var (
				mu        sync.Mutex
				failures  []string
				succeeded int
			)
			queue := coreasync.NewProcessorQueue(svcs.Processor, logger,
				coreasync.WithWorkers(workers),
				coreasync.WithQueueSize(workers*2),
				coreasync.WithProcessTimeout(timeout),
				coreasync.WithResultHandler(func(job async.Job, _ core.ScanResult, err error) {
					mu.Lock()
					defer mu.Unlock()
					if err != nil {
						failures = append(failures, fmt.Sprintf("%s: %v", job.Path, err))
						return
					}
					succeeded++
				}),
			)
			for _, f := range files {
				if err := queue.Enqueue(cmd.Context(), async.Job{Path: f, Mode: m, Persist: true, TraceID: uuid.NewString()}); err != nil {
					queue.Shutdown(context.Background())
					return err
				}
			}
			queue.Shutdown(context.Background())

			xlsx, err := svcs.Exporter.ExportContactsXLSX(cmd.Context(), "")
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, xlsx, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Batch processing complete!\n")
			fmt.Fprintf(w, "- Files found: %d\n", len(files))
			fmt.Fprintf(w, "- Cards extracted: %d\n", succeeded)
			fmt.Fprintf(w, "- Failures: %d\n", len(failures))
			for _, f := range failures {
				fmt.Fprintf(w, "  %s\n", f)
			}
			fmt.Fprintf(w, "- Output: %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "directory of card images and .txt transcriptions (required)")
	cmd.Flags().StringVar(&out, "out", "", "output XLSX path (default: contacts.xlsx next to --dir)")
	cmd.Flags().StringVar(&mode, "mode", "heuristic", "ai or heuristic for image files")
	cmd.Flags().IntVar(&workers, "workers", 4, "concurrent scans")
	cmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "per-card timeout")
	cmd.Flags().BoolVar(&includeHidden, "hidden", false, "include hidden files and directories")
	_ = cmd.MarkFlagRequired("dir")
	return cmd
}

func newExportCmd(root *rootOptions) *cobra.Command {
	var out, status string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export stored contacts from DB_URL to XLSX",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svcs, err := root.build(cmd, services.Options{Database: true})
			if err != nil {
				return err
			}
			defer svcs.Close()

			xlsx, err := svcs.Exporter.ExportContactsXLSX(cmd.Context(), constants.ScanStatus(status))
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, xlsx, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			cmd.Printf("wrote %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "contacts.xlsx", "output XLSX path")
	cmd.Flags().StringVar(&status, "status", "", "PENDING_REVIEW or CONFIRMED (default all)")
	return cmd
}

type scanJSON struct {
	ScanID      string `json:"scan_id,omitempty"`
	Method      string `json:"method"`
	RuleVersion string `json:"rule_version,omitempty"`
	Contact     any    `json:"contact"`
}

func scanOutput(r core.ScanResult) scanJSON {
	out := scanJSON{Method: string(r.Method), RuleVersion: r.RuleVersion, Contact: r.Contact}
	if r.RecordID != uuid.Nil {
		out.ScanID = r.RecordID.String()
	}
	return out
}
