package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/cardscan/internal/common"
	"github.com/joseph-ayodele/cardscan/internal/services"
)

type rootOptions struct {
	inmem   bool
	verbose bool
	log     *slog.Logger
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "cardscan",
		Short:         "Extract contact details from business cards",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().BoolVar(&opts.inmem, "inmem", false, "use an in-memory SQLite database instead of DB_URL")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")

	cmd.AddCommand(
		newParseCmd(opts),
		newScanCmd(opts),
		newBatchCmd(opts),
		newExportCmd(opts),
	)
	return cmd
}

// logger writes JSON logs to stderr so stdout stays machine readable.
func (o *rootOptions) logger() *slog.Logger {
	if o.log != nil {
		return o.log
	}
	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	l := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(l)
	o.log = l
	return l
}

func (o *rootOptions) build(cmd *cobra.Command, opts services.Options) (*services.Services, error) {
	cfg := common.LoadConfig()
	if o.inmem {
		cfg.Database.InMemory = true
	}
	if opts.Database && cfg.Database.DSN == "" {
		cfg.Database.InMemory = true
	}
	return services.Build(cmd.Context(), cfg, opts, o.logger())
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
