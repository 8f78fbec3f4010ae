package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/felo/kindle-newsletter/internal/config"
	"github.com/felo/kindle-newsletter/internal/convert"
	"github.com/felo/kindle-newsletter/internal/journal"
	"github.com/felo/kindle-newsletter/internal/scanner"
)

var (
	flagFormat  string
	flagOutput  string
	flagVerbose bool
)

func main() {
	root := &cobra.Command{
		Use:   "kindle-newsletter",
		Short: "Convert email newsletters into Kindle-ready ebooks",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := zerolog.InfoLevel
			if flagVerbose {
				level = zerolog.DebugLevel
			}
			log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
				Level(level).With().Timestamp().Logger()
		},
	}
	root.PersistentFlags().StringVarP(&flagFormat, "format", "f", "", "output format: auto, epub or azw3")
	root.PersistentFlags().StringVarP(&flagOutput, "output", "o", "", "output directory")
	root.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(convertCmd(), batchCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func convertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "convert <file.eml>",
		Short: "Convert a single newsletter email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conv, jrnl, err := buildConverter()
			if err != nil {
				return err
			}
			defer closeJournal(jrnl)

			res := conv.ConvertFile(cmd.Context(), args[0])
			if res.Err != nil {
				return res.Err
			}
			fmt.Printf("wrote %s (%s)\n", res.OutputPath, res.Format)
			return nil
		},
	}
}

func batchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "batch <directory>",
		Short: "Convert every .eml file under a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := scanner.NewScanner(args[0]).Scan()
			if err != nil {
				return err
			}
			if len(files) == 0 {
				return fmt.Errorf("no .eml files found under %s", args[0])
			}

			conv, jrnl, err := buildConverter()
			if err != nil {
				return err
			}
			defer closeJournal(jrnl)

			summary := conv.ConvertBatch(cmd.Context(), files)
			fmt.Printf("converted %d of %d newsletters", summary.Succeeded, summary.Total)
			if summary.Failed > 0 {
				fmt.Printf(" (%d failed)", summary.Failed)
			}
			fmt.Println()
			return nil
		},
	}
}

func buildConverter() (*convert.Converter, *journal.Journal, error) {
	cfg := config.Load()
	if flagFormat != "" {
		cfg.FormatPreference = flagFormat
	}
	if flagOutput != "" {
		cfg.OutputDir = flagOutput
	}

	var jrnl *journal.Journal
	if err := os.MkdirAll(filepath.Dir(cfg.JournalPath), 0o755); err == nil {
		if j, err := journal.Open(cfg.JournalPath); err == nil {
			jrnl = j
		} else {
			log.Warn().Err(err).Msg("conversion journal unavailable")
		}
	}

	conv, err := convert.New(cfg, jrnl)
	if err != nil {
		closeJournal(jrnl)
		return nil, nil, err
	}
	return conv, jrnl, nil
}

func closeJournal(j *journal.Journal) {
	if j != nil {
		j.Close()
	}
}
