package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/JimCorrell/ScribeStack/internal/book"
	"github.com/JimCorrell/ScribeStack/internal/config"
	"github.com/JimCorrell/ScribeStack/internal/epub"
	"github.com/JimCorrell/ScribeStack/internal/health"
	"github.com/JimCorrell/ScribeStack/internal/logging"
	"github.com/JimCorrell/ScribeStack/internal/packaging"
	"github.com/JimCorrell/ScribeStack/internal/parser"
	"github.com/JimCorrell/ScribeStack/internal/pipeline"
	"github.com/JimCorrell/ScribeStack/internal/storage"
	"github.com/JimCorrell/ScribeStack/pkg/types"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const version = "0.3.0"

// app holds what every subcommand needs once config is loaded
type app struct {
	cfg    *types.Config
	logger *zap.Logger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", describe(err))
		os.Exit(1)
	}
}

// describe renders an error for the terminal, dropping the package prefix
// from extraction sentinels
func describe(err error) string {
	msg := err.Error()
	if errors.Is(err, epub.ErrNoChapters) || errors.Is(err, epub.ErrInvalidContainer) {
		return strings.TrimPrefix(msg, "epub: ")
	}
	return msg
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		envFile    string
		logLevel   string
	)
	a := &app{}

	root := &cobra.Command{
		Use:           "scribestack",
		Short:         "Extract plain-text chapters from EPUB books",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := loadEnv(envFile); err != nil {
				return err
			}
			cfg, err := config.LoadOrDefault(configPath)
			if err != nil {
				return err
			}
			if logLevel != "" {
				cfg.Logging.Level = logLevel
			}
			logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
			if err != nil {
				return err
			}
			a.cfg, a.logger = cfg, logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "config/scribestack.yaml", "Path to configuration file")
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Environment file loaded before the configuration")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override the configured log level")

	root.AddCommand(newExtractCmd(a), newChaptersCmd(a), newInspectCmd(a), newExportCmd(a), newCheckCmd(a))
	return root
}

// loadEnv loads name when it exists; a missing file is not an error
func loadEnv(name string) error {
	if name == "" {
		return nil
	}
	if _, err := os.Stat(name); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if err := godotenv.Load(name); err != nil {
		return fmt.Errorf("failed to load %s: %w", name, err)
	}
	return nil
}

func (a *app) repository() (book.Repository, storage.Adapter, error) {
	adapter, err := storage.NewAdapter(a.cfg.Storage, a.logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create storage adapter: %w", err)
	}
	return book.NewRepository(adapter), adapter, nil
}

// parserFor picks the parser for a book file by its extension
func (a *app) parserFor(name string) (*parser.EPUBParser, error) {
	factory, err := parser.NewFactory(a.cfg.Extraction, a.logger.Named("epub"))
	if err != nil {
		return nil, err
	}
	p, err := factory.ForFile(name)
	if err != nil {
		return nil, err
	}
	ep, ok := p.(*parser.EPUBParser)
	if !ok {
		return nil, fmt.Errorf("no extractor for %s", name)
	}
	return ep, nil
}

func newExtractCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "extract <epub> <book_id>",
		Short: "Extract chapters and write them to storage",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			epubPath, bookID := args[0], args[1]

			p, err := a.parserFor(epubPath)
			if err != nil {
				return err
			}
			repo, adapter, err := a.repository()
			if err != nil {
				return err
			}
			defer adapter.Close()

			a.logger.Info("starting extraction",
				zap.String("version", version),
				zap.String("source", epubPath),
				zap.String("book_id", bookID),
				zap.String("storage", a.cfg.Storage.Adapter),
			)

			orch := pipeline.NewOrchestrator(p, repo, a.logger)
			manifest, err := orch.ExtractFile(cmd.Context(), epubPath, bookID, func(s *pipeline.PipelineStatus) {
				for _, st := range s.Stages {
					if st.Status == "completed" || st.Status == "failed" {
						a.logger.Debug("stage", zap.String("stage", st.Stage), zap.String("status", st.Status), zap.String("message", st.Message))
					}
				}
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %d chapters (strategy %s, tier %s)\n",
				manifest.BookID, len(manifest.Chapters), manifest.Strategy, manifest.Tier)
			for _, ch := range manifest.Chapters {
				fmt.Fprintf(out, "  %s  %s\n", ch.Path, ch.Title)
			}
			return nil
		},
	}
}

func newChaptersCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "chapters <book_id>",
		Short: "List the chapter numbers stored for a book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, adapter, err := a.repository()
			if err != nil {
				return err
			}
			defer adapter.Close()

			numbers, err := repo.ListChapterNumbers(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			for _, n := range numbers {
				fmt.Fprintln(cmd.OutOrStdout(), n)
			}
			return nil
		},
	}
}

func newInspectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <epub>",
		Short: "Show how each document would be classified, without writing anything",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}
			p, err := a.parserFor(args[0])
			if err != nil {
				return err
			}

			ext, err := p.Extract(cmd.Context(), data)
			if ext != nil && ext.Result != nil {
				printReport(cmd.OutOrStdout(), ext)
			}
			return err
		},
	}
}

func newExportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export <book_id> <out.zip>",
		Short: "Bundle a book's stored chapters and manifest into a ZIP archive",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, adapter, err := a.repository()
			if err != nil {
				return err
			}
			defer adapter.Close()

			pkg, err := packaging.NewService(repo).PackageBook(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			f, err := os.Create(args[1])
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", args[1], err)
			}
			if _, err := io.Copy(f, pkg); err != nil {
				f.Close()
				return fmt.Errorf("failed to write %s: %w", args[1], err)
			}
			if err := f.Close(); err != nil {
				return err
			}
			a.logger.Info("exported book", zap.String("book_id", args[0]), zap.String("path", args[1]))
			return nil
		},
	}
}

func newCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify configuration and storage access",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			checker := health.NewChecker(version)
			checker.Register("extraction", func(ctx context.Context) (health.Status, error) {
				if _, err := a.parserFor("probe.epub"); err != nil {
					return health.StatusUnhealthy, err
				}
				return health.StatusHealthy, nil
			})

			adapter, err := storage.NewAdapter(a.cfg.Storage, a.logger)
			if err != nil {
				checker.Register("storage", func(context.Context) (health.Status, error) {
					return health.StatusUnhealthy, err
				})
			} else {
				defer adapter.Close()
				checker.Register("storage", health.StorageCheck(adapter, ".scribestack-check"))
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()
			report := checker.Run(ctx)

			out := cmd.OutOrStdout()
			for _, c := range report.Checks {
				if c.Error != "" {
					fmt.Fprintf(out, "%-12s %s: %s\n", c.Name, c.Status, c.Error)
				} else {
					fmt.Fprintf(out, "%-12s %s\n", c.Name, c.Status)
				}
			}
			if report.Status == health.StatusUnhealthy {
				return fmt.Errorf("checks failed")
			}
			return nil
		},
	}
}

// printReport writes the candidate verdicts and the numbered outcome
func printReport(w io.Writer, ext *parser.Extraction) {
	res := ext.Result
	fmt.Fprintf(w, "EPUB %s, toc %q, %d documents\n", ext.Version, ext.TOCSource, res.Documents)
	fmt.Fprintf(w, "strategy: %s  tier: %s\n\n", orNone(res.Strategy), orNone(res.Tier))

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SOURCE\tTITLE\tWORDS\tCONTENT\tREASON")
	for _, s := range res.Scored {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%t\t%s\n", s.Source, s.Candidate.Title, s.Verdict.Words, s.Verdict.Content, s.Verdict.Reason)
	}
	tw.Flush()

	fmt.Fprintln(w)
	for _, ch := range ext.Chapters {
		fmt.Fprintf(w, "%3d  %s  (%s, %d words)\n", ch.Number, ch.Title, ch.SourceName, ch.Words)
	}
	for _, s := range ext.Skipped {
		fmt.Fprintf(w, "  -  %s  (%s, %d chars, too short)\n", s.Title, s.SourceName, s.Chars)
	}
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
