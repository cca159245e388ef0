// Package main provides the CLI entrypoint for fasttype.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/fasttype/internal/config"
	"github.com/verte-zerg/fasttype/internal/generator"
	"github.com/verte-zerg/fasttype/internal/historyui"
	"github.com/verte-zerg/fasttype/internal/logging"
	"github.com/verte-zerg/fasttype/internal/model"
	"github.com/verte-zerg/fasttype/internal/session"
	"github.com/verte-zerg/fasttype/internal/stats"
	"github.com/verte-zerg/fasttype/internal/store"
	"github.com/verte-zerg/fasttype/internal/tui"
	"github.com/verte-zerg/fasttype/internal/wordlist"
	"github.com/verte-zerg/fasttype/internal/wordsupply"
)

const (
	defaultLang          = "en"
	defaultSource        = model.SourceAuto
	defaultTrendWindow   = 5
	defaultWordlistCount = 1000
)

var (
	testDuration int
	testBatch    int
	testSource   string
	testURL      string
	testLang     string
	testTimeout  time.Duration

	resultsWPM      float64
	resultsAccuracy float64

	historySince string
	historyLast  int
	historyPlain bool

	wordlistCount int
	wordlistLang  string
	wordlistForce bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "fasttype",
		Short:         "Timed typing speed test",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runTestCmd,
	}

	rootCmd.Flags().IntVar(&testDuration, "duration", session.DefaultDuration, "test length in seconds")
	rootCmd.Flags().IntVar(&testBatch, "batch", session.DefaultBatchSize, "words per batch")
	rootCmd.Flags().StringVar(&testSource, "source", defaultSource, "word source: remote, local or auto")
	rootCmd.Flags().StringVar(&testURL, "url", wordsupply.DefaultURL, "remote word endpoint")
	rootCmd.Flags().StringVar(&testLang, "lang", defaultLang, "language code")
	rootCmd.Flags().DurationVar(&testTimeout, "timeout", wordsupply.DefaultTimeout, "remote fetch timeout")

	rootCmd.AddCommand(newResultsCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newWordlistCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func runTestCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveTestConfig(cmd)
	if err != nil {
		return err
	}
	if err := requireTerminal(); err != nil {
		return err
	}
	return runTest(cmd.Context(), cfg)
}

// resolveTestConfig merges the config file under the test flags of cmd.
func resolveTestConfig(cmd *cobra.Command) (model.Config, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return model.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyIntConfig(cmd, "duration", &testDuration, fileCfg.Test.Duration)
	applyIntConfig(cmd, "batch", &testBatch, fileCfg.Test.BatchSize)
	applyStringConfig(cmd, "source", &testSource, fileCfg.Test.Source)
	applyStringConfig(cmd, "url", &testURL, fileCfg.Test.URL)
	applyStringConfig(cmd, "lang", &testLang, fileCfg.Test.Lang)
	if fileCfg.Test.TimeoutMs != nil && !cmd.Flags().Changed("timeout") {
		testTimeout = time.Duration(*fileCfg.Test.TimeoutMs) * time.Millisecond
	}

	cfg := model.Config{
		Duration:  testDuration,
		BatchSize: testBatch,
		Source:    strings.ToLower(strings.TrimSpace(testSource)),
		URL:       strings.TrimSpace(testURL),
		Lang:      strings.ToLower(strings.TrimSpace(testLang)),
		Timeout:   testTimeout,
	}
	if err := config.Validate(cfg); err != nil {
		return model.Config{}, err
	}
	return cfg, nil
}

func runTest(ctx context.Context, cfg model.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	log, closeLog := openLogger()
	defer closeLog()

	supply, err := buildSupply(cfg, log)
	if err != nil {
		return err
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	log.Info().
		Int("duration", cfg.Duration).
		Int("batch", cfg.BatchSize).
		Str("source", cfg.Source).
		Msg("starting test")

	opts := session.Options{DurationSec: cfg.Duration, BatchSize: cfg.BatchSize}
	m := tui.NewModel(ctx, opts, supply, st, cfg.Source, log)
	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// buildSupply wires the word source selected by cfg.Source.
func buildSupply(cfg model.Config, log zerolog.Logger) (wordsupply.Supply, error) {
	remote := wordsupply.NewHTTP(cfg.URL, cfg.Timeout, log).WithLang(cfg.Lang)
	switch cfg.Source {
	case model.SourceRemote:
		return remote, nil
	case model.SourceLocal:
		return loadLocalSupply(cfg.Lang)
	default:
		local, err := loadLocalSupply(cfg.Lang)
		if err != nil {
			log.Warn().Err(err).Msg("local word list unavailable, using remote only")
			return remote, nil
		}
		return wordsupply.NewFallback(log, remote, local), nil
	}
}

func loadLocalSupply(lang string) (*wordsupply.List, error) {
	path := config.DefaultWordListPath(lang)
	words, err := wordlist.LoadWords(path, lang)
	if err != nil {
		return nil, wordListLoadError(lang, path, err)
	}
	return wordsupply.NewList(words, generator.New()), nil
}

func newResultsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "results",
		Short: "Show a results screen",
		Args:  cobra.NoArgs,
		RunE:  runResultsCmd,
	}
	cmd.Flags().Float64Var(&resultsWPM, "wpm", 0, "words per minute to display")
	cmd.Flags().Float64Var(&resultsAccuracy, "accuracy", 0, "accuracy percentage to display")
	return cmd
}

func runResultsCmd(cmd *cobra.Command, _ []string) error {
	if resultsWPM < 0 {
		return fmt.Errorf("--wpm must be >= 0")
	}
	if resultsAccuracy < 0 || resultsAccuracy > 100 {
		return fmt.Errorf("--accuracy must be between 0 and 100")
	}
	if err := requireTerminal(); err != nil {
		return err
	}
	m := tui.NewResultsModel(resultsWPM, resultsAccuracy)
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("failed to run results TUI: %w", err)
	}
	if !m.Retake() {
		return nil
	}
	cfg, err := resolveTestConfig(cmd)
	if err != nil {
		return err
	}
	return runTest(cmd.Context(), cfg)
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past results",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().StringVar(&historySince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&historyLast, "last", 0, "limit to last N tests")
	cmd.Flags().BoolVar(&historyPlain, "plain", false, "print plain text instead of the TUI")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	since, err := parseSince(historySince)
	if err != nil {
		return err
	}
	if historyLast < 0 {
		return fmt.Errorf("--last must be >= 0")
	}
	cfg := model.HistoryConfig{Since: since, Last: historyLast}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	if historyPlain || !isTerminal() {
		return printHistory(cmd.Context(), cmd.OutOrStdout(), st, cfg)
	}
	m := historyui.NewModel(st, cfg)
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("failed to run history TUI: %w", err)
	}
	return nil
}

func printHistory(ctx context.Context, w io.Writer, src stats.Source, cfg model.HistoryConfig) error {
	if ctx == nil {
		ctx = context.Background()
	}
	report, err := stats.BuildReport(ctx, src, cfg)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}
	if len(report.Results) == 0 {
		_, err := fmt.Fprintln(w, "No results found. Take a test with: fasttype")
		return err
	}
	if err := stats.RenderSummary(w, report.Results, defaultTrendWindow); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	if err := stats.RenderResultsTable(w, report.Results); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	return stats.RenderMissedTable(w, report.Missed)
}

func parseSince(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.ParseInLocation("2006-01-02", raw, time.Local)
	if err != nil {
		return nil, fmt.Errorf("invalid --since value: %w", err)
	}
	return &parsed, nil
}

func newWordlistCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wordlist",
		Short: "Download words into the local word list",
		Args:  cobra.NoArgs,
		RunE:  runWordlistCmd,
	}
	cmd.Flags().IntVar(&wordlistCount, "count", defaultWordlistCount, "number of words to download")
	cmd.Flags().StringVar(&wordlistLang, "lang", "", "language code (default: config or en)")
	cmd.Flags().BoolVar(&wordlistForce, "force", false, "replace the existing list instead of extending it")
	return cmd
}

func runWordlistCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if wordlistCount <= 0 {
		return fmt.Errorf("--count must be > 0")
	}
	lang := strings.ToLower(strings.TrimSpace(wordlistLang))
	if lang == "" {
		lang = defaultLang
		if fileCfg.Test.Lang != nil {
			lang = strings.ToLower(strings.TrimSpace(*fileCfg.Test.Lang))
		}
	}
	endpoint := wordsupply.DefaultURL
	if fileCfg.Test.URL != nil {
		endpoint = *fileCfg.Test.URL
	}
	timeout := wordsupply.DefaultTimeout
	if fileCfg.Test.TimeoutMs != nil {
		timeout = time.Duration(*fileCfg.Test.TimeoutMs) * time.Millisecond
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	log := logging.Console(os.Stderr)
	log.Info().Str("lang", lang).Int("count", wordlistCount).Msg("fetching words")
	remote := wordsupply.NewHTTP(endpoint, timeout, log).WithLang(lang)
	fetched, err := remote.FetchWords(ctx, wordlistCount)
	if err != nil {
		return fmt.Errorf("failed to download words: %w", err)
	}

	outPath := config.DefaultWordListPath(lang)
	words, err := buildWordList(outPath, lang, fetched, wordlistForce)
	if err != nil {
		return err
	}
	if err := wordlist.WriteWords(outPath, words); err != nil {
		return fmt.Errorf("failed to write %s: %w", outPath, err)
	}
	log.Info().Str("path", outPath).Int("words", len(words)).Msg("wrote word list")
	return nil
}

// buildWordList filters fetched words and, unless force is set, merges them into
// the list already at path.
func buildWordList(path, lang string, fetched []string, force bool) ([]string, error) {
	keep := wordlist.FilterForLang(lang)
	clean := make([]string, 0, len(fetched))
	for _, w := range fetched {
		w = strings.TrimSpace(w)
		if w == "" || !keep(w) {
			continue
		}
		clean = append(clean, w)
	}
	if force {
		if len(clean) == 0 {
			return nil, fmt.Errorf("no usable words downloaded for %q", lang)
		}
		return wordlist.Merge(nil, clean), nil
	}
	existing, err := wordlist.LoadWords(path, lang)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read existing word list (use --force to replace it): %w", err)
	}
	merged := wordlist.Merge(existing, clean)
	if len(merged) == 0 {
		return nil, fmt.Errorf("no usable words downloaded for %q", lang)
	}
	return merged, nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# fasttype configuration
# Uncomment a value to enable it. CLI flags override config values.

[test]
# duration = %d           # Test length in seconds
# batch = %d              # Words per batch
# source = %q         # Word source: remote, local or auto
# url = %q
# lang = %q             # Language code
# timeout-ms = %d       # Remote fetch timeout in milliseconds
`,
		session.DefaultDuration,
		session.DefaultBatchSize,
		defaultSource,
		wordsupply.DefaultURL,
		defaultLang,
		wordsupply.DefaultTimeout.Milliseconds(),
	)
}

func wordListLoadError(lang, path string, err error) error {
	lines := []string{
		fmt.Sprintf("failed to load word list: %v", err),
		fmt.Sprintf("expected word list at: %s", path),
		fmt.Sprintf("Download: fasttype wordlist --lang %s", lang),
		"Or use the remote source: fasttype --source remote",
	}
	return fmt.Errorf("%s", strings.Join(lines, "\n"))
}

// openLogger logs to the state directory, or to stderr when the file cannot be
// opened.
func openLogger() (zerolog.Logger, func()) {
	log, closer, err := logging.OpenFile(config.DefaultLogPath())
	if err != nil {
		logErrf("logging to stderr: %v\n", err)
		return logging.Console(os.Stderr), func() {}
	}
	return log, func() {
		if cerr := closer.Close(); cerr != nil {
			logErrf("failed to close log: %v\n", cerr)
		}
	}
}

func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

func requireTerminal() error {
	if !isTerminal() {
		return fmt.Errorf("fasttype needs an interactive terminal")
	}
	return nil
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
