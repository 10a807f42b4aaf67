// Package main provides the CLI entrypoint for speedtype.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/speedtype/internal/config"
	"github.com/verte-zerg/speedtype/internal/generator"
	"github.com/verte-zerg/speedtype/internal/model"
	"github.com/verte-zerg/speedtype/internal/server"
	"github.com/verte-zerg/speedtype/internal/session"
	"github.com/verte-zerg/speedtype/internal/stats"
	"github.com/verte-zerg/speedtype/internal/statsui"
	"github.com/verte-zerg/speedtype/internal/store"
	"github.com/verte-zerg/speedtype/internal/tui"
	"github.com/verte-zerg/speedtype/internal/vocab"
)

const (
	defaultLang        = "en"
	defaultUser        = "anonymous"
	defaultWords       = 5
	defaultDuration    = 10 * time.Second
	defaultTick        = session.DefaultTick
	defaultCaps        = 0.0
	defaultPunct       = 0.0
	defaultWeakTop     = 8
	defaultWeakFactor  = 2.0
	defaultWeakWindow  = 20
	defaultCurveWindow = 20
	defaultAddr        = ":8080"
	defaultPlainWidth  = 80
)

const defaultPunctSet = ".,!?;:\"'()-"

var (
	practiceLang       string
	practiceUser       string
	practiceWords      int
	practiceDuration   time.Duration
	practiceTick       time.Duration
	practiceWordList   string
	practiceCaps       float64
	practicePunct      float64
	practicePunctSet   string
	practiceFocusWeak  bool
	practiceWeakTop    int
	practiceWeakFactor float64
	practiceWeakWindow int

	storeDriver string
	storeDSN    string

	statsLang        string
	statsUser        string
	statsSince       string
	statsLast        int
	statsCurveWindow int
	statsPlain       bool
	exportXLSX       string

	serveAddr string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "speedtype",
		Short:         "Timed typing speed trainer",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPracticeCmd,
	}

	addPracticeFlags(rootCmd)
	rootCmd.PersistentFlags().StringVar(&storeDriver, "db-driver", store.DriverSQLite, "result store driver (sqlite or postgres)")
	rootCmd.PersistentFlags().StringVar(&storeDSN, "db-dsn", "", "result store DSN (default: SQLite file in XDG data dir)")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newLangsCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newServeCmd())

	return rootCmd
}

func addPracticeFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&practiceLang, "lang", defaultLang, "language code")
	cmd.Flags().StringVar(&practiceUser, "user", defaultUser, "name results are recorded under")
	cmd.Flags().IntVar(&practiceWords, "words", defaultWords, "words per test")
	cmd.Flags().DurationVar(&practiceDuration, "duration", defaultDuration, "test time limit")
	cmd.Flags().DurationVar(&practiceTick, "tick", defaultTick, "metrics refresh interval")
	cmd.Flags().StringVar(&practiceWordList, "wordlist", "", "word list file (one word per line)")
	cmd.Flags().Float64Var(&practiceCaps, "caps", defaultCaps, "probability of capitalized first letter (0-1)")
	cmd.Flags().Float64Var(&practicePunct, "punct", defaultPunct, "punctuation probability per word (0-1)")
	cmd.Flags().StringVar(&practicePunctSet, "punct-set", defaultPunctSet, "punctuation set")
	cmd.Flags().BoolVar(&practiceFocusWeak, "focus-weak", false, "bias practice toward weak characters")
	cmd.Flags().IntVar(&practiceWeakTop, "weak-top", defaultWeakTop, "number of weak characters to focus on")
	cmd.Flags().Float64Var(&practiceWeakFactor, "weak-factor", defaultWeakFactor, "weight factor for weak characters")
	cmd.Flags().IntVar(&practiceWeakWindow, "weak-window", defaultWeakWindow, "number of recent results to compute weak chars")
}

func runPracticeCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := loadFileConfig()
	if err != nil {
		return err
	}
	cfg, err := resolvePracticeConfig(cmd, fileCfg)
	if err != nil {
		return err
	}
	words, _, err := vocab.Load(cfg.Lang, cfg.WordListPath, config.DefaultWordListDir())
	if err != nil {
		return wordListLoadError(cfg.Lang, err)
	}

	st, err := openStore(cmd, fileCfg)
	if err != nil {
		return err
	}
	defer closeStore(st)

	source := generator.NewSource(generator.New(), words, cfg)
	m := tui.NewModel(cfg, st, source)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func loadFileConfig() (config.FileConfig, error) {
	if err := config.LoadDotEnv(); err != nil {
		logErrf("failed to load .env: %v\n", err)
	}
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return config.FileConfig{}, fmt.Errorf("failed to load config: %w", err)
	}
	config.ApplyEnv(&fileCfg)
	return fileCfg, nil
}

func resolvePracticeConfig(cmd *cobra.Command, fileCfg config.FileConfig) (model.Config, error) {
	p := fileCfg.Practice
	applyStringConfig(cmd, "lang", &practiceLang, p.Lang)
	applyStringConfig(cmd, "user", &practiceUser, p.User)
	applyIntConfig(cmd, "words", &practiceWords, p.Words)
	applyDurationConfig(cmd, "duration", &practiceDuration, p.Duration)
	applyDurationConfig(cmd, "tick", &practiceTick, p.Tick)
	applyStringConfig(cmd, "wordlist", &practiceWordList, p.WordList)
	applyFloatConfig(cmd, "caps", &practiceCaps, p.CapsPct)
	applyFloatConfig(cmd, "punct", &practicePunct, p.PunctPct)
	applyStringConfig(cmd, "punct-set", &practicePunctSet, p.PunctSet)
	applyBoolConfig(cmd, "focus-weak", &practiceFocusWeak, p.FocusWeak)
	applyIntConfig(cmd, "weak-top", &practiceWeakTop, p.WeakTop)
	applyFloatConfig(cmd, "weak-factor", &practiceWeakFactor, p.WeakFactor)
	applyIntConfig(cmd, "weak-window", &practiceWeakWindow, p.WeakWindow)

	cfg := model.Config{
		Lang:         strings.TrimSpace(practiceLang),
		User:         strings.TrimSpace(practiceUser),
		Words:        practiceWords,
		Duration:     practiceDuration,
		Tick:         practiceTick,
		WordListPath: practiceWordList,
		CapsPct:      practiceCaps,
		PunctPct:     practicePunct,
		PunctSet:     practicePunctSet,
		FocusWeak:    practiceFocusWeak,
		WeakTop:      practiceWeakTop,
		WeakFactor:   practiceWeakFactor,
		WeakWindow:   practiceWeakWindow,
	}
	if err := validateConfig(cfg); err != nil {
		return model.Config{}, err
	}
	return cfg, nil
}

func resolveStoreConfig(cmd *cobra.Command, fileCfg config.FileConfig) model.StoreConfig {
	applyStringConfig(cmd, "db-driver", &storeDriver, fileCfg.Store.Driver)
	applyStringConfig(cmd, "db-dsn", &storeDSN, fileCfg.Store.DSN)
	cfg := model.StoreConfig{
		Driver: strings.ToLower(strings.TrimSpace(storeDriver)),
		DSN:    strings.TrimSpace(storeDSN),
	}
	if cfg.Driver == "" {
		cfg.Driver = store.DriverSQLite
	}
	if cfg.Driver == store.DriverSQLite && cfg.DSN == "" {
		cfg.DSN = config.DefaultDBPath()
	}
	return cfg
}

func openStore(cmd *cobra.Command, fileCfg config.FileConfig) (*store.Store, error) {
	cfg := resolveStoreConfig(cmd, fileCfg)
	if cfg.DSN == "" {
		return nil, fmt.Errorf("--db-dsn is required for driver %q", cfg.Driver)
	}
	st, err := store.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	return st, nil
}

func closeStore(st *store.Store) {
	if cerr := st.Close(); cerr != nil {
		logErrf("failed to close db: %v\n", cerr)
	}
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
	if err := writeConfigTemplate(path); err != nil {
		return err
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func writeConfigTemplate(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat config: %w", err)
	}
	if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func newLangsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "langs",
		Short: "List available vocabularies",
		Args:  cobra.NoArgs,
		RunE:  runLangsCmd,
	}
}

func runLangsCmd(cmd *cobra.Command, _ []string) error {
	installed, err := vocab.InstalledLanguages(config.DefaultWordListDir())
	if err != nil {
		return err
	}
	return writeLangs(cmd.OutOrStdout(), vocab.BuiltinLanguages(), installed)
}

func writeLangs(w io.Writer, builtin, installed []string) error {
	isInstalled := make(map[string]bool, len(installed))
	for _, lang := range installed {
		isInstalled[lang] = true
	}
	for _, lang := range builtin {
		label := "builtin"
		if isInstalled[lang] {
			label = "installed, overrides builtin"
			delete(isInstalled, lang)
		}
		if _, err := fmt.Fprintf(w, "%s (%s)\n", lang, label); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	for _, lang := range installed {
		if !isInstalled[lang] {
			continue
		}
		if _, err := fmt.Fprintf(w, "%s (installed)\n", lang); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show result history",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.PersistentFlags().StringVar(&statsLang, "lang", "", "language filter")
	cmd.PersistentFlags().StringVar(&statsUser, "user", "", "user filter")
	cmd.PersistentFlags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.PersistentFlags().IntVar(&statsLast, "last", 0, "limit to last N results")
	cmd.PersistentFlags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	cmd.Flags().BoolVar(&statsPlain, "plain", false, "print text instead of opening the stats browser")

	cmd.AddCommand(newStatsExportCmd())
	cmd.AddCommand(newStatsDeleteCmd())
	return cmd
}

func statsConfig() (model.StatsConfig, error) {
	var sinceTime *time.Time
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return model.StatsConfig{}, fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	if statsLast < 0 {
		return model.StatsConfig{}, fmt.Errorf("--last must be >= 0")
	}
	if statsCurveWindow < 1 {
		return model.StatsConfig{}, fmt.Errorf("--curve-window must be >= 1")
	}
	return model.StatsConfig{
		User:        statsUser,
		Lang:        statsLang,
		Since:       sinceTime,
		Last:        statsLast,
		CurveWindow: statsCurveWindow,
	}, nil
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := statsConfig()
	if err != nil {
		return err
	}
	fileCfg, err := loadFileConfig()
	if err != nil {
		return err
	}
	st, err := openStore(cmd, fileCfg)
	if err != nil {
		return err
	}
	defer closeStore(st)

	out := cmd.OutOrStdout()
	if statsPlain || !isTerminal(out) {
		report, err := stats.BuildReport(context.Background(), st, cfg)
		if err != nil {
			return fmt.Errorf("failed to load stats: %w", err)
		}
		return renderPlainStats(out, report, cfg.CurveWindow, terminalWidth(out))
	}

	m := statsui.NewModel(st, cfg)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func renderPlainStats(w io.Writer, report stats.Report, window, width int) error {
	if err := stats.RenderSummary(w, report.Results); err != nil {
		return err
	}
	if err := stats.RenderCurves(w, report.Results, window, width); err != nil {
		return err
	}
	if err := stats.RenderHistoryTable(w, report.Results); err != nil {
		return err
	}
	if len(report.Results) == 0 {
		return nil
	}
	return stats.RenderCharTable(w, report.CharAggsWindow)
}

func newStatsExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export result history to a spreadsheet",
		Args:  cobra.NoArgs,
		RunE:  runStatsExportCmd,
	}
	cmd.Flags().StringVar(&exportXLSX, "xlsx", "", "output .xlsx path")
	return cmd
}

func runStatsExportCmd(cmd *cobra.Command, _ []string) error {
	if strings.TrimSpace(exportXLSX) == "" {
		return fmt.Errorf("--xlsx is required")
	}
	cfg, err := statsConfig()
	if err != nil {
		return err
	}
	fileCfg, err := loadFileConfig()
	if err != nil {
		return err
	}
	st, err := openStore(cmd, fileCfg)
	if err != nil {
		return err
	}
	defer closeStore(st)

	report, err := stats.BuildReport(context.Background(), st, cfg)
	if err != nil {
		return fmt.Errorf("failed to load stats: %w", err)
	}
	if err := stats.ExportXLSX(exportXLSX, report.Results, report.CharAggsAll); err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Exported %d results to %s\n", len(report.Results), exportXLSX)
	return err
}

func newStatsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete one result",
		Args:  cobra.ExactArgs(1),
		RunE:  runStatsDeleteCmd,
	}
}

func runStatsDeleteCmd(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return fmt.Errorf("invalid result id %q", args[0])
	}
	fileCfg, err := loadFileConfig()
	if err != nil {
		return err
	}
	st, err := openStore(cmd, fileCfg)
	if err != nil {
		return err
	}
	defer closeStore(st)

	if err := st.DeleteResult(context.Background(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("result %d not found", id)
		}
		return fmt.Errorf("failed to delete result: %w", err)
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Deleted result %d\n", id)
	return err
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve typing sessions over websockets",
		Args:  cobra.NoArgs,
		RunE:  runServeCmd,
	}
	addPracticeFlags(cmd)
	cmd.Flags().StringVar(&serveAddr, "addr", defaultAddr, "listen address")
	return cmd
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := loadFileConfig()
	if err != nil {
		return err
	}
	cfg, err := resolvePracticeConfig(cmd, fileCfg)
	if err != nil {
		return err
	}
	applyStringConfig(cmd, "addr", &serveAddr, fileCfg.Server.Addr)

	words, _, err := vocab.Load(cfg.Lang, cfg.WordListPath, config.DefaultWordListDir())
	if err != nil {
		return wordListLoadError(cfg.Lang, err)
	}
	st, err := openStore(cmd, fileCfg)
	if err != nil {
		return err
	}
	defer closeStore(st)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(cfg, st, func() session.WordSource {
		return generator.NewSource(generator.New(), words, cfg)
	})
	return srv.ListenAndServe(ctx, serveAddr)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func terminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok {
		return defaultPlainWidth
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return defaultPlainWidth
	}
	return width
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

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyDurationConfig(cmd *cobra.Command, name string, target *time.Duration, value *config.Duration) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = value.Duration
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# speedtype configuration
# Uncomment a value to enable it. CLI flags override config values,
# and SPEEDTYPE_DB_DRIVER, SPEEDTYPE_DB_DSN, SPEEDTYPE_ADDR, SPEEDTYPE_USER
# override the file.

[practice]
# lang = %q               # Language code
# user = %q               # Name results are recorded under
# words = %d              # Words per test
# duration = %q           # Test time limit
# tick = %q               # Metrics refresh interval
# wordlist = ""           # Word list file (default: builtin or wordlists/<lang>.txt)
# caps = %.2f             # Probability of capitalized first letter (0-1)
# punct = %.2f            # Punctuation probability per word (0-1)
# punct-set = %q          # Punctuation set
# focus-weak = false      # Bias practice toward weak characters
# weak-top = %d           # Number of weak characters to focus on
# weak-factor = %.1f      # Weight factor for weak characters
# weak-window = %d        # Number of recent results to compute weak chars

[store]
# driver = "sqlite"       # sqlite or postgres
# dsn = ""                # SQLite file or PostgreSQL connection string

[server]
# addr = %q               # Listen address for speedtype serve
`,
		defaultLang,
		defaultUser,
		defaultWords,
		defaultDuration.String(),
		defaultTick.String(),
		defaultCaps,
		defaultPunct,
		defaultPunctSet,
		defaultWeakTop,
		defaultWeakFactor,
		defaultWeakWindow,
		defaultAddr,
	)
}

func validateConfig(cfg model.Config) error {
	if cfg.Lang == "" {
		return fmt.Errorf("--lang must not be empty")
	}
	if cfg.User == "" {
		return fmt.Errorf("--user must not be empty")
	}
	if cfg.Words <= 0 {
		return fmt.Errorf("--words must be > 0")
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("--duration must be > 0")
	}
	if cfg.Tick <= 0 {
		return fmt.Errorf("--tick must be > 0")
	}
	if cfg.Tick > cfg.Duration {
		return fmt.Errorf("--tick must not exceed --duration")
	}
	if cfg.CapsPct < 0 || cfg.CapsPct > 1 {
		return fmt.Errorf("--caps must be between 0 and 1")
	}
	if cfg.PunctPct < 0 || cfg.PunctPct > 1 {
		return fmt.Errorf("--punct must be between 0 and 1")
	}
	if cfg.PunctPct > 0 && cfg.PunctSet == "" {
		return fmt.Errorf("--punct-set must not be empty")
	}
	if cfg.WeakTop < 0 {
		return fmt.Errorf("--weak-top must be >= 0")
	}
	if cfg.WeakFactor < 0 {
		return fmt.Errorf("--weak-factor must be >= 0")
	}
	if cfg.WeakWindow < 0 {
		return fmt.Errorf("--weak-window must be >= 0")
	}
	return nil
}

func wordListLoadError(lang string, err error) error {
	lines := []string{
		fmt.Sprintf("failed to load word list for %q: %v", lang, err),
		"Run: speedtype langs",
		fmt.Sprintf("Install: put one word per line in %s", filepath.Join(config.DefaultWordListDir(), lang+".txt")),
	}
	return fmt.Errorf("%s", strings.Join(lines, "\n"))
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
