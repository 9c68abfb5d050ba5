// Package main provides the CLI entrypoint for arrows.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/hrca/arrows/internal/config"
	"github.com/hrca/arrows/internal/leaderboard"
	"github.com/hrca/arrows/internal/model"
	"github.com/hrca/arrows/internal/session"
	"github.com/hrca/arrows/internal/stats"
	"github.com/hrca/arrows/internal/statsui"
	"github.com/hrca/arrows/internal/store"
	"github.com/hrca/arrows/internal/tui"
)

const (
	defaultDuration    = session.DefaultDuration
	defaultScorePolicy = string(session.ScoreNet)
	defaultStartPolicy = string(session.StartOnFirstTap)
	defaultCurveWindow = 5
	defaultTop         = 10
	defaultLogLevel    = "info"
)

var (
	playDuration    time.Duration
	playScorePolicy string
	playStartPolicy string
	playSeed        int64
	playFresh       bool

	logLevel string

	statsSince       string
	statsLast        int
	statsCurveWindow int
	statsTop         int
	statsPlain       bool

	leaderboardTop int

	fileCfg config.FileConfig
)

func main() {
	// A missing .env is fine.
	_ = godotenv.Load()

	rootCmd := newRootCmd()
	err := rootCmd.Execute()
	closeLogging()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:               "arrows",
		Short:             "Tap the up arrow as fast as you can",
		SilenceUsage:      true,
		SilenceErrors:     false,
		PersistentPreRunE: setup,
		RunE:              runPlayCmd,
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", defaultLogLevel, "log level (trace, debug, info, warn, error)")
	rootCmd.Flags().DurationVar(&playDuration, "duration", defaultDuration, "session length")
	rootCmd.Flags().StringVar(&playScorePolicy, "score-policy", defaultScorePolicy, "scoring: hits or net (hits minus misses)")
	rootCmd.Flags().StringVar(&playStartPolicy, "start-policy", defaultStartPolicy, "countdown start: immediate or first-tap")
	rootCmd.Flags().Int64Var(&playSeed, "seed", 0, "grid seed (0 picks a random seed)")
	rootCmd.Flags().BoolVar(&playFresh, "fresh", false, "discard an interrupted session")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newSubmitCmd())
	rootCmd.AddCommand(newLeaderboardCmd())

	return rootCmd
}

// setup loads the config file and configures logging for every command.
func setup(cmd *cobra.Command, _ []string) error {
	if cmd.Name() != "config" {
		loaded, err := config.LoadConfig(config.DefaultConfigPath())
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		fileCfg = loaded
	}
	level := resolveLogLevel(logLevel, cmd.Flags().Changed("log-level"), os.Getenv("ARROWS_LOG_LEVEL"), fileCfg.Log.Level)
	return setupLogging(level, config.DefaultLogPath())
}

func runPlayCmd(cmd *cobra.Command, _ []string) error {
	applyDurationConfig(cmd, "duration", &playDuration, fileCfg.Game.Duration)
	applyStringConfig(cmd, "score-policy", &playScorePolicy, fileCfg.Game.ScorePolicy)
	applyStringConfig(cmd, "start-policy", &playStartPolicy, fileCfg.Game.StartPolicy)

	cfg := model.Config{
		Duration:    playDuration,
		ScorePolicy: playScorePolicy,
		StartPolicy: playStartPolicy,
		Seed:        playSeed,
		Fresh:       playFresh,
	}
	sessCfg, err := sessionConfig(cfg)
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	ctx := context.Background()
	flushScores(ctx, st)

	resume := loadResume(ctx, st, cfg.Fresh)
	m, err := tui.NewModel(sessCfg, st, session.SystemClock{}, resume)
	if err != nil && resume != nil {
		log.Warn().Err(err).Msg("discarding unusable resume state")
		if cerr := st.ClearResume(ctx); cerr != nil {
			log.Error().Err(cerr).Msg("failed to clear resume state")
		}
		m, err = tui.NewModel(sessCfg, st, session.SystemClock{}, nil)
	}
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}

	log.Info().
		Dur("duration", sessCfg.Duration).
		Str("score_policy", string(sessCfg.Score)).
		Str("start_policy", string(sessCfg.Start)).
		Bool("resumed", resume != nil).
		Msg("starting game")
	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithReportFocus())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	flushScores(ctx, st)
	return nil
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
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show stats",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N sessions")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	cmd.Flags().IntVar(&statsTop, "top", defaultTop, "leaderboard size")
	cmd.Flags().BoolVar(&statsPlain, "plain", false, "print a text report instead of the TUI")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	applyIntConfig(cmd, "curve-window", &statsCurveWindow, fileCfg.Stats.CurveWindow)
	applyIntConfig(cmd, "top", &statsTop, fileCfg.Stats.Top)

	cfg, err := statsConfig(statsSince, statsLast, statsCurveWindow, statsTop)
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	if statsPlain {
		report, err := stats.BuildReport(context.Background(), st, cfg)
		if err != nil {
			return fmt.Errorf("failed to build report: %w", err)
		}
		if len(report.Sessions) == 0 {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "No sessions found.")
			return err
		}
		return report.Render(cmd.OutOrStdout(), cfg.CurveWindow)
	}

	m := statsui.NewModel(st, cfg)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func newSubmitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "submit",
		Short: "Submit queued scores to the leaderboard",
		Args:  cobra.NoArgs,
		RunE:  runSubmitCmd,
	}
}

func runSubmitCmd(cmd *cobra.Command, _ []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	n, err := leaderboard.Flush(context.Background(), st, leaderboard.NewLocal(st))
	if _, werr := fmt.Fprintf(cmd.OutOrStdout(), "Submitted %d score(s).\n", n); werr != nil {
		return werr
	}
	return err
}

func newLeaderboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Print the top scores",
		Args:  cobra.NoArgs,
		RunE:  runLeaderboardCmd,
	}
	cmd.Flags().IntVar(&leaderboardTop, "top", defaultTop, "number of scores")
	return cmd
}

func runLeaderboardCmd(cmd *cobra.Command, _ []string) error {
	applyIntConfig(cmd, "top", &leaderboardTop, fileCfg.Stats.Top)
	if leaderboardTop <= 0 {
		return fmt.Errorf("--top must be > 0")
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	entries, err := st.TopScores(context.Background(), leaderboardTop)
	if err != nil {
		return fmt.Errorf("failed to load leaderboard: %w", err)
	}
	return stats.RenderLeaderboard(cmd.OutOrStdout(), entries)
}

func openStore() (*store.Store, error) {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	return st, nil
}

func closeStore(st *store.Store) {
	if err := st.Close(); err != nil {
		log.Error().Err(err).Msg("failed to close db")
	}
}

// flushScores submits queued scores; failures leave them queued.
func flushScores(ctx context.Context, st *store.Store) {
	if _, err := leaderboard.Flush(ctx, st, leaderboard.NewLocal(st)); err != nil {
		log.Warn().Err(err).Msg("score submission incomplete")
	}
}

func loadResume(ctx context.Context, st *store.Store, fresh bool) *model.ResumeState {
	if fresh {
		if err := st.ClearResume(ctx); err != nil {
			log.Error().Err(err).Msg("failed to clear resume state")
		}
		return nil
	}
	rs, err := st.LoadResume(ctx)
	if err != nil {
		if !errors.Is(err, store.ErrNoResume) {
			log.Error().Err(err).Msg("failed to load resume state")
		}
		return nil
	}
	return &rs
}

func sessionConfig(cfg model.Config) (session.Config, error) {
	if cfg.Duration <= 0 {
		return session.Config{}, fmt.Errorf("--duration must be > 0")
	}
	score, err := session.ParseScorePolicy(cfg.ScorePolicy)
	if err != nil {
		return session.Config{}, fmt.Errorf("--score-policy: %w", err)
	}
	start, err := session.ParseStartPolicy(cfg.StartPolicy)
	if err != nil {
		return session.Config{}, fmt.Errorf("--start-policy: %w", err)
	}
	return session.Config{
		Duration: cfg.Duration,
		Score:    score,
		Start:    start,
		Seed:     cfg.Seed,
	}, nil
}

func statsConfig(since string, last, window, top int) (model.StatsConfig, error) {
	var sinceTime *time.Time
	if since != "" {
		parsed, err := time.ParseInLocation("2006-01-02", since, time.Local)
		if err != nil {
			return model.StatsConfig{}, fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	if last < 0 {
		return model.StatsConfig{}, fmt.Errorf("--last must be >= 0")
	}
	if window < 1 {
		return model.StatsConfig{}, fmt.Errorf("--curve-window must be >= 1")
	}
	if top < 1 {
		return model.StatsConfig{}, fmt.Errorf("--top must be >= 1")
	}
	return model.StatsConfig{
		Since:       sinceTime,
		Last:        last,
		CurveWindow: window,
		Top:         top,
	}, nil
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
	return fmt.Sprintf(`# arrows configuration
# Uncomment a value to enable it. CLI flags override config values.

[game]
# duration = %q            # Session length
# score-policy = %q         # "hits" or "net" (hits minus misses)
# start-policy = %q   # "immediate" or "first-tap"

[stats]
# curve-window = %d           # Moving average window
# top = %d                   # Leaderboard size

[log]
# level = %q              # trace, debug, info, warn, error
`,
		defaultDuration.String(),
		defaultScorePolicy,
		defaultStartPolicy,
		defaultCurveWindow,
		defaultTop,
		defaultLogLevel,
	)
}
