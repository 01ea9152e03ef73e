// Package main provides the CLI entrypoint for tuivia.
package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/tuivia/internal/boardui"
	"github.com/verte-zerg/tuivia/internal/client"
	"github.com/verte-zerg/tuivia/internal/config"
	"github.com/verte-zerg/tuivia/internal/model"
	"github.com/verte-zerg/tuivia/internal/stats"
	"github.com/verte-zerg/tuivia/internal/store"
	"github.com/verte-zerg/tuivia/internal/tui"
)

const (
	defaultServerURL = "http://127.0.0.1:5000"
	defaultTimeout   = "10s"
	debugEnv         = "TUIVIA_DEBUG"
)

var (
	serverURL     string
	serverTimeout string

	playPlayer string
	playPlain  bool

	boardPage  int
	boardPlain bool

	historyPlayer string
	historyLast   int
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "tuivia",
		Short:         "Terminal trivia client",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPlayCmd,
	}

	rootCmd.PersistentFlags().StringVar(&serverURL, "server", defaultServerURL, "trivia service base URL")
	rootCmd.PersistentFlags().StringVar(&serverTimeout, "timeout", defaultTimeout, "request timeout")
	rootCmd.Flags().StringVar(&playPlayer, "player", "", "player name to prefill")
	rootCmd.Flags().BoolVar(&playPlain, "plain", false, "line-based play without the TUI")

	rootCmd.AddCommand(newLeaderboardCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func runPlayCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	svc, err := newClient(cfg)
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

	if playPlain {
		return runPlain(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), cfg, svc, st)
	}

	closeLog, err := setupLogging()
	if err != nil {
		return err
	}
	defer closeLog()

	program := tea.NewProgram(tui.NewModel(cfg, svc, st), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newLeaderboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Browse the shared leaderboard",
		Args:  cobra.NoArgs,
		RunE:  runLeaderboardCmd,
	}
	cmd.Flags().IntVar(&boardPage, "page", 1, "page to open")
	cmd.Flags().BoolVar(&boardPlain, "plain", false, "print one page without the TUI")
	return cmd
}

func runLeaderboardCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	svc, err := newClient(cfg)
	if err != nil {
		return err
	}
	if boardPlain {
		return printLeaderboard(cmd.Context(), cmd.OutOrStdout(), svc, cfg.Page)
	}

	closeLog, err := setupLogging()
	if err != nil {
		return err
	}
	defer closeLog()

	program := tea.NewProgram(boardui.NewModel(svc, cfg.Page), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run leaderboard TUI: %w", err)
	}
	return nil
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show local play history",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().StringVar(&historyPlayer, "player", "", "player filter")
	cmd.Flags().IntVar(&historyLast, "last", 0, "limit to last N games")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	if historyLast < 0 {
		return fmt.Errorf("--last must be >= 0")
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

	report, err := stats.BuildReport(cmd.Context(), st, model.HistoryConfig{
		Player: strings.TrimSpace(historyPlayer),
		Last:   historyLast,
	})
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}
	out := cmd.OutOrStdout()
	return stats.RenderReport(out, report, stats.TerminalWidth(), stats.ShouldUseColor(out))
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

// resolveConfig merges the config file into flags the user did not set.
func resolveConfig(cmd *cobra.Command) (model.Config, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return model.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "server", &serverURL, fileCfg.Server.URL)
	applyStringConfig(cmd, "timeout", &serverTimeout, fileCfg.Server.Timeout)
	applyStringConfig(cmd, "player", &playPlayer, fileCfg.Play.Player)
	applyIntConfig(cmd, "page", &boardPage, fileCfg.Leaderboard.Page)

	timeout, err := time.ParseDuration(serverTimeout)
	if err != nil {
		return model.Config{}, fmt.Errorf("invalid --timeout value: %w", err)
	}
	cfg := model.Config{
		ServerURL: strings.TrimSpace(serverURL),
		Timeout:   timeout,
		Player:    strings.TrimSpace(playPlayer),
		Page:      boardPage,
	}
	if err := validateConfig(cfg); err != nil {
		return model.Config{}, err
	}
	return cfg, nil
}

func newClient(cfg model.Config) (*client.Client, error) {
	c, err := client.New(cfg.ServerURL, cfg.Timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return c, nil
}

// setupLogging sends the standard logger to $TUIVIA_DEBUG while a TUI owns
// the terminal, and discards it otherwise.
func setupLogging() (func(), error) {
	path := os.Getenv(debugEnv)
	if path == "" {
		log.SetOutput(io.Discard)
		return func() {}, nil
	}
	f, err := tea.LogToFile(path, "tuivia")
	if err != nil {
		return nil, fmt.Errorf("failed to open debug log: %w", err)
	}
	return func() {
		if cerr := f.Close(); cerr != nil {
			logErrf("failed to close debug log: %v\n", cerr)
		}
	}, nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if flag := cmd.Flags().Lookup(name); flag == nil || flag.Changed {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if flag := cmd.Flags().Lookup(name); flag == nil || flag.Changed {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# tuivia configuration
# Uncomment a value to enable it. CLI flags override config values.

[server]
# url = %q   # Trivia service base URL
# timeout = %q             # Request timeout

[play]
# player = "Ada"              # Name prefilled on the name screen

[leaderboard]
# page = 1                    # Page opened by 'tuivia leaderboard'
`,
		defaultServerURL,
		defaultTimeout,
	)
}

func validateConfig(cfg model.Config) error {
	if cfg.ServerURL == "" {
		return fmt.Errorf("--server must not be empty")
	}
	if cfg.Timeout <= 0 {
		return fmt.Errorf("--timeout must be > 0")
	}
	if cfg.Page < 1 {
		return fmt.Errorf("--page must be >= 1")
	}
	return nil
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
