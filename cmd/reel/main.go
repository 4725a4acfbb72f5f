package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/mmcdole/reel/internal/config"
	"github.com/mmcdole/reel/internal/log"
	"github.com/mmcdole/reel/internal/runner"
	"github.com/mmcdole/reel/internal/scan"
	"github.com/mmcdole/reel/internal/store"
	"github.com/mmcdole/reel/internal/tui"
)

// Version is set at build time via -ldflags
var Version = "dev"

func main() {
	var (
		showVersion bool
		root        string
		find        string
		headless    bool
	)
	flag.BoolVar(&showVersion, "v", false, "print version")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.StringVar(&root, "root", "", "directory to scan (overrides config)")
	flag.StringVar(&find, "find", "", "search the stored catalog and exit")
	flag.BoolVar(&headless, "headless", false, "scan without the TUI, printing progress lines")
	flag.Parse()

	if showVersion {
		fmt.Printf("reel %s\n", Version)
		return
	}

	if err := run(root, find, headless); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(root, find string, headless bool) error {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if root != "" {
		cfg.Scan.Root = root
	}

	// Setup logger
	logger, err := log.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = log.NullLogger()
	}
	slog.SetDefault(logger)

	logger.Info("starting reel", "version", Version, "root", cfg.Scan.Root)

	st, err := store.Open(cfg.Storage.Dir)
	if err != nil {
		logger.Warn("catalog unavailable, using memory only", "error", err)
		st, _ = store.Open("")
	}
	defer st.Close()

	opts := scan.Options{
		Root:         cfg.Scan.Root,
		Extensions:   cfg.Scan.Extensions,
		FollowHidden: cfg.Scan.FollowHidden,
		ReportEvery:  cfg.Scan.ReportEvery,
	}

	if find != "" {
		return runFind(os.Stdout, st, opts.Root, find)
	}

	if headless || !term.IsTerminal(int(os.Stdout.Fd())) {
		return runHeadless(os.Stdout, st, opts, logger)
	}

	pool := runner.New(cfg.Runner.Workers, logger)
	model := tui.NewModel(pool, st, opts, cfg.UI.ShowSizes, logger)

	// Run the TUI
	p := tea.NewProgram(model, tea.WithAltScreen())

	logger.Info("starting TUI")

	if _, err := p.Run(); err != nil {
		logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}

	logger.Info("shutting down")
	pool.Wait()
	return nil
}
