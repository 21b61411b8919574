package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"papertrader/config"
	"papertrader/logger"
	"papertrader/models"
	"papertrader/session"
)

func main() {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "papertrader needs an interactive terminal; use papertrade for scripting")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	log, closer, err := logger.Open(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening log file: %v\n", err)
		os.Exit(1)
	}
	defer closer.Close()

	sess, err := session.Open(cfg, log)
	if err != nil {
		log.Error().Err(err).Msg("Failed to open session")
		fmt.Fprintf(os.Stderr, "Error opening %s: %v\n", cfg.StateFile, err)
		closer.Close()
		os.Exit(1)
	}

	log.Info().Str("state", cfg.StateFile).Str("market", string(sess.Market())).Msg("Starting paper trader")

	model := models.NewSessionModel(sess, log)
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Error().Err(err).Msg("Program exited with error")
		fmt.Printf("Error running program: %v", err)
		closer.Close()
		os.Exit(1)
	}
}
