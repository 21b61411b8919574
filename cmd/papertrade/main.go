// Command papertrade runs simulated trades from the shell against the same state as the
// terminal UI.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path"

	"github.com/fatih/color"
	"github.com/google/subcommands"

	"papertrader/config"
	"papertrader/logger"
	"papertrader/portfolio"
	"papertrader/pricing"
	"papertrader/session"
)

var (
	stdout io.Writer = color.Output
	stderr io.Writer = color.Error

	// openSession is replaced in tests.
	openSession = openDefaultSession
)

func main() {
	completion().Complete("papertrade")

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	register(commander)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

// register adds every subcommand to c.
func register(c *subcommands.Commander) {
	c.Register(c.HelpCommand(), "")
	c.Register(c.FlagsCommand(), "")
	c.Register(c.CommandsCommand(), "")

	c.Register(&tradeCmd{side: portfolio.Buy}, "trading")
	c.Register(&tradeCmd{side: portfolio.Sell}, "trading")

	c.Register(&portfolioCmd{}, "account")
	c.Register(&historyCmd{}, "account")
	c.Register(&resetCmd{}, "account")
}

// openDefaultSession opens the state from the environment configuration. Logs go to the
// log file shared with the terminal UI so they never mix with command output.
func openDefaultSession(ctx context.Context) (*session.Session, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	closeLog := func() {}
	log, closer, err := logger.Open(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		// without a log file only warnings reach the terminal
		log = logger.NewConsole("warn")
		log.Warn().Err(err).Msg("Logging to stderr")
	} else {
		closeLog = func() { closer.Close() }
	}

	s, err := session.Open(cfg, log)
	if err != nil {
		closeLog()
		return nil, nil, err
	}
	// a failed catalog only makes crypto symbols unknown
	_ = s.LoadCatalog(ctx)

	return s, closeLog, nil
}

func parseMarket(name string, fallback pricing.Market) (pricing.Market, error) {
	switch name {
	case "":
		return fallback, nil
	case string(pricing.Crypto), string(pricing.Stock):
		return pricing.Market(name), nil
	default:
		return "", fmt.Errorf("unknown market %q, want crypto or stock", name)
	}
}

func failf(format string, args ...interface{}) {
	color.New(color.FgRed).Fprintf(stderr, format, args...)
}
