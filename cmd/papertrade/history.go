package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/fatih/color"
	"github.com/google/subcommands"

	"papertrader/portfolio"
	"papertrader/ui"
)

type historyCmd struct {
	limit int
}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "list executed trades, newest first" }
func (*historyCmd) Usage() string {
	return `history [-n <count>]

  Lists executed trades, newest first.
`
}

func (c *historyCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.limit, "n", 0, "show at most this many trades (0 for all)")
}

func (c *historyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, closeSession, err := openSession(ctx)
	if err != nil {
		failf("Error opening portfolio: %v\n", err)
		return subcommands.ExitFailure
	}
	defer closeSession()

	history := s.Portfolio.History()
	if len(history) == 0 {
		fmt.Fprintln(stdout, "No transactions yet.")
		return subcommands.ExitSuccess
	}

	buy, sell := color.New(color.FgGreen), color.New(color.FgRed)
	shown := 0
	for i := len(history) - 1; i >= 0; i-- {
		if c.limit > 0 && shown == c.limit {
			break
		}
		line := buy
		if history[i].Type == portfolio.Sell {
			line = sell
		}
		line.Fprintln(stdout, ui.HistoryLine(history[i]))
		shown++
	}
	return subcommands.ExitSuccess
}
