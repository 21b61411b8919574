package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"papertrader/ui"
)

type resetCmd struct {
	yes bool
}

func (*resetCmd) Name() string     { return "reset" }
func (*resetCmd) Synopsis() string { return "start over with the starting balance" }
func (*resetCmd) Usage() string {
	return `reset -yes

  Deletes all holdings and history and restores PAPERTRADER_STARTING_BALANCE in cash.
`
}

func (c *resetCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.yes, "yes", false, "confirm the reset")
}

func (c *resetCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if !c.yes {
		failf("Error: reset erases all holdings and history; pass -yes to confirm.\n")
		return subcommands.ExitUsageError
	}

	s, closeSession, err := openSession(ctx)
	if err != nil {
		failf("Error opening portfolio: %v\n", err)
		return subcommands.ExitFailure
	}
	defer closeSession()

	if err := s.Engine.Reset(s.Config.Balance()); err != nil {
		failf("Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(stdout, "Portfolio reset. Balance: $%s\n", ui.Fixed2(s.Portfolio.Balance()))
	return subcommands.ExitSuccess
}
