package main

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/fatih/color"
	"github.com/google/subcommands"

	"papertrader/portfolio"
	"papertrader/trading"
	"papertrader/ui"
)

type tradeCmd struct {
	side   portfolio.Side
	market string
}

func (c *tradeCmd) Name() string { return string(c.side) }
func (c *tradeCmd) Synopsis() string {
	return fmt.Sprintf("%s an amount of a symbol at the live price", c.side)
}
func (c *tradeCmd) Usage() string {
	return fmt.Sprintf(`%s [-market crypto|stock] <symbol> <amount>

  Executes a simulated %s at the current price and saves the result.
  The market defaults to PAPERTRADER_MARKET.
`, c.side, c.side)
}

func (c *tradeCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.market, "market", "", "price source: crypto or stock")
}

func (c *tradeCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 2 {
		failf("Error: %s needs a symbol and an amount.\n", c.side)
		return subcommands.ExitUsageError
	}

	s, closeSession, err := openSession(ctx)
	if err != nil {
		failf("Error opening portfolio: %v\n", err)
		return subcommands.ExitFailure
	}
	defer closeSession()
	ctx = s.Context(ctx)

	market, err := parseMarket(c.market, s.Market())
	if err != nil {
		failf("Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	order, err := trading.ParseOrder(c.side, f.Arg(0), f.Arg(1), market)
	if err != nil {
		failf("%s\n", trading.UserMessage(err))
		return subcommands.ExitFailure
	}

	result, err := s.Engine.Execute(ctx, order)
	if err != nil && !errors.Is(err, trading.ErrNotSaved) {
		failf("%s\n", trading.UserMessage(err))
		return subcommands.ExitFailure
	}

	color.New(color.FgGreen).Fprintln(stdout, trading.SuccessMessage(result))
	fmt.Fprintf(stdout, "Balance: $%s\n", ui.Fixed2(s.Portfolio.Balance()))

	if err != nil {
		failf("%s\n", trading.UserMessage(err))
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
