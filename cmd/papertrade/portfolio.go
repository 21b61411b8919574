package main

import (
	"context"
	"flag"
	"fmt"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/google/subcommands"
	"golang.org/x/sync/errgroup"

	"papertrader/ui"
)

// concurrent price requests while valuing holdings
const valuationWorkers = 4

type portfolioCmd struct {
	market string
}

func (*portfolioCmd) Name() string     { return "portfolio" }
func (*portfolioCmd) Synopsis() string { return "show cash and holdings valued at live prices" }
func (*portfolioCmd) Usage() string {
	return `portfolio [-market crypto|stock]

  Prints the cash balance and every holding with its current value.
  A holding whose price cannot be fetched shows "—".
`
}

func (c *portfolioCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.market, "market", "", "price source: crypto or stock")
}

func (c *portfolioCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	snap := s.Portfolio.Snapshot()
	symbols := snap.Symbols()

	// one slot per symbol, so the workers never share a write
	values := make([]string, len(symbols))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(valuationWorkers)
	for i, symbol := range symbols {
		i, symbol := i, symbol
		g.Go(func() error {
			price, err := s.Resolver.Price(gctx, symbol, market)
			if err != nil {
				values[i] = ui.Unavailable
				return nil
			}
			values[i] = ui.USD(snap.Holdings[symbol].Mul(price))
			return nil
		})
	}
	_ = g.Wait()

	color.New(color.FgYellow).Fprintln(stdout, "*** Portfolio ***")
	fmt.Fprintf(stdout, "Balance: $%s\n", ui.Fixed2(snap.Balance))
	if len(symbols) == 0 {
		fmt.Fprintln(stdout, "No holdings.")
		return subcommands.ExitSuccess
	}

	fmt.Fprintln(stdout)
	w := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "SYMBOL\tAMOUNT\tVALUE (%s)\n", market)
	for i, symbol := range symbols {
		fmt.Fprintf(w, "%s\t%s\t%s\n", symbol, ui.Quantity(snap.Holdings[symbol]), values[i])
	}
	w.Flush()

	return subcommands.ExitSuccess
}
