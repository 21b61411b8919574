package trading

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"pgregory.net/rapid"

	"papertrader/portfolio"
	"papertrader/pricing"
	"papertrader/storage"
)

var decimalEqual = cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) })

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fakePrices struct {
	prices map[string]decimal.Decimal
	calls  int
}

func (f *fakePrices) Price(_ context.Context, symbol string, _ pricing.Market) (decimal.Decimal, error) {
	f.calls++
	if price, ok := f.prices[symbol]; ok {
		return price, nil
	}
	return decimal.Zero, pricing.ErrUnknownSymbol
}

type brokenStore struct{ *storage.MemoryStore }

func (brokenStore) Set(map[string]string) error { return errors.New("read-only file system") }

func newEngine(balance string, prices map[string]decimal.Decimal) (*Engine, *fakePrices, *storage.MemoryStore) {
	store := storage.NewMemoryStore(nil)
	src := &fakePrices{prices: prices}
	e := NewEngine(portfolio.New(d(balance)), store, src, Config{}, zerolog.Nop())
	e.now = func() time.Time { return time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC) }
	return e, src, store
}

func TestExecute_Examples(t *testing.T) {
	tests := []struct {
		name        string
		balance     string
		holdings    map[string]string
		order       Order
		wantErr     error
		wantBalance string
		wantHeld    string
		wantMessage string
	}{
		{
			name:        "buy within balance",
			balance:     "10000",
			order:       Order{Side: portfolio.Buy, Symbol: "btc", Amount: d("0.1"), Market: pricing.Crypto},
			wantBalance: "5000",
			wantHeld:    "0.1",
			wantMessage: "Bought 0.1 BTC for $5000.00.",
		},
		{
			name:        "buy over balance",
			balance:     "10000",
			order:       Order{Side: portfolio.Buy, Symbol: "BTC", Amount: d("2"), Market: pricing.Crypto},
			wantErr:     ErrInsufficientBalance,
			wantBalance: "10000",
			wantMessage: "Insufficient balance.",
		},
		{
			name:        "sell everything",
			balance:     "0",
			holdings:    map[string]string{"AAPL": "5"},
			order:       Order{Side: portfolio.Sell, Symbol: "AAPL", Amount: d("5"), Market: pricing.Stock},
			wantBalance: "500",
			wantMessage: "Sold 5 AAPL for $500.00.",
		},
		{
			name:        "sell more than held",
			balance:     "0",
			holdings:    map[string]string{"AAPL": "5"},
			order:       Order{Side: portfolio.Sell, Symbol: "AAPL", Amount: d("6"), Market: pricing.Stock},
			wantErr:     ErrInsufficientHoldings,
			wantBalance: "0",
			wantHeld:    "5",
			wantMessage: "Not enough assets to sell.",
		},
		{
			name:        "unknown symbol",
			balance:     "10000",
			order:       Order{Side: portfolio.Buy, Symbol: "NOPE", Amount: d("1"), Market: pricing.Crypto},
			wantErr:     ErrPriceFetch,
			wantBalance: "10000",
			wantMessage: "Price fetch failed. Check the symbol.",
		},
		{
			name:        "blank symbol",
			balance:     "10000",
			order:       Order{Side: portfolio.Buy, Symbol: "  ", Amount: d("1"), Market: pricing.Crypto},
			wantErr:     ErrInvalidInput,
			wantBalance: "10000",
			wantMessage: "Please enter valid symbol and amount.",
		},
	}

	prices := map[string]decimal.Decimal{"BTC": d("50000"), "AAPL": d("100")}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _, _ := newEngine(tt.balance, prices)
			for symbol, qty := range tt.holdings {
				e.portfolio.ApplyTrade(portfolio.Buy, symbol, d(qty), decimal.Zero, time.Now())
			}
			symbol := NormalizeSymbol(tt.order.Symbol)

			result, err := e.Execute(context.Background(), tt.order)

			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Execute() error = %v, want %v", err, tt.wantErr)
			}
			if got := e.portfolio.Balance(); !got.Equal(d(tt.wantBalance)) {
				t.Errorf("Balance() = %v, want %v", got, tt.wantBalance)
			}
			held, ok := e.portfolio.Holding(symbol)
			if tt.wantHeld == "" && ok {
				t.Errorf("Holding(%s) = %v, want no entry", symbol, held)
			}
			if tt.wantHeld != "" && !held.Equal(d(tt.wantHeld)) {
				t.Errorf("Holding(%s) = %v, want %v", symbol, held, tt.wantHeld)
			}

			var msg string
			if err != nil {
				msg = UserMessage(err)
			} else {
				msg = SuccessMessage(result)
			}
			if msg != tt.wantMessage {
				t.Errorf("message = %q, want %q", msg, tt.wantMessage)
			}
		})
	}
}

func TestExecute_PriceErrorKeepsCause(t *testing.T) {
	e, _, _ := newEngine("100", nil)

	_, err := e.Execute(context.Background(), Order{Side: portfolio.Buy, Symbol: "XYZ", Amount: d("1"), Market: pricing.Crypto})

	if !errors.Is(err, ErrPriceFetch) || !errors.Is(err, pricing.ErrUnknownSymbol) {
		t.Errorf("Execute() error = %v, want ErrPriceFetch wrapping ErrUnknownSymbol", err)
	}
}

func TestExecute_ValidationOrder(t *testing.T) {
	e, src, _ := newEngine("100", map[string]decimal.Decimal{"BTC": d("1")})

	// holdings are checked before the price lookup
	if _, err := e.Execute(context.Background(), Order{Side: portfolio.Sell, Symbol: "BTC", Amount: d("1"), Market: pricing.Crypto}); !errors.Is(err, ErrInsufficientHoldings) {
		t.Fatalf("Execute() error = %v", err)
	}
	if src.calls != 0 {
		t.Errorf("price looked up %d times for a sell with no holdings", src.calls)
	}

	// the balance check needs the price
	if _, err := e.Execute(context.Background(), Order{Side: portfolio.Buy, Symbol: "BTC", Amount: d("1000"), Market: pricing.Crypto}); !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("Execute() error = %v", err)
	}
	if src.calls != 1 {
		t.Errorf("price calls = %d, want 1", src.calls)
	}
}

func TestExecute_HugeExponentRejectedQuickly(t *testing.T) {
	e, src, _ := newEngine("100", map[string]decimal.Decimal{"BTC": d("1")})

	done := make(chan error, 1)
	go func() {
		_, err := e.Execute(context.Background(), Order{Side: portfolio.Sell, Symbol: "btc", Amount: decimal.New(1, 400000000), Market: pricing.Crypto})
		done <- err
	}()

	select {
	case err := <-done:
		if !errors.Is(err, ErrInvalidInput) {
			t.Errorf("Execute() error = %v, want ErrInvalidInput", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Execute() did not return for an amount with a huge exponent")
	}
	if src.calls != 0 {
		t.Errorf("price calls = %d, want 0", src.calls)
	}
}

// gatedPrices reports each lookup on entered and answers once gate is closed or ctx ends.
type gatedPrices struct {
	price   decimal.Decimal
	entered chan struct{}
	gate    chan struct{}
}

func (g *gatedPrices) Price(ctx context.Context, _ string, _ pricing.Market) (decimal.Decimal, error) {
	g.entered <- struct{}{}
	select {
	case <-g.gate:
		return g.price, nil
	case <-ctx.Done():
		return decimal.Zero, ctx.Err()
	}
}

func TestExecute_OverlappingTradesAreSerialized(t *testing.T) {
	src := &gatedPrices{price: d("60"), entered: make(chan struct{}, 2), gate: make(chan struct{})}
	p := portfolio.New(d("100"))
	e := NewEngine(p, storage.NewMemoryStore(nil), src, Config{}, zerolog.Nop())
	order := Order{Side: portfolio.Buy, Symbol: "BTC", Amount: d("1"), Market: pricing.Crypto}

	var wg sync.WaitGroup
	errs := make([]error, 2)
	start := func(i int) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = e.Execute(context.Background(), order)
		}()
	}

	start(0)
	<-src.entered
	start(1)

	// the second trade must wait for the first to finish
	select {
	case <-src.entered:
		t.Fatal("second trade looked up a price while the first was in flight")
	case <-time.After(50 * time.Millisecond):
	}

	close(src.gate)
	wg.Wait()

	var ok, short int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrInsufficientBalance):
			short++
		default:
			t.Errorf("Execute() unexpected error = %v", err)
		}
	}
	if ok != 1 || short != 1 {
		t.Errorf("got %d executed and %d rejected, want 1 and 1", ok, short)
	}
	if !p.Balance().Equal(d("40")) {
		t.Errorf("Balance() = %v, want 40", p.Balance())
	}
}

func TestExecute_CancelReleasesWaitingTrades(t *testing.T) {
	src := &gatedPrices{price: d("1"), entered: make(chan struct{}, 2), gate: make(chan struct{})}
	e := NewEngine(portfolio.New(d("100")), storage.NewMemoryStore(nil), src, Config{}, zerolog.Nop())
	order := Order{Side: portfolio.Buy, Symbol: "BTC", Amount: d("1"), Market: pricing.Crypto}

	ctx, cancel := context.WithCancel(context.Background())
	first := make(chan error, 1)
	go func() {
		_, err := e.Execute(ctx, order)
		first <- err
	}()
	<-src.entered

	cancel()
	if err := <-first; !errors.Is(err, ErrPriceFetch) || !errors.Is(err, context.Canceled) {
		t.Fatalf("cancelled Execute() error = %v", err)
	}

	close(src.gate)
	if _, err := e.Execute(context.Background(), order); err != nil {
		t.Errorf("Execute() after a cancelled lookup error = %v", err)
	}
}

func TestExecute_PrecheckCash(t *testing.T) {
	e, src, _ := newEngine("0", map[string]decimal.Decimal{"BTC": d("1")})
	e.config.PrecheckCash = true

	_, err := e.Execute(context.Background(), Order{Side: portfolio.Buy, Symbol: "BTC", Amount: d("1"), Market: pricing.Crypto})

	if !errors.Is(err, ErrInsufficientBalance) {
		t.Errorf("Execute() error = %v, want ErrInsufficientBalance", err)
	}
	if src.calls != 0 {
		t.Errorf("price calls = %d, want 0", src.calls)
	}
}

func TestExecute_Persists(t *testing.T) {
	e, _, store := newEngine("10000", map[string]decimal.Decimal{"ETH": d("2500")})

	result, err := e.Execute(context.Background(), Order{Side: portfolio.Buy, Symbol: "eth", Amount: d("2"), Market: pricing.Crypto})
	if err != nil {
		t.Fatalf("Execute() unexpected error = %v", err)
	}
	if result.Transaction.Date != "1/2/2024, 9:30:00 AM" {
		t.Errorf("Date = %q", result.Transaction.Date)
	}

	loaded := portfolio.Load(store, portfolio.DefaultBalance)
	if diff := cmp.Diff(e.portfolio.Snapshot(), loaded.Snapshot(), decimalEqual); diff != "" {
		t.Errorf("stored state mismatch (-memory +stored):\n%s", diff)
	}
}

func TestExecute_SaveFailure(t *testing.T) {
	src := &fakePrices{prices: map[string]decimal.Decimal{"BTC": d("10")}}
	p := portfolio.New(d("100"))
	e := NewEngine(p, brokenStore{storage.NewMemoryStore(nil)}, src, Config{}, zerolog.Nop())

	result, err := e.Execute(context.Background(), Order{Side: portfolio.Buy, Symbol: "BTC", Amount: d("1"), Market: pricing.Crypto})

	if !errors.Is(err, ErrNotSaved) {
		t.Fatalf("Execute() error = %v, want ErrNotSaved", err)
	}
	if result.Transaction.ID == "" || !p.Balance().Equal(d("90")) {
		t.Errorf("trade should stay applied in memory, got result %+v balance %v", result, p.Balance())
	}
}

func TestReset(t *testing.T) {
	e, _, store := newEngine("10", map[string]decimal.Decimal{"BTC": d("1")})
	if _, err := e.Execute(context.Background(), Order{Side: portfolio.Buy, Symbol: "BTC", Amount: d("1"), Market: pricing.Crypto}); err != nil {
		t.Fatal(err)
	}

	if err := e.Reset(portfolio.DefaultBalance); err != nil {
		t.Fatalf("Reset() unexpected error = %v", err)
	}
	if got, _ := store.Get(portfolio.HistoryKey); got != "[]" {
		t.Errorf("stored history = %q, want []", got)
	}
}

func TestParseOrder(t *testing.T) {
	tests := []struct {
		symbol, amount string
		wantErr        bool
		wantSymbol     string
	}{
		{symbol: " btc ", amount: "0.5", wantSymbol: "BTC"},
		{symbol: "aapl", amount: " 3 ", wantSymbol: "AAPL"},
		{symbol: "", amount: "1", wantErr: true},
		{symbol: "BTC", amount: "", wantErr: true},
		{symbol: "BTC", amount: "abc", wantErr: true},
		{symbol: "BTC", amount: "0", wantErr: true},
		{symbol: "BTC", amount: "-1", wantErr: true},
		{symbol: "BTC", amount: "1e400000000", wantErr: true},
		{symbol: "BTC", amount: "1e-400000000", wantErr: true},
		{symbol: "BTC", amount: "1e400", wantErr: true},
		{symbol: "BTC", amount: "1e-400", wantErr: true},
		{symbol: "BTC", amount: "1e-8", wantSymbol: "BTC"},
	}

	for _, tt := range tests {
		order, err := ParseOrder(portfolio.Buy, tt.symbol, tt.amount, pricing.Crypto)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("ParseOrder(%q, %q) error = %v, want ErrInvalidInput", tt.symbol, tt.amount, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseOrder(%q, %q) unexpected error = %v", tt.symbol, tt.amount, err)
			continue
		}
		if order.Symbol != tt.wantSymbol {
			t.Errorf("ParseOrder(%q, %q).Symbol = %q, want %q", tt.symbol, tt.amount, order.Symbol, tt.wantSymbol)
		}
	}
}

// Random order sequences never drive the balance negative, never leave an empty holding,
// and a rejected order leaves the portfolio exactly as it was.
func TestExecute_Invariants(t *testing.T) {
	symbols := []string{"BTC", "ETH", "AAPL", "GONE"}

	rapid.Check(t, func(t *rapid.T) {
		prices := map[string]decimal.Decimal{
			"BTC":  decimal.New(rapid.Int64Range(1, 10_000_000).Draw(t, "btc"), -2),
			"ETH":  decimal.New(rapid.Int64Range(1, 500_000).Draw(t, "eth"), -2),
			"AAPL": decimal.New(rapid.Int64Range(1, 50_000).Draw(t, "aapl"), -2),
		}
		e, _, _ := newEngine("10000", prices)
		steps := rapid.IntRange(1, 40).Draw(t, "steps")

		for i := 0; i < steps; i++ {
			order := Order{
				Side:   rapid.SampledFrom([]portfolio.Side{portfolio.Buy, portfolio.Sell}).Draw(t, "side"),
				Symbol: rapid.SampledFrom(symbols).Draw(t, "symbol"),
				Amount: decimal.New(rapid.Int64Range(1, 1000).Draw(t, "amount"), -1),
				Market: pricing.Crypto,
			}
			before := e.portfolio.Snapshot()

			_, err := e.Execute(context.Background(), order)

			after := e.portfolio.Snapshot()
			if err != nil {
				if diff := cmp.Diff(before, after, decimalEqual); diff != "" {
					t.Fatalf("rejected %v changed state:\n%s", order, diff)
				}
			} else if len(after.History) != len(before.History)+1 {
				t.Fatalf("executed %v appended %d records", order, len(after.History)-len(before.History))
			}
			if after.Balance.IsNegative() {
				t.Fatalf("balance went negative: %v", after.Balance)
			}
			for symbol, qty := range after.Holdings {
				if !qty.IsPositive() {
					t.Fatalf("holding %s = %v", symbol, qty)
				}
			}
		}
	})
}
