// Package portfolio holds the simulated account: cash balance, holdings and the
// transaction log, and moves them to and from a storage.Store.
package portfolio

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"papertrader/storage"
)

// Storage keys. They match the keys the browser version kept in localStorage.
const (
	BalanceKey  = "sim_balance"
	HoldingsKey = "sim_portfolio"
	HistoryKey  = "sim_history"
)

// DefaultBalance is the cash a fresh account starts with.
var DefaultBalance = decimal.NewFromInt(10000)

// DateLayout formats transaction timestamps for display.
const DateLayout = "1/2/2006, 3:04:05 PM"

type Side string

const (
	Buy  Side = "buy"
	Sell Side = "sell"
)

// Transaction is one executed trade. Records are never modified once appended.
type Transaction struct {
	ID     string          `json:"id,omitempty"`
	Date   string          `json:"date"`
	Type   Side            `json:"type"`
	Symbol string          `json:"symbol"`
	Amount decimal.Decimal `json:"amount"`
	Price  decimal.Decimal `json:"price"`
}

// Total is the cash that changed hands.
func (t Transaction) Total() decimal.Decimal {
	return t.Amount.Mul(t.Price)
}

// Snapshot is a consistent copy of the account.
type Snapshot struct {
	Balance  decimal.Decimal
	Holdings map[string]decimal.Decimal
	History  []Transaction
}

// Symbols returns the held symbols in alphabetical order.
func (s Snapshot) Symbols() []string {
	symbols := make([]string, 0, len(s.Holdings))
	for symbol := range s.Holdings {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)
	return symbols
}

// Portfolio is safe for concurrent use; accessors return copies.
type Portfolio struct {
	mu       sync.RWMutex
	balance  decimal.Decimal
	holdings map[string]decimal.Decimal
	history  []Transaction
}

// New returns an empty account holding balance in cash.
func New(balance decimal.Decimal) *Portfolio {
	return &Portfolio{
		balance:  balance,
		holdings: make(map[string]decimal.Decimal),
		history:  make([]Transaction, 0),
	}
}

// Load restores the account from store. Each value that is missing or unreadable falls
// back to its default on its own: startingBalance, no holdings, no history.
func Load(store storage.Store, startingBalance decimal.Decimal) *Portfolio {
	p := New(startingBalance)

	if raw, ok := store.Get(BalanceKey); ok {
		if balance, err := decimal.NewFromString(strings.TrimSpace(raw)); err == nil && !balance.IsNegative() {
			p.balance = balance
		}
	}

	if raw, ok := store.Get(HoldingsKey); ok {
		var holdings map[string]decimal.Decimal
		if err := json.Unmarshal([]byte(raw), &holdings); err == nil {
			for symbol, qty := range holdings {
				symbol = strings.ToUpper(strings.TrimSpace(symbol))
				if symbol == "" || !qty.IsPositive() {
					continue
				}
				p.holdings[symbol] = p.holdings[symbol].Add(qty)
			}
		}
	}

	if raw, ok := store.Get(HistoryKey); ok {
		var history []Transaction
		if err := json.Unmarshal([]byte(raw), &history); err == nil && history != nil {
			p.history = history
		}
	}

	return p
}

// Save writes balance, holdings and history to store in a single batch.
func (p *Portfolio) Save(store storage.Store) error {
	p.mu.RLock()
	balance := p.balance.String()
	holdings, err := json.Marshal(p.holdings)
	if err != nil {
		p.mu.RUnlock()
		return fmt.Errorf("failed to marshal holdings: %w", err)
	}
	history, err := json.Marshal(p.history)
	p.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}

	if err := store.Set(map[string]string{
		BalanceKey:  balance,
		HoldingsKey: string(holdings),
		HistoryKey:  string(history),
	}); err != nil {
		return fmt.Errorf("failed to save portfolio: %w", err)
	}
	return nil
}

// ApplyTrade moves cash and quantity for an already validated trade and appends the
// record. It performs no checks and cannot fail.
func (p *Portfolio) ApplyTrade(side Side, symbol string, amount, price decimal.Decimal, at time.Time) Transaction {
	p.mu.Lock()
	defer p.mu.Unlock()

	total := amount.Mul(price)
	held := p.holdings[symbol]

	switch side {
	case Buy:
		p.balance = p.balance.Sub(total)
		held = held.Add(amount)
	case Sell:
		p.balance = p.balance.Add(total)
		held = held.Sub(amount)
	}

	if held.IsPositive() {
		p.holdings[symbol] = held
	} else {
		delete(p.holdings, symbol)
	}

	tx := Transaction{
		ID:     uuid.NewString(),
		Date:   at.Format(DateLayout),
		Type:   side,
		Symbol: symbol,
		Amount: amount,
		Price:  price,
	}
	p.history = append(p.history, tx)
	return tx
}

// Reset empties the account back to balance in cash.
func (p *Portfolio) Reset(balance decimal.Decimal) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.balance = balance
	p.holdings = make(map[string]decimal.Decimal)
	p.history = make([]Transaction, 0)
}

func (p *Portfolio) Balance() decimal.Decimal {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.balance
}

// Holding returns the quantity held of symbol.
func (p *Portfolio) Holding(symbol string) (decimal.Decimal, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	qty, ok := p.holdings[symbol]
	return qty, ok
}

func (p *Portfolio) Holdings() map[string]decimal.Decimal {
	p.mu.RLock()
	defer p.mu.RUnlock()

	holdings := make(map[string]decimal.Decimal, len(p.holdings))
	for symbol, qty := range p.holdings {
		holdings[symbol] = qty
	}
	return holdings
}

// History returns the records in chronological order.
func (p *Portfolio) History() []Transaction {
	p.mu.RLock()
	defer p.mu.RUnlock()

	history := make([]Transaction, len(p.history))
	copy(history, p.history)
	return history
}

func (p *Portfolio) Snapshot() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()

	holdings := make(map[string]decimal.Decimal, len(p.holdings))
	for symbol, qty := range p.holdings {
		holdings[symbol] = qty
	}
	history := make([]Transaction, len(p.history))
	copy(history, p.history)

	return Snapshot{Balance: p.balance, Holdings: holdings, History: history}
}
