package models

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
)

// rowState is the live price of one holdings row.
type rowState struct {
	loading bool
	price   decimal.Decimal
	err     error
}

// refreshHoldings starts one price fetch per held symbol in the selected market.
// Fetches from an earlier refresh are cancelled and their answers ignored.
func (m *AppModel) refreshHoldings() tea.Cmd {
	if m.cancelRows != nil {
		m.cancelRows()
	}
	m.rowGen++
	m.rows = make(map[string]rowState)

	if m.engine == nil || m.prices == nil {
		return nil
	}

	ctx, cancel := context.WithCancel(m.ctx)
	m.cancelRows = cancel

	symbols := m.engine.Portfolio().Snapshot().Symbols()
	cmds := make([]tea.Cmd, 0, len(symbols))
	for _, symbol := range symbols {
		m.rows[symbol] = rowState{loading: true}
		cmds = append(cmds, m.fetchRowCmd(ctx, m.rowGen, symbol))
	}
	return tea.Batch(cmds...)
}

func (m *AppModel) fetchRowCmd(ctx context.Context, gen int, symbol string) tea.Cmd {
	prices, market := m.prices, m.Market
	return func() tea.Msg {
		price, err := prices.Price(ctx, symbol, market)
		return rowPriceMsg{gen: gen, symbol: symbol, price: price, err: err}
	}
}

func (m *AppModel) applyRowPrice(msg rowPriceMsg) {
	if msg.gen != m.rowGen {
		return
	}
	if msg.err != nil {
		m.logger.Debug().Err(msg.err).Str("symbol", msg.symbol).Msg("Holding price unavailable")
	}
	m.rows[msg.symbol] = rowState{price: msg.price, err: msg.err}
}
