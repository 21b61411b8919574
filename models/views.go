package models

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"papertrader/portfolio"
	"papertrader/pricing"
	"papertrader/ui"
)

func (m *AppModel) mainView() string {
	title := lipgloss.JoinHorizontal(lipgloss.Center, ui.TitleStyle.Render("📈 PAPER TRADER"), "  ", m.catalogView())

	snap := m.engine.Portfolio().Snapshot()

	var content strings.Builder
	content.WriteString(fmt.Sprintf("Balance: %s\n\n", ui.FormatBalance(snap.Balance)))
	content.WriteString(m.orderPanelView())
	content.WriteString("\n")
	content.WriteString(m.statusView())
	content.WriteString("\n\n")
	content.WriteString(ui.HeaderStyle.Render("HOLDINGS"))
	content.WriteString("\n")
	content.WriteString(m.holdingsView(snap))
	content.WriteString("\n")
	content.WriteString(ui.HeaderStyle.Render("HISTORY"))
	content.WriteString("\n")
	content.WriteString(historyView(snap.History))

	footer := ui.InfoStyle.Render("Tab: next field • Ctrl+B: buy • Ctrl+S: sell • F5: refresh • F1: help • Esc: quit")

	return fmt.Sprintf("%s\n%s\n%s", title, ui.MenuStyle.Render(content.String()), footer)
}

func (m *AppModel) catalogView() string {
	switch m.catalog {
	case catalogReady:
		return ui.DisabledStyle.Render(fmt.Sprintf("%d coins", m.catalogCount))
	case catalogFailed:
		return ui.NegativeStyle.Render("coin list unavailable")
	default:
		return ui.LoadingStyle.Render("loading coin list...")
	}
}

func (m *AppModel) orderPanelView() string {
	market := fmt.Sprintf("◀ %s ▶", marketLabel(m.Market))
	if m.Focus == FieldMarket {
		market = ui.SelectedStyle.Render(market)
	} else {
		market = ui.UnselectedStyle.Render(market)
	}

	symbol := m.inputView(m.Symbol, "BTC", FieldSymbol)
	amount := m.inputView(m.Amount, "0.1", FieldAmount)

	buy := ui.ButtonStyle.Render("Buy")
	if m.Focus == FieldBuy {
		buy = ui.FocusedButtonStyle.Render("Buy")
	}
	sell := ui.ButtonStyle.Render("Sell")
	if m.Focus == FieldSell {
		sell = ui.FocusedButtonStyle.Render("Sell")
	}

	row := lipgloss.JoinHorizontal(lipgloss.Center,
		"Market ", market, "   Symbol ", symbol, "   Amount ", amount, "   ", buy, " ", sell,
	)
	if m.Pending > 0 {
		row += "  " + ui.LoadingStyle.Render("🔄 Executing...")
	}
	return row + "\n"
}

func (m *AppModel) inputView(value, placeholder string, field Field) string {
	if m.Focus != field {
		if value == "" {
			return ui.BlurredInputStyle.Render(ui.DisabledStyle.Render(placeholder))
		}
		return ui.BlurredInputStyle.Render(value)
	}
	return ui.InputStyle.Render(value + "│")
}

func (m *AppModel) statusView() string {
	if m.Status == "" {
		return ""
	}
	switch m.statusKind {
	case statusError:
		return ui.NegativeStyle.Render("❌ " + m.Status)
	case statusSuccess:
		return ui.PositiveStyle.Render("✅ " + m.Status)
	default:
		return ui.NeutralStyle.Render(m.Status)
	}
}

// holdings table column widths
const (
	symbolWidth = 10
	numberWidth = 16
)

func (m *AppModel) holdingsView(snap portfolio.Snapshot) string {
	symbols := snap.Symbols()
	if len(symbols) == 0 {
		return "No holdings yet.\n"
	}

	var b strings.Builder
	b.WriteString(ui.TableHeaderStyle.Render(lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(symbolWidth).Render("Symbol"),
		ui.Column("Amount", numberWidth),
		ui.Column("Price", numberWidth),
		ui.Column("Value", numberWidth),
	)))
	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", symbolWidth+3*numberWidth) + "\n")

	for _, symbol := range symbols {
		qty := snap.Holdings[symbol]
		price, value := m.rowCells(symbol, qty)
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
			ui.TableRowStyle.Width(symbolWidth).Render(symbol),
			ui.Column(ui.TableRowStyle.Render(ui.Quantity(qty)), numberWidth),
			ui.Column(price, numberWidth),
			ui.Column(value, numberWidth),
		))
		b.WriteString("\n")
	}
	return b.String()
}

// rowCells renders what is known of a row's unit price and market value.
func (m *AppModel) rowCells(symbol string, qty decimal.Decimal) (price, value string) {
	row, ok := m.rows[symbol]
	switch {
	case !ok || row.loading:
		return "", ui.LoadingStyle.Render("Loading...")
	case row.err != nil:
		return "", ui.DisabledStyle.Render(ui.Unavailable)
	default:
		return ui.FormatPrice(row.price), ui.FormatMarketValue(qty.Mul(row.price))
	}
}

func historyView(history []portfolio.Transaction) string {
	if len(history) == 0 {
		return "No transactions yet.\n"
	}

	var b strings.Builder
	for i := len(history) - 1; i >= 0; i-- {
		b.WriteString(ui.HistoryLine(history[i]))
		b.WriteString("\n")
	}
	return b.String()
}

func marketLabel(m pricing.Market) string {
	if m == pricing.Crypto {
		return "Crypto"
	}
	return "Stock"
}
