package ui

import (
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"papertrader/portfolio"
)

var (
	// Main styles
	TitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#7D56F4")).
		Background(lipgloss.Color("#000000")).
		Padding(1, 2).
		Align(lipgloss.Center)

	MenuStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#874BFD")).
		Padding(1, 2).
		MarginTop(1)

	SelectedStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#EE6FF8")).
		Bold(true)

	UnselectedStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FAFAFA"))

	DisabledStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666666"))

	HeaderStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FAFAFA")).
		Background(lipgloss.Color("#7D56F4")).
		Padding(0, 1)

	InfoStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(lipgloss.Color("#874BFD"))

	// Data display styles
	ValueStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FAFAFA"))

	PositiveStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#04B575")).
		Bold(true)

	NegativeStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FF5F87")).
		Bold(true)

	NeutralStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FAFAFA"))

	// Table styles
	TableHeaderStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#7D56F4")).
		Align(lipgloss.Center)

	TableRowStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FAFAFA"))

	// Loading styles
	LoadingStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FFA500")).
		Bold(true)

	// Input styles
	InputStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FAFAFA")).
		Background(lipgloss.Color("#874BFD")).
		Padding(0, 1)

	BlurredInputStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FAFAFA")).
		Background(lipgloss.Color("#333333")).
		Padding(0, 1)

	HelpStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666666"))

	// Button styles
	ButtonStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FAFAFA")).
		Background(lipgloss.Color("#444444")).
		Padding(0, 2)

	FocusedButtonStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FAFAFA")).
		Background(lipgloss.Color("#7D56F4")).
		Bold(true).
		Padding(0, 2)

	// Portfolio specific styles
	PriceStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FFA500")).
		Bold(true)

	MarketValueStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#00CED1")).
		Bold(true)
)

// Unavailable stands in for a value whose price could not be fetched.
const Unavailable = "—"

// USD formats d as dollars and cents with thousands separators, e.g. "$5,000.00".
func USD(d decimal.Decimal) string {
	cents := d.Shift(2).Round(0).IntPart()
	return money.New(cents, money.USD).Display()
}

// Fixed2 formats d with exactly two decimals and no separators, e.g. "5000.00".
func Fixed2(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// Quantity formats an asset amount without trailing zeros.
func Quantity(d decimal.Decimal) string {
	return d.String()
}

// Column right-aligns a rendered cell in a column of the given width.
func Column(cell string, width int) string {
	return lipgloss.NewStyle().Width(width).Align(lipgloss.Right).Render(cell)
}

func FormatBalance(d decimal.Decimal) string {
	return ValueStyle.Render("$" + Fixed2(d))
}

func FormatPrice(d decimal.Decimal) string {
	return PriceStyle.Render(USD(d))
}

func FormatMarketValue(d decimal.Decimal) string {
	return MarketValueStyle.Render(USD(d))
}

// HistoryLine renders one record as "[date] BUY amount SYMBOL @ $price".
func HistoryLine(tx portfolio.Transaction) string {
	return fmt.Sprintf("[%s] %s %s %s @ $%s",
		tx.Date, strings.ToUpper(string(tx.Type)), Quantity(tx.Amount), tx.Symbol, tx.Price.String())
}
