package models

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"papertrader/portfolio"
)

func (m *AppModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, m.quit()

	case "esc":
		// Esc leaves help first, then the program
		if m.ShowHelp {
			m.ShowHelp = false
			return m, nil
		}
		return m, m.quit()

	case "f1", "?":
		if msg.String() == "?" && m.editing() {
			break
		}
		m.ShowHelp = !m.ShowHelp
		return m, nil
	}

	if m.ShowHelp {
		return m, nil
	}

	switch msg.String() {
	case "tab", "down":
		m.Focus = (m.Focus + 1) % fieldCount
		return m, nil

	case "shift+tab", "up":
		m.Focus = (m.Focus + fieldCount - 1) % fieldCount
		return m, nil

	case "f5":
		return m, m.refreshHoldings()

	case "ctrl+b":
		return m, m.submit(portfolio.Buy)

	case "ctrl+s":
		return m, m.submit(portfolio.Sell)

	case "ctrl+v":
		return m.handlePaste()
	}

	switch m.Focus {
	case FieldMarket:
		return m.handleMarketKeys(msg)
	case FieldSymbol:
		m.Symbol = editField(m.Symbol, msg)
	case FieldAmount:
		m.Amount = editField(m.Amount, msg)
	case FieldBuy:
		if isPress(msg) {
			return m, m.submit(portfolio.Buy)
		}
	case FieldSell:
		if isPress(msg) {
			return m, m.submit(portfolio.Sell)
		}
	}

	return m, nil
}

func (m *AppModel) handleMarketKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "left", "right", " ", "enter", "h", "l":
		m.Market = m.Market.Toggle()
		return m, m.refreshHoldings()
	case "c":
		return m.selectMarket("crypto")
	case "s":
		return m.selectMarket("stock")
	}
	return m, nil
}

func (m *AppModel) selectMarket(name string) (tea.Model, tea.Cmd) {
	if string(m.Market) == name {
		return m, nil
	}
	m.Market = m.Market.Toggle()
	return m, m.refreshHoldings()
}

// handlePaste inserts the clipboard into the focused text field.
func (m *AppModel) handlePaste() (tea.Model, tea.Cmd) {
	if !m.editing() {
		return m, nil
	}

	text, err := m.paste()
	if err != nil {
		m.logger.Debug().Err(err).Msg("Clipboard read failed")
		return m, m.setStatus("Clipboard is not available.", statusError)
	}
	// only the first line, without surrounding whitespace
	text = strings.TrimSpace(strings.SplitN(text, "\n", 2)[0])

	switch m.Focus {
	case FieldSymbol:
		m.Symbol += text
	case FieldAmount:
		m.Amount += text
	}
	return m, nil
}

func (m *AppModel) editing() bool {
	return m.Focus == FieldSymbol || m.Focus == FieldAmount
}

func editField(value string, msg tea.KeyMsg) string {
	switch msg.Type {
	case tea.KeyBackspace:
		if r := []rune(value); len(r) > 0 {
			return string(r[:len(r)-1])
		}
	case tea.KeyCtrlU:
		return ""
	case tea.KeyRunes:
		return value + string(msg.Runes)
	}
	return value
}

func isPress(msg tea.KeyMsg) bool {
	return msg.Type == tea.KeyEnter || msg.Type == tea.KeySpace
}
