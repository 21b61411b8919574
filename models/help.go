package models

import (
	"fmt"

	"github.com/charmbracelet/glamour"
	"github.com/rs/zerolog"

	"papertrader/ui"
)

const helpMarkdown = `# Paper Trader

Trade crypto and stocks with virtual money. Nothing here touches a real account.

## Keys

| Key | Action |
|---|---|
| Tab / Shift+Tab | move between fields |
| ←/→ on Market | switch between crypto and stock |
| Enter on Buy / Sell | place the order |
| Ctrl+B / Ctrl+S | buy / sell from any field |
| Ctrl+V | paste into symbol or amount |
| Ctrl+U | clear the field |
| F5 | refresh holding prices |
| F1 | toggle this help |
| Esc / Ctrl+C | quit |

## Prices

* **Crypto** prices come from CoinGecko. Use the ticker, e.g. ` + "`BTC`" + `.
* **Stock** prices come from Yahoo Finance, e.g. ` + "`AAPL`" + `.

A buy needs enough cash for *amount × price*; a sell needs the amount in your holdings.
Every executed trade is saved right away.
`

// renderHelp renders the help page once. Without a renderer the raw markdown is shown.
func renderHelp(logger zerolog.Logger) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(72),
	)
	if err != nil {
		logger.Warn().Err(err).Msg("Help renderer unavailable")
		return helpMarkdown
	}

	out, err := r.Render(helpMarkdown)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to render help")
		return helpMarkdown
	}
	return out
}

func (m *AppModel) helpView() string {
	footer := ui.HelpStyle.Render("Press F1 or Esc to go back")
	return fmt.Sprintf("%s\n%s", m.help, footer)
}
