package trading

import (
	"errors"
	"fmt"

	"papertrader/portfolio"
)

// UserMessage turns an Execute error into the line shown to the user.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidInput):
		return "Please enter valid symbol and amount."
	case errors.Is(err, ErrInsufficientHoldings):
		return "Not enough assets to sell."
	case errors.Is(err, ErrPriceFetch):
		return "Price fetch failed. Check the symbol."
	case errors.Is(err, ErrInsufficientBalance):
		return "Insufficient balance."
	case errors.Is(err, ErrNotSaved):
		return "Trade executed but could not be saved."
	default:
		return "Trade failed: " + err.Error()
	}
}

// SuccessMessage describes an executed trade, e.g. "Bought 0.1 BTC for $5000.00.".
func SuccessMessage(r Result) string {
	verb := "Bought"
	if r.Transaction.Type == portfolio.Sell {
		verb = "Sold"
	}
	return fmt.Sprintf("%s %s %s for $%s.", verb, r.Transaction.Amount, r.Transaction.Symbol, r.Total.StringFixed(2))
}
