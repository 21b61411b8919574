package main

import (
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

var markets = predict.Set{"crypto", "stock"}

// completion describes the command line for shell completion. Install it with
// COMP_INSTALL=1 papertrade.
func completion() *complete.Command {
	trade := &complete.Command{
		Flags: map[string]complete.Predictor{"market": markets},
		Args:  predict.Something,
	}
	return &complete.Command{
		Sub: map[string]*complete.Command{
			"buy":       trade,
			"sell":      trade,
			"portfolio": {Flags: map[string]complete.Predictor{"market": markets}},
			"history":   {Flags: map[string]complete.Predictor{"n": predict.Something}},
			"reset":     {Flags: map[string]complete.Predictor{"yes": predict.Nothing}},
			"help":      {},
			"flags":     {},
			"commands":  {},
		},
	}
}
