package model

import (
	"fmt"
	"strings"
)

// MarketIndex is one of the supported benchmark indices.
type MarketIndex struct {
	Code   string // short name used in config and commands
	Ticker string // retrieval identifier
	Name   string
	Region string
}

var (
	IndexNifty50 = MarketIndex{Code: "NSEI", Ticker: "^NSEI", Name: "Nifty 50", Region: "IN"}
	IndexSensex  = MarketIndex{Code: "BSESN", Ticker: "^BSESN", Name: "Sensex", Region: "IN"}
	IndexSP500   = MarketIndex{Code: "GSPC", Ticker: "^GSPC", Name: "S&P 500", Region: "US"}
)

// Indices lists the supported indices in display order.
var Indices = []MarketIndex{IndexNifty50, IndexSensex, IndexSP500}

var indexAliases = map[string]MarketIndex{
	"NSEI":    IndexNifty50,
	"^NSEI":   IndexNifty50,
	"NIFTY":   IndexNifty50,
	"NIFTY50": IndexNifty50,
	"BSESN":   IndexSensex,
	"^BSESN":  IndexSensex,
	"SENSEX":  IndexSensex,
	"GSPC":    IndexSP500,
	"^GSPC":   IndexSP500,
	"SPX":     IndexSP500,
	"SPX500":  IndexSP500,
	"SP500":   IndexSP500,
}

// LookupIndex resolves a code, ticker or alias (case-insensitive).
func LookupIndex(s string) (MarketIndex, error) {
	if idx, ok := indexAliases[strings.ToUpper(strings.TrimSpace(s))]; ok {
		return idx, nil
	}
	return MarketIndex{}, fmt.Errorf("unsupported market index %q", s)
}

// indianSuffixes are exchange suffixes already recognised by the retrieval service.
var indianSuffixes = []string{".NS", ".BO"}

// AdjustTicker applies the regional suffix rule: stocks benchmarked against an
// Indian index are looked up on NSE unless they already carry an exchange suffix.
func AdjustTicker(stock string, index MarketIndex) string {
	stock = strings.ToUpper(strings.TrimSpace(stock))
	if index.Region != "IN" {
		return stock
	}
	for _, sfx := range indianSuffixes {
		if strings.HasSuffix(stock, sfx) {
			return stock
		}
	}
	return stock + ".NS"
}
