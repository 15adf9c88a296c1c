package app

import (
	"log/slog"

	"investpath/internal/config"
	"investpath/internal/providers"
)

// BuildCatalog constructs the adapter fleet from the configured
// credentials and assembles the fallback chains. A missing key only
// logs a warning and drops that adapter; its chains degrade to the
// remaining candidates. Keyless providers are always present.
func BuildCatalog(cfg config.ProvidersConfig, cache *providers.Cache, logger *slog.Logger) *providers.Catalog {
	skip := func(name string, err error) {
		logger.Warn("provider unconfigured, fallback chains degrade",
			slog.String("provider", name),
			slog.String("reason", err.Error()),
		)
	}

	// Keyless adapters.
	yahoo := providers.NewYahoo(cache)
	worldBank := providers.NewWorldBank(cache)
	stockAnalysis := providers.NewStockAnalysis(cache)

	var quoteChain []providers.Adapter
	var profileChain []providers.Adapter
	var statementsChain []providers.Adapter
	var ratingsChain []providers.Adapter
	var macroChain []providers.Adapter
	var historyChain []providers.Adapter
	var filingsChain []providers.Adapter

	finnhub, finnhubErr := providers.NewFinnhub(cfg.FinnhubKey, cache)
	if finnhubErr != nil {
		skip("finnhub", finnhubErr)
	} else {
		quoteChain = append(quoteChain, finnhub)
		profileChain = append(profileChain, finnhub)
	}

	quoteChain = append(quoteChain, yahoo)

	if polygon, err := providers.NewPolygon(cfg.PolygonKey, cache); err != nil {
		skip("polygon", err)
	} else {
		quoteChain = append(quoteChain, polygon)
	}
	if tiingo, err := providers.NewTiingo(cfg.TiingoKey, cache); err != nil {
		skip("tiingo", err)
	} else {
		quoteChain = append(quoteChain, tiingo)
	}

	if fmp, err := providers.NewFMP(cfg.FMPKey, cache); err != nil {
		skip("fmp", err)
	} else {
		profileChain = append(profileChain, fmp)
		statementsChain = append(statementsChain, fmp)
	}
	if alphaVantage, err := providers.NewAlphaVantage(cfg.AlphaVantageKey, cache); err != nil {
		skip("alphavantage", err)
	} else {
		profileChain = append(profileChain, alphaVantage)
		statementsChain = append(statementsChain, alphaVantage)
	}
	statementsChain = append(statementsChain, yahoo)

	if benzinga, err := providers.NewBenzinga(cfg.BenzingaKey, cache); err != nil {
		skip("benzinga", err)
	} else {
		ratingsChain = append(ratingsChain, benzinga)
	}
	if tipRanks, err := providers.NewTipRanks(cfg.TipranksKey, cache); err != nil {
		skip("tipranks", err)
	} else {
		ratingsChain = append(ratingsChain, tipRanks)
	}
	// Finnhub's recommendation trends are the last resort behind the
	// dedicated analyst-coverage providers.
	if finnhubErr == nil {
		ratingsChain = append(ratingsChain, finnhub)
	}

	if fred, err := providers.NewFRED(cfg.FREDKey, cache); err != nil {
		skip("fred", err)
	} else {
		macroChain = append(macroChain, fred)
	}
	macroChain = append(macroChain, worldBank)
	if nasdaqData, err := providers.NewNasdaqData(cfg.NasdaqDataKey, cache); err != nil {
		skip("nasdaqdata", err)
	} else {
		macroChain = append(macroChain, nasdaqData)
	}

	if eodhd, err := providers.NewEODHD(cfg.EODHDKey, cache); err != nil {
		skip("eodhd", err)
	} else {
		historyChain = append(historyChain, eodhd)
	}
	if marketstack, err := providers.NewMarketstack(cfg.MarketstackKey, cache); err != nil {
		skip("marketstack", err)
	} else {
		historyChain = append(historyChain, marketstack)
	}

	if secEdgar, err := providers.NewSECEdgar(cfg.SECUserAgent, cache); err != nil {
		skip("secedgar", err)
	} else {
		filingsChain = append(filingsChain, secEdgar)
	}

	return providers.NewCatalog(cache,
		providers.NewChain(providers.NeedQuotes, quoteChain...),
		providers.NewChain(providers.NeedProfile, profileChain...),
		providers.NewChain(providers.NeedStatements, statementsChain...),
		providers.NewChain(providers.NeedRatings, ratingsChain...),
		providers.NewChain(providers.NeedMacro, macroChain...),
		providers.NewChain(providers.NeedSector, stockAnalysis),
		providers.NewChain(providers.NeedHistory, historyChain...),
		providers.NewChain(providers.NeedFilings, filingsChain...),
	)
}
