package main

import "dcf_valuation/pkg/models"

func sampleSnapshot() models.FundamentalsSnapshot {
	return models.FundamentalsSnapshot{
		Ticker:            "ACME",
		CompanyName:       "Acme Corp",
		Beta:              models.Float(1.1),
		SharesOutstanding: models.Float(50),
		EBIT:              models.Float(100),
		TaxExpense:        models.Float(21),
		Depreciation:      models.Float(10),
		InterestExpense:   models.Float(4),
		LongTermDebt:      models.Float(80),
		ShortTermDebt:     models.Float(20),
		Cash:              models.Float(30),
		MarketCap:         models.Float(2000),
		Capex:             15,
	}
}
