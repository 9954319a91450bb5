package model

// BetaTier labels the market sensitivity band a regression beta falls into.
type BetaTier struct {
	Label       string
	Description string
}

// Assessment is the interpretation attached to an analysis for reporting.
type Assessment struct {
	Tier     BetaTier
	RSquared float64
	Warnings []string
}
