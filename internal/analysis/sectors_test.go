package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"investpath/internal/providers"
)

func TestScoreSectorsFormula(t *testing.T) {
	sectors := []providers.SectorData{
		{Name: "Technology", GrowthRate: 12.0, MarketCap: 21.4e9, Momentum: 0.8},
		{Name: "Utilities", GrowthRate: 2.0, MarketCap: 1.5e9, Momentum: 0.3},
	}

	rankings := ScoreSectors(sectors, nil)
	require.Len(t, rankings, 2)

	// 12*0.5 + 21.4*0.3 + 0.8*0.2 = 6 + 6.42 + 0.16 = 12.58
	assert.Equal(t, 12.58, rankings[0].Score)
	assert.Equal(t, "Technology", rankings[0].Sector)
	assert.Equal(t, 1, rankings[0].Rank)

	// 2*0.5 + 1.5*0.3 + 0.3*0.2 = 1 + 0.45 + 0.06 = 1.51
	assert.Equal(t, 1.51, rankings[1].Score)
}

func TestScoreSectorsSortedNonIncreasing(t *testing.T) {
	sectors := []providers.SectorData{
		{Name: "A", GrowthRate: 1},
		{Name: "B", GrowthRate: 20},
		{Name: "C", GrowthRate: 8},
		{Name: "D", GrowthRate: 8},
	}

	rankings := ScoreSectors(sectors, nil)
	for i := 1; i < len(rankings); i++ {
		assert.GreaterOrEqual(t, rankings[i-1].Score, rankings[i].Score)
	}
	// Equal scores keep input order.
	assert.Equal(t, "C", rankings[1].Sector)
	assert.Equal(t, "D", rankings[2].Sector)
}

func TestScoreSectorsRationaleThresholds(t *testing.T) {
	cases := []struct {
		name     string
		growth   float64
		momentum float64
		want     string
	}{
		{"strong positive", 12, 0.9, "strong growth with positive momentum"},
		{"moderate neutral", 7, 0.5, "moderate growth with neutral momentum"},
		{"limited weak", 1, 0.1, "limited growth with weak momentum"},
		{"boundary growth", 10, 0.5, "moderate growth with neutral momentum"},
		{"boundary momentum", 12, 0.7, "strong growth with neutral momentum"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rankings := ScoreSectors([]providers.SectorData{
				{Name: "X", GrowthRate: tc.growth, Momentum: tc.momentum},
			}, nil)
			require.Len(t, rankings, 1)
			assert.Equal(t, tc.want, rankings[0].Rationale)
		})
	}
}

func TestScoreSectorsAppendsIndustryOutlook(t *testing.T) {
	rankings := ScoreSectors(
		[]providers.SectorData{{Name: "Healthcare", GrowthRate: 6, Momentum: 0.6}},
		[]providers.IndustryReport{{Sector: "healthcare", Outlook: "Aging demographics support demand."}},
	)
	require.Len(t, rankings, 1)
	assert.Equal(t, "moderate growth with neutral momentum. Aging demographics support demand.",
		rankings[0].Rationale)
}

func TestScoreSectorsMissingFieldsStillRank(t *testing.T) {
	rankings := ScoreSectors([]providers.SectorData{{Name: "Unknown"}}, nil)
	require.Len(t, rankings, 1)
	assert.Equal(t, 0.0, rankings[0].Score)
	assert.Equal(t, "limited growth with weak momentum", rankings[0].Rationale)
}
