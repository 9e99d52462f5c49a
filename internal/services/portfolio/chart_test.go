package portfolio

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foliolab/folio/internal/models"
)

func TestInvestorChartRendersPNG(t *testing.T) {
	storage := newMemStorage()
	day1 := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	day2 := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)

	storage.portfolio.doc = models.PortfolioDocument{
		Version: 1,
		Investors: []models.Investor{{
			Name: "Ada Lovelace",
			Allocations: []models.Allocation{{
				ID: "a1", Symbol: "AAPL", AmountInvested: 1000, DateInvested: day1,
			}},
		}},
	}
	hist := &fakeHistory{histories: map[string]*models.SymbolHistory{
		"AAPL": {Symbol: "AAPL", Points: []models.PricePoint{
			{Time: day1.Unix(), Close: 100},
			{Time: day2.Unix(), Close: 120},
		}},
	}}

	svc := newTestService(storage, nil, hist)
	png, err := svc.InvestorChart(context.Background(), "ada-lovelace")
	require.NoError(t, err)
	require.NotEmpty(t, png)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, png[:4])
}

func TestInvestorChartNormalizesStoredSymbols(t *testing.T) {
	storage := newMemStorage()
	day1 := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	day2 := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)

	// A document written before symbol normalization may carry a
	// lowercase symbol; the chart path must still find its data.
	storage.portfolio.doc = models.PortfolioDocument{
		Version: 1,
		Investors: []models.Investor{{
			Name: "Ada Lovelace",
			Allocations: []models.Allocation{{
				ID: "a1", Symbol: "aapl", AmountInvested: 1000, DateInvested: day1,
			}},
		}},
	}
	hist := &fakeHistory{histories: map[string]*models.SymbolHistory{
		"AAPL": {Symbol: "AAPL", Points: []models.PricePoint{
			{Time: day1.Unix(), Close: 100},
			{Time: day2.Unix(), Close: 120},
		}},
	}}

	svc := newTestService(storage, nil, hist)
	png, err := svc.InvestorChart(context.Background(), "ada-lovelace")
	require.NoError(t, err)
	require.NotEmpty(t, png)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, png[:4])
}

func TestInvestorChartUnknownSlug(t *testing.T) {
	svc := newTestService(newMemStorage(), nil, nil)

	_, err := svc.InvestorChart(context.Background(), "nobody")
	require.ErrorIs(t, err, models.ErrInvestorNotFound)
}

func TestInvestorChartNoSeries(t *testing.T) {
	storage := newMemStorage()
	storage.portfolio.doc = models.PortfolioDocument{
		Version: 1,
		Investors: []models.Investor{{
			Name: "Ada Lovelace",
			Allocations: []models.Allocation{{
				ID: "a1", Symbol: "ZZZZ", AmountInvested: 500,
				DateInvested: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
			}},
		}},
	}

	svc := newTestService(storage, nil, nil)
	_, err := svc.InvestorChart(context.Background(), "ada-lovelace")
	require.ErrorIs(t, err, models.ErrNoData)
}
