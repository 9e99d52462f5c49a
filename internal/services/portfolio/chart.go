package portfolio

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/foliolab/folio/internal/models"
)

// InvestorChart values one investor's holdings and renders the value
// history as a PNG. Returns ErrInvestorNotFound for unknown slugs and
// ErrNoData when the merged series is too thin to draw.
func (s *Service) InvestorChart(ctx context.Context, slug string) ([]byte, error) {
	doc, err := s.storage.PortfolioStore().GetDocument(ctx)
	if err != nil {
		return nil, err
	}

	inv := doc.FindInvestor(slug)
	if inv == nil {
		return nil, models.ErrInvestorNotFound
	}

	data := s.fetchSymbolData(ctx, investorSymbols(inv))
	histories := make(map[string]*models.SymbolHistory, len(data))
	quotes := make(map[string]*models.Quote, len(data))
	profiles := make(map[string]*models.Profile, len(data))
	for symbol, d := range data {
		histories[symbol] = d.history
		quotes[symbol] = d.quote
		profiles[symbol] = d.profile
	}

	valuations := s.engine.Valuate([]models.Investor{*inv}, histories, quotes, profiles)
	if len(valuations) == 0 || len(valuations[0].ValueHistory) < 2 {
		return nil, models.ErrNoData
	}

	return renderValueChart(inv.Name, valuations[0])
}

// investorSymbols returns the investor's unique symbols, normalized so
// fetched data lands under the same keys the engine looks up.
func investorSymbols(inv *models.Investor) []string {
	seen := make(map[string]bool, len(inv.Allocations))
	symbols := make([]string, 0, len(inv.Allocations))
	for _, alloc := range inv.Allocations {
		symbol := models.NormalizeSymbol(alloc.Symbol)
		if !seen[symbol] {
			seen[symbol] = true
			symbols = append(symbols, symbol)
		}
	}
	return symbols
}

// renderValueChart renders a PNG line chart of an investor's portfolio
// value over time. Two series: Value (blue solid) and Invested (gray
// dashed). Returns raw PNG bytes.
func renderValueChart(name string, v models.InvestorValuation) ([]byte, error) {
	points := v.ValueHistory
	if len(points) < 2 {
		return nil, fmt.Errorf("need at least 2 data points, got %d", len(points))
	}

	xValues := make([]time.Time, len(points))
	valueY := make([]float64, len(points))
	costY := make([]float64, len(points))

	for i, p := range points {
		xValues[i] = time.Unix(p.Time, 0)
		valueY[i] = p.Value
		costY[i] = v.TotalInvested
	}

	valueSeries := chart.TimeSeries{
		Name: "Value",
		Style: chart.Style{
			StrokeColor: drawing.ColorFromHex("2563eb"), // blue-600
			StrokeWidth: 2.5,
		},
		XValues: xValues,
		YValues: valueY,
	}

	costSeries := chart.TimeSeries{
		Name: "Invested",
		Style: chart.Style{
			StrokeColor:     drawing.ColorFromHex("9ca3af"), // gray-400
			StrokeWidth:     1.5,
			StrokeDashArray: []float64{5.0, 3.0},
		},
		XValues: xValues,
		YValues: costY,
	}

	graph := chart.Chart{
		Title:  name,
		Width:  900,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			TickPosition: chart.TickPositionBetweenTicks,
			ValueFormatter: func(v interface{}) string {
				if t, ok := v.(float64); ok {
					return chart.TimeFromFloat64(t).Format("Jan 06")
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("$%.0f", f)
				}
				return ""
			},
		},
		Series: []chart.Series{
			valueSeries,
			costSeries,
		},
	}

	graph.Elements = []chart.Renderable{
		chart.LegendLeft(&graph),
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}

	return buf.Bytes(), nil
}
