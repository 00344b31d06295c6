package server

import (
	"bytes"
	"net/http"

	"github.com/gorilla/mux"
	"gonum.org/v1/plot"

	"github.com/croplens/croplens/internal/charts"
	"github.com/croplens/croplens/internal/query"
)

// handleChart renders one page chart as PNG. The plot is encoded into a
// buffer first so an encoding failure can still return a clean 500.
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	kind := mux.Vars(r)["kind"]
	p, err := s.buildChart(kind, r)
	if err != nil {
		s.log.WithError(err).WithField("kind", kind).Error("chart build failed")
		http.Error(w, "chart build failed", http.StatusInternalServerError)
		return
	}
	if p == nil {
		http.NotFound(w, r)
		return
	}

	var buf bytes.Buffer
	if err := charts.EncodePNG(p, charts.Width, charts.Height, &buf); err != nil {
		s.log.WithError(err).WithField("kind", kind).Error("chart encode failed")
		http.Error(w, "chart encode failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	if _, err := w.Write(buf.Bytes()); err != nil {
		s.log.WithError(err).Error("chart write failed")
	}
}

// buildChart returns nil for an unknown kind, which the caller turns
// into a 404.
func (s *Server) buildChart(kind string, r *http.Request) (*plot.Plot, error) {
	switch kind {
	case "trends":
		area := s.stringParam(r, "area", s.firstArea())
		item := s.stringParam(r, "item", s.firstItem())
		element := s.stringParam(r, "element", s.defaultElement())
		series := query.TimeSeries(s.ds, area, item, element)
		yLabel := element
		if len(series) > 0 && series[0].Unit != "" {
			yLabel = element + " (" + series[0].Unit + ")"
		}
		return charts.TimeSeriesLines(item+", "+area, yLabel, []charts.Series{
			{Name: area, Points: series},
		})
	case "producers":
		item := s.stringParam(r, "item", s.firstItem())
		year := s.intParam(r, "year", query.LatestYear(s.ds))
		n := clampTopN(s.intParam(r, "n", defaultTopN))
		return charts.TopProducersBar(item, year, query.TopProducers(s.ds, item, year, n))
	case "compare":
		item := s.stringParam(r, "item", s.firstItem())
		year := s.intParam(r, "year", query.LatestYear(s.ds))
		return charts.ComparisonBarH(item, year, query.RegionalComparison(s.ds, item, year))
	case "portfolio":
		area := s.stringParam(r, "area", s.firstArea())
		year := s.intParam(r, "year", query.LatestYear(s.ds))
		n := clampTopN(s.intParam(r, "n", defaultTopN))
		return charts.PortfolioBar(area, year, query.CountryPortfolio(s.ds, area, year, n))
	case "overview":
		year := s.intParam(r, "year", query.LatestYear(s.ds))
		summary := query.ProductionSummary(s.ds, year)
		if len(summary) > 5 {
			summary = summary[:5]
		}
		return charts.SummaryBar(year, summary)
	default:
		return nil, nil
	}
}
