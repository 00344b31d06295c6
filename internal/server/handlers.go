package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/croplens/croplens/internal/dataset"
	"github.com/croplens/croplens/internal/query"
)

const (
	defaultTopN   = 10
	maxTopN       = 100
	explorerLimit = 100
)

type elementShare struct {
	Name  string
	Count int
	Pct   float64
}

type homeData struct {
	Active   string
	Profile  dataset.Profile
	Shape    string
	Sampled  bool
	Source   string
	Year     int
	Summary  []query.ItemTotal
	Elements []elementShare
}

type trendsData struct {
	Active   string
	Areas    []string
	Items    []string
	Elements []string
	Area     string
	Item     string
	Element  string
	Series   []query.YearValue
	Unit     string
	HasCAGR  bool
	CAGR     float64
	ChartURL string
}

type compareData struct {
	Active   string
	Items    []string
	Years    []int
	Item     string
	Year     int
	Rows     []query.AreaValue
	ChartURL string
}

type producersData struct {
	Active      string
	Items       []string
	Years       []int
	Item        string
	Year        int
	N           int
	Rows        []query.AreaValue
	WorldTotal  float64
	Average     float64
	Leader      string
	LeaderShare float64
	Unit        string
	ChartURL    string
}

type portfolioData struct {
	Active   string
	Areas    []string
	Years    []int
	Area     string
	Year     int
	N        int
	Rows     []query.ItemValue
	ChartURL string
}

type explorerData struct {
	Active   string
	Areas    []string
	Items    []string
	Elements []string
	Area     string
	Item     string
	Element  string
	Rows     []dataset.Record
	Total    int
	Capped   bool
}

type missingData struct {
	Active  string
	Report  query.MissingReport
	HasData bool
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	year := query.LatestYear(s.ds)
	summary := query.ProductionSummary(s.ds, year)
	if len(summary) > 5 {
		summary = summary[:5]
	}
	s.render(w, "home.html", homeData{
		Active:   "home",
		Profile:  s.ds.Profile(),
		Shape:    s.ds.Shape.String(),
		Sampled:  s.ds.Sampled,
		Source:   s.ds.Source,
		Year:     year,
		Summary:  summary,
		Elements: elementMix(s.ds),
	})
}

func (s *Server) handleTrends(w http.ResponseWriter, r *http.Request) {
	area := s.stringParam(r, "area", s.firstArea())
	item := s.stringParam(r, "item", s.firstItem())
	element := s.stringParam(r, "element", s.defaultElement())

	series := query.TimeSeries(s.ds, area, item, element)
	data := trendsData{
		Active:   "trends",
		Areas:    query.Areas(s.ds),
		Items:    query.Items(s.ds),
		Elements: query.ElementNames(s.ds),
		Area:     area,
		Item:     item,
		Element:  element,
		Series:   series,
	}
	if len(series) > 0 {
		data.Unit = series[0].Unit
		data.ChartURL = fmt.Sprintf("/charts/trends.png?area=%s&item=%s&element=%s",
			urlQuery(area), urlQuery(item), urlQuery(element))
	}
	if element == query.ElementProduction && len(series) >= 2 {
		first, last := series[0].Year, series[len(series)-1].Year
		if pct, ok := query.CAGR(s.ds, area, item, first, last); ok {
			data.HasCAGR = true
			data.CAGR = pct
		}
	}
	s.render(w, "trends.html", data)
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	item := s.stringParam(r, "item", s.firstItem())
	year := s.intParam(r, "year", query.LatestYear(s.ds))

	rows := query.RegionalComparison(s.ds, item, year)
	data := compareData{
		Active: "compare",
		Items:  query.Items(s.ds),
		Years:  query.Years(s.ds),
		Item:   item,
		Year:   year,
		Rows:   rows,
	}
	if len(rows) > 0 {
		data.ChartURL = fmt.Sprintf("/charts/compare.png?item=%s&year=%d", urlQuery(item), year)
	}
	s.render(w, "compare.html", data)
}

func (s *Server) handleProducers(w http.ResponseWriter, r *http.Request) {
	item := s.stringParam(r, "item", s.firstItem())
	year := s.intParam(r, "year", query.LatestYear(s.ds))
	n := clampTopN(s.intParam(r, "n", defaultTopN))

	rows := query.TopProducers(s.ds, item, year, n)
	data := producersData{
		Active: "producers",
		Items:  query.Items(s.ds),
		Years:  query.Years(s.ds),
		Item:   item,
		Year:   year,
		N:      n,
		Rows:   rows,
	}
	// Panel stats run over every reporting area, not just the top n.
	all := query.RegionalComparison(s.ds, item, year)
	for _, row := range all {
		data.WorldTotal += row.Value
	}
	if len(all) > 0 {
		data.Average = data.WorldTotal / float64(len(all))
	}
	if len(rows) > 0 {
		data.Leader = rows[0].Area
		data.Unit = rows[0].Unit
		if data.WorldTotal > 0 {
			data.LeaderShare = rows[0].Value / data.WorldTotal * 100
		}
		data.ChartURL = fmt.Sprintf("/charts/producers.png?item=%s&year=%d&n=%d", urlQuery(item), year, n)
	}
	s.render(w, "producers.html", data)
}

func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	area := s.stringParam(r, "area", s.firstArea())
	year := s.intParam(r, "year", query.LatestYear(s.ds))
	n := clampTopN(s.intParam(r, "n", defaultTopN))

	rows := query.CountryPortfolio(s.ds, area, year, n)
	data := portfolioData{
		Active: "portfolio",
		Areas:  query.Areas(s.ds),
		Years:  query.Years(s.ds),
		Area:   area,
		Year:   year,
		N:      n,
		Rows:   rows,
	}
	if len(rows) > 0 {
		data.ChartURL = fmt.Sprintf("/charts/portfolio.png?area=%s&year=%d&n=%d", urlQuery(area), year, n)
	}
	s.render(w, "portfolio.html", data)
}

func (s *Server) handleExplorer(w http.ResponseWriter, r *http.Request) {
	// Empty means "any" here, unlike the chart pages.
	area := strings.TrimSpace(r.URL.Query().Get("area"))
	item := strings.TrimSpace(r.URL.Query().Get("item"))
	element := strings.TrimSpace(r.URL.Query().Get("element"))

	rows := query.Filter(s.ds, area, item, element)
	total := len(rows)
	capped := total > explorerLimit
	if capped {
		rows = rows[:explorerLimit]
	}
	s.render(w, "explorer.html", explorerData{
		Active:   "explorer",
		Areas:    query.Areas(s.ds),
		Items:    query.Items(s.ds),
		Elements: query.ElementNames(s.ds),
		Area:     area,
		Item:     item,
		Element:  element,
		Rows:     rows,
		Total:    total,
		Capped:   capped,
	})
}

func (s *Server) handleMissing(w http.ResponseWriter, r *http.Request) {
	report := query.Missing(s.ds)
	s.render(w, "missing.html", missingData{
		Active:  "missing",
		Report:  report,
		HasData: report.TotalCells > 0,
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(map[string]any{
		"status":  "ok",
		"records": s.ds.Len(),
		"shape":   s.ds.Shape.String(),
		"sampled": s.ds.Sampled,
	})
	if err != nil {
		s.log.WithError(err).Error("healthz encode failed")
	}
}

// stringParam returns the trimmed query value or the fallback.
func (s *Server) stringParam(r *http.Request, key, fallback string) string {
	if v := strings.TrimSpace(r.URL.Query().Get(key)); v != "" {
		return v
	}
	return fallback
}

// intParam returns the parsed query value or the fallback when absent
// or unparsable.
func (s *Server) intParam(r *http.Request, key string, fallback int) int {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

func urlQuery(v string) string {
	return url.QueryEscape(v)
}

func clampTopN(n int) int {
	if n < 1 {
		return defaultTopN
	}
	if n > maxTopN {
		return maxTopN
	}
	return n
}

func (s *Server) firstArea() string {
	if areas := query.Areas(s.ds); len(areas) > 0 {
		return areas[0]
	}
	return ""
}

func (s *Server) firstItem() string {
	if items := query.Items(s.ds); len(items) > 0 {
		return items[0]
	}
	return ""
}

func (s *Server) defaultElement() string {
	elements := query.ElementNames(s.ds)
	for _, e := range elements {
		if e == query.ElementProduction {
			return e
		}
	}
	if len(elements) > 0 {
		return elements[0]
	}
	return ""
}

// elementMix counts records per element for the overview distribution.
func elementMix(ds *dataset.Dataset) []elementShare {
	counts := make(map[string]int)
	for _, rec := range ds.Records {
		counts[rec.Element]++
	}
	mix := make([]elementShare, 0, len(counts))
	for name, count := range counts {
		share := elementShare{Name: name, Count: count}
		if ds.Len() > 0 {
			share.Pct = float64(count) / float64(ds.Len()) * 100
		}
		mix = append(mix, share)
	}
	sort.Slice(mix, func(i, j int) bool {
		if mix[i].Count != mix[j].Count {
			return mix[i].Count > mix[j].Count
		}
		return mix[i].Name < mix[j].Name
	})
	return mix
}
