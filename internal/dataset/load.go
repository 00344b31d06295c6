package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// Default file names of the FAO "Production: Crops and Livestock"
// distribution. The zip unpacks into a folder named after the main
// file, so Load checks both dir/<name> and dir/<nestDir>/<name>.
const (
	MainFile     = "Production_Crops_Livestock_E_All_Data_(Normalized).csv"
	AreaCodeFile = "Production_Crops_Livestock_E_AreaCodes.csv"
	ItemCodeFile = "Production_Crops_Livestock_E_ItemCodes.csv"
	ElementsFile = "Production_Crops_Livestock_E_Elements.csv"

	nestDir = "Production_Crops_Livestock_E_All_Data_(Normalized)"
)

// sampleStride keeps every Nth data row in sampling mode. Row index 0
// is always kept.
const sampleStride = 10

var yearColPattern = regexp.MustCompile(`^Y[0-9]+$`)

// Options controls how Load reads the data directory.
type Options struct {
	// Sample keeps only every 10th data row of the primary file and
	// skips the Flag column, trading completeness for a bounded memory
	// footprint. Lossy sampling, not an error condition; the resulting
	// Dataset reports Sampled == true. Lookup tables always load in
	// full.
	Sample bool
	// MainFile overrides the primary file name. Lookup file names are
	// fixed.
	MainFile string
}

// Load reads the primary CSV plus the three lookup CSVs from dir and
// assembles the canonical Dataset. All files are Latin-1. The primary
// file may be either source shape; detection happens here, once, and
// the pivot for wide files is done during this pass. Any missing or
// unparsable file aborts the whole load with a *LoadError.
func Load(dir string, opt Options) (*Dataset, error) {
	mainName := opt.MainFile
	if mainName == "" {
		mainName = MainFile
	}
	mainPath, err := resolve(dir, mainName)
	if err != nil {
		return nil, err
	}

	ds := &Dataset{
		CellsByYear:   make(map[int]int),
		MissingByYear: make(map[int]int),
		Sampled:       opt.Sample,
		Source:        mainPath,
	}

	if err := loadLookups(dir, ds); err != nil {
		return nil, err
	}
	if err := loadMain(mainPath, opt, ds); err != nil {
		return nil, err
	}
	return ds, nil
}

// resolve finds name directly under dir, then under the conventional
// FAO subdirectory.
func resolve(dir, name string) (string, error) {
	direct := filepath.Join(dir, name)
	if _, err := os.Stat(direct); err == nil {
		return direct, nil
	}
	nested := filepath.Join(dir, nestDir, name)
	if _, err := os.Stat(nested); err == nil {
		return nested, nil
	}
	return "", loadErrf(direct, "required file not found (also tried %s)", nested)
}

// openLatin1 opens path and wraps it in an ISO 8859-1 decoder, the
// encoding the FAO distributes these files in.
func openLatin1(path string) (*os.File, *csv.Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, loadErrf(path, "open: %w", err)
	}
	r := csv.NewReader(charmap.ISO8859_1.NewDecoder().Reader(f))
	r.ReuseRecord = true
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	return f, r, nil
}

// table is a small fully-read CSV, used for the lookup files.
type table struct {
	path   string
	header []string
	rows   [][]string
}

// col returns the index of a header, or -1. Lookup headers arrive with
// stray whitespace ("Area Code "), so both sides are trimmed.
func (t *table) col(name string) int {
	for i, h := range t.header {
		if strings.TrimSpace(h) == name {
			return i
		}
	}
	return -1
}

func readTable(path string) (*table, error) {
	f, r, err := openLatin1(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	r.ReuseRecord = false

	header, err := r.Read()
	if err != nil {
		return nil, loadErrf(path, "read header: %w", err)
	}
	rows, err := r.ReadAll()
	if err != nil {
		return nil, loadErrf(path, "read rows: %w", err)
	}
	return &table{path: path, header: header, rows: rows}, nil
}

func loadLookups(dir string, ds *Dataset) error {
	areas, err := readLookup(dir, AreaCodeFile, "Area Code", "Area")
	if err != nil {
		return err
	}
	items, err := readLookup(dir, ItemCodeFile, "Item Code", "Item")
	if err != nil {
		return err
	}
	elements, err := readElements(dir)
	if err != nil {
		return err
	}
	ds.AreaCodes = areas
	ds.ItemCodes = items
	ds.Elements = elements
	return nil
}

func readLookup(dir, name, keyCol, valCol string) (map[string]string, error) {
	path, err := resolve(dir, name)
	if err != nil {
		return nil, err
	}
	t, err := readTable(path)
	if err != nil {
		return nil, err
	}
	ki, vi := t.col(keyCol), t.col(valCol)
	if ki < 0 || vi < 0 {
		return nil, loadErrf(path, "missing %q or %q column", keyCol, valCol)
	}
	out := make(map[string]string, len(t.rows))
	for _, row := range t.rows {
		if ki >= len(row) || vi >= len(row) {
			continue
		}
		key := strings.TrimSpace(row[ki])
		if key == "" {
			continue
		}
		out[key] = strings.TrimSpace(row[vi])
	}
	return out, nil
}

func readElements(dir string) (map[string]ElementInfo, error) {
	path, err := resolve(dir, ElementsFile)
	if err != nil {
		return nil, err
	}
	t, err := readTable(path)
	if err != nil {
		return nil, err
	}
	ki, ni := t.col("Element Code"), t.col("Element")
	if ki < 0 || ni < 0 {
		return nil, loadErrf(path, "missing %q or %q column", "Element Code", "Element")
	}
	ui := t.col("Unit") // not all vintages of the file carry a unit
	out := make(map[string]ElementInfo, len(t.rows))
	for _, row := range t.rows {
		if ki >= len(row) || ni >= len(row) {
			continue
		}
		key := strings.TrimSpace(row[ki])
		if key == "" {
			continue
		}
		info := ElementInfo{Name: strings.TrimSpace(row[ni])}
		if ui >= 0 && ui < len(row) {
			info.Unit = strings.TrimSpace(row[ui])
		}
		out[key] = info
	}
	return out, nil
}

func loadMain(path string, opt Options, ds *Dataset) error {
	f, r, err := openLatin1(path)
	if err != nil {
		return err
	}
	defer f.Close()

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return loadErrf(path, "file is empty")
		}
		return loadErrf(path, "read header: %w", err)
	}
	cols := headerIndex(header)

	// Shape detection runs once, here. Everything after this switch is
	// committed to one variant; queries never re-detect.
	if _, ok := cols["Year"]; ok {
		ds.Shape = ShapeNormalized
		return loadNormalized(path, r, cols, opt, ds)
	}
	years := yearColumns(header)
	if len(years) > 0 {
		ds.Shape = ShapeWide
		return loadWide(path, r, cols, years, opt, ds)
	}
	return loadErrf(path, "no Year column and no Y<year> columns; cannot detect shape")
}

func headerIndex(header []string) map[string]int {
	m := make(map[string]int, len(header))
	for i, h := range header {
		m[strings.TrimSpace(h)] = i
	}
	return m
}

type yearCol struct {
	idx  int
	year int
}

func yearColumns(header []string) []yearCol {
	var out []yearCol
	for i, h := range header {
		h = strings.TrimSpace(h)
		if !yearColPattern.MatchString(h) {
			continue
		}
		y, err := strconv.Atoi(h[1:])
		if err != nil {
			continue
		}
		out = append(out, yearCol{idx: i, year: y})
	}
	return out
}

// keepRow is the sampling predicate: every sampleStride-th data row by
// zero-based index, so the first data row is always kept.
func keepRow(idx int, sample bool) bool {
	if !sample {
		return true
	}
	return idx%sampleStride == 0
}

func loadNormalized(path string, r *csv.Reader, cols map[string]int, opt Options, ds *Dataset) error {
	need := func(name string) (int, error) {
		i, ok := cols[name]
		if !ok {
			return 0, loadErrf(path, "missing %q column", name)
		}
		return i, nil
	}
	areaIdx, err := need("Area")
	if err != nil {
		return err
	}
	itemIdx, err := need("Item")
	if err != nil {
		return err
	}
	elemIdx, err := need("Element")
	if err != nil {
		return err
	}
	yearIdx, err := need("Year")
	if err != nil {
		return err
	}
	valIdx, err := need("Value")
	if err != nil {
		return err
	}
	unitIdx, hasUnit := cols["Unit"]
	flagIdx, hasFlag := cols["Flag"]
	if opt.Sample {
		// Sampling mode parses the reduced column set only.
		hasFlag = false
	}

	in := newInterner()
	row := 0
	for {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return loadErrf(path, "row %d: %w", row+2, err)
		}
		idx := row
		row++
		if !keepRow(idx, opt.Sample) {
			continue
		}
		at := func(i int) string {
			if i < 0 || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}
		yearStr := at(yearIdx)
		year, err := strconv.Atoi(yearStr)
		if err != nil {
			return loadErrf(path, "row %d: bad Year %q", idx+2, yearStr)
		}

		out := Record{
			Area:    in.get(at(areaIdx)),
			Item:    in.get(at(itemIdx)),
			Element: in.get(at(elemIdx)),
			Year:    year,
		}
		if hasUnit {
			out.Unit = in.get(at(unitIdx))
		}
		if hasFlag {
			out.Flag = in.get(at(flagIdx))
		}
		valStr := at(valIdx)
		ds.CellsByYear[year]++
		if valStr == "" {
			ds.MissingByYear[year]++
		} else {
			v, err := strconv.ParseFloat(valStr, 64)
			if err != nil {
				return loadErrf(path, "row %d: bad Value %q", idx+2, valStr)
			}
			out.Value = v
			out.HasValue = true
		}
		ds.Records = append(ds.Records, out)
	}
}

func loadWide(path string, r *csv.Reader, cols map[string]int, years []yearCol, opt Options, ds *Dataset) error {
	need := func(name string) (int, error) {
		i, ok := cols[name]
		if !ok {
			return 0, loadErrf(path, "missing %q column", name)
		}
		return i, nil
	}
	areaIdx, err := need("Area")
	if err != nil {
		return err
	}
	itemIdx, err := need("Item")
	if err != nil {
		return err
	}
	elemIdx, err := need("Element")
	if err != nil {
		return err
	}
	unitIdx, hasUnit := cols["Unit"]

	in := newInterner()
	row := 0
	for {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return loadErrf(path, "row %d: %w", row+2, err)
		}
		idx := row
		row++
		if !keepRow(idx, opt.Sample) {
			continue
		}
		at := func(i int) string {
			if i < 0 || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}
		area := in.get(at(areaIdx))
		item := in.get(at(itemIdx))
		elem := in.get(at(elemIdx))
		unit := ""
		if hasUnit {
			unit = in.get(at(unitIdx))
		}
		// One slot per year column. Empty cells are counted and then
		// dropped; the pivot emits Records only for present values.
		for _, yc := range years {
			ds.CellsByYear[yc.year]++
			cell := at(yc.idx)
			if cell == "" {
				ds.MissingByYear[yc.year]++
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return loadErrf(path, "row %d: bad %s value %q", idx+2, fmt.Sprintf("Y%d", yc.year), cell)
			}
			ds.Records = append(ds.Records, Record{
				Area:     area,
				Item:     item,
				Element:  elem,
				Year:     yc.year,
				Value:    v,
				HasValue: true,
				Unit:     unit,
			})
		}
	}
}

// interner dedupes dimension strings. The primary file repeats the same
// handful of Area/Item/Element/Unit strings across millions of rows,
// and csv.Reader with ReuseRecord hands back views into a shared
// buffer, so each kept string must be copied exactly once.
type interner map[string]string

func newInterner() interner { return make(interner) }

func (in interner) get(s string) string {
	if s == "" {
		return ""
	}
	if v, ok := in[s]; ok {
		return v
	}
	v := strings.Clone(s)
	in[v] = v
	return v
}
