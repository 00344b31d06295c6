package dataset

// Record is one measurement: a value for an (Area, Item, Element, Year)
// cell. A missing value is kept as HasValue == false rather than a
// sentinel number so downstream code can tell "zero" from "absent".
type Record struct {
	Area     string
	Item     string
	Element  string
	Year     int
	Value    float64
	HasValue bool
	Unit     string
	Flag     string
}

// Shape identifies the layout of the primary source file.
type Shape int

const (
	// ShapeNormalized is one row per (Area, Item, Element, Year) with
	// explicit Year and Value columns.
	ShapeNormalized Shape = iota
	// ShapeWide is one row per (Area, Item, Element) with one Y{year}
	// column per year.
	ShapeWide
)

func (s Shape) String() string {
	switch s {
	case ShapeNormalized:
		return "normalized"
	case ShapeWide:
		return "wide"
	default:
		return "unknown"
	}
}

// ElementInfo is one row of the Elements lookup table.
type ElementInfo struct {
	Name string
	Unit string
}

// Dataset is the canonical in-memory table plus the three lookup
// tables. It is assembled once by Load and never mutated afterwards,
// so it is safe to read from concurrent goroutines without locking.
type Dataset struct {
	Records []Record

	// Lookup tables keyed by their code columns.
	AreaCodes map[string]string
	ItemCodes map[string]string
	Elements  map[string]ElementInfo

	// Missing-value accounting, tallied at load time. A normalized row
	// is one slot; a wide row is one slot per year column. Wide-shape
	// missing cells never become Records (the pivot drops them), so the
	// loader counts them here before dropping.
	CellsByYear   map[int]int
	MissingByYear map[int]int

	Shape   Shape
	Sampled bool
	Source  string
}

// Len returns the number of canonical Records.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Records)
}

// TotalCells returns the number of source measurement slots seen at
// load time, including missing ones.
func (d *Dataset) TotalCells() int {
	n := 0
	for _, c := range d.CellsByYear {
		n += c
	}
	return n
}

// MissingCells returns the number of missing measurement slots seen at
// load time.
func (d *Dataset) MissingCells() int {
	n := 0
	for _, c := range d.MissingByYear {
		n += c
	}
	return n
}
