package course

import (
	"cmp"
	"net/url"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortKey names a supported ordering.
type SortKey string

const (
	SortNameAsc  SortKey = "name_asc"
	SortNameDesc SortKey = "name_desc"
	SortUniAsc   SortKey = "uni_asc"
	SortCityAsc  SortKey = "city_asc"
)

// Stored field names.
const (
	FieldID         = "_id"
	FieldName       = "nomeCorso"
	FieldDiscipline = "discipline.id"
	FieldLocation   = "location.id"
	FieldUniversity = "university.id"
	FieldUniName    = "university.name"
	FieldCityName   = "location.name"
)

// Valid reports whether k is a known sort key.
func (k SortKey) Valid() bool {
	switch k {
	case SortNameAsc, SortNameDesc, SortUniAsc, SortCityAsc:
		return true
	}
	return false
}

// Sort is a resolved store ordering. The zero value orders by identifier
// only, which every store can serve without a compound index.
type Sort struct {
	Field string
	Desc  bool
}

// IsDefault reports whether s is the identifier-only ordering.
func (s Sort) IsDefault() bool {
	return s.Field == ""
}

// Sort resolves k to a store ordering. Unknown keys resolve to name ascending.
func (k SortKey) Sort() Sort {
	switch k {
	case SortNameDesc:
		return Sort{Field: FieldName, Desc: true}
	case SortUniAsc:
		return Sort{Field: FieldUniName}
	case SortCityAsc:
		return Sort{Field: FieldCityName}
	default:
		return Sort{Field: FieldName}
	}
}

// FilterSet is the full set of constraints defining one listing.
type FilterSet struct {
	Discipline string  `json:"discipline,omitempty" form:"discipline"`
	Location   string  `json:"location,omitempty" form:"location"`
	University string  `json:"university,omitempty" form:"university"`
	Query      string  `json:"q,omitempty" form:"q"`
	Sort       SortKey `json:"sort,omitempty" form:"sort"`
}

// SortKey returns the effective sort key, defaulting to name ascending.
func (f FilterSet) SortKey() SortKey {
	if f.Sort.Valid() {
		return f.Sort
	}
	return SortNameAsc
}

// Term returns the trimmed free-text query.
func (f FilterSet) Term() string {
	return strings.TrimSpace(f.Query)
}

// Active reports whether any category constraint or query is set.
func (f FilterSet) Active() bool {
	return f.Discipline != "" || f.Location != "" || f.University != "" || f.Term() != ""
}

// Encode returns the non-default parameters of f.
func (f FilterSet) Encode() url.Values {
	p := url.Values{}
	if q := f.Term(); q != "" {
		p.Set("q", q)
	}
	if f.Discipline != "" {
		p.Set("discipline", f.Discipline)
	}
	if f.Location != "" {
		p.Set("location", f.Location)
	}
	if f.University != "" {
		p.Set("university", f.University)
	}
	if k := f.SortKey(); k != SortNameAsc {
		p.Set("sort", string(k))
	}
	return p
}

// DecodeFilters is the inverse of Encode. Unknown sort keys fall back to
// name ascending.
func DecodeFilters(p url.Values) FilterSet {
	f := FilterSet{
		Discipline: strings.TrimSpace(p.Get("discipline")),
		Location:   strings.TrimSpace(p.Get("location")),
		University: strings.TrimSpace(p.Get("university")),
		Query:      strings.TrimSpace(p.Get("q")),
		Sort:       SortKey(p.Get("sort")),
	}
	f.Sort = f.SortKey()
	return f
}

// WithoutQuery returns f with the free-text query cleared.
func (f FilterSet) WithoutQuery() FilterSet {
	f.Query = ""
	return f
}

// Matches applies the category constraints to c.
func (f FilterSet) Matches(c Course) bool {
	if f.Discipline != "" && c.Discipline.ID != f.Discipline {
		return false
	}
	if f.Location != "" && c.Location.ID != f.Location {
		return false
	}
	if f.University != "" && c.University.ID != f.University {
		return false
	}
	return true
}

// CacheKey is a stable key for the category constraints of f.
func (f FilterSet) CacheKey() string {
	return "d=" + f.Discipline + "|l=" + f.Location + "|u=" + f.University
}

// SortLanguage is the collation of text sort keys, compared ignoring case.
var SortLanguage = language.Italian

// Comparator orders courses the way the store would for f's sort key,
// with the identifier as final tie-break.
func (f FilterSet) Comparator() func(a, b Course) int {
	col := collate.New(SortLanguage, collate.IgnoreCase)
	byText := func(key func(Course) string) func(a, b Course) int {
		return func(a, b Course) int {
			return col.CompareString(key(a), key(b))
		}
	}
	byName := byText(func(c Course) string { return c.Name })

	var primary []func(a, b Course) int
	switch f.SortKey() {
	case SortNameDesc:
		primary = append(primary, func(a, b Course) int { return byName(b, a) })
	case SortUniAsc:
		primary = append(primary, byText(func(c Course) string { return c.University.Name }), byName)
	case SortCityAsc:
		primary = append(primary, byText(func(c Course) string { return c.Location.Name }), byName)
	default:
		primary = append(primary, byName)
	}

	return func(a, b Course) int {
		for _, c := range primary {
			if r := c(a, b); r != 0 {
				return r
			}
		}
		return cmp.Compare(a.ID, b.ID)
	}
}
