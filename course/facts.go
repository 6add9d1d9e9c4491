package course

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotAvailable is shown for facts missing from a course record.
const NotAvailable = "N/D"

const (
	heroImages    = 8
	heroImagePath = "/images/uni_images/uni_heroes/%d_hero.jpg"
)

// MinisterialClass is the degree class a course belongs to.
type MinisterialClass struct {
	Code  string `json:"code"`
	Label string `json:"label"`
	CFU   int    `json:"cfu,omitempty"`
}

// KeyFacts is the summary shown on a course detail page.
type KeyFacts struct {
	University   string           `json:"university"`
	City         string           `json:"city"`
	Language     string           `json:"language"`
	DegreeType   string           `json:"degreeType"`
	Admission    string           `json:"admission"`
	Entrance     string           `json:"entrance"`
	Delivery     string           `json:"delivery"`
	Duration     string           `json:"duration"`
	AcademicYear string           `json:"academicYear"`
	Class        MinisterialClass `json:"class"`
	URL          string           `json:"url,omitempty"`
	HeroImage    string           `json:"heroImage"`
}

// KeyFacts formats the detail page facts of c.
func (c Course) KeyFacts() KeyFacts {
	return KeyFacts{
		University:   c.UniversityName(),
		City:         c.City(),
		Language:     c.Language(),
		DegreeType:   c.firstText("degree_type.name", "tipoLaurea.descrizione"),
		Admission:    c.firstText("modalitaAccesso.descrizione"),
		Entrance:     c.firstText("program_type.name", "programmazione.descrizione"),
		Delivery:     c.firstText("modalitaDidattica.descrizione", "modalitaErogazione.descrizione"),
		Duration:     c.Duration(),
		AcademicYear: c.firstText("anno.descrizione"),
		Class:        c.MinisterialClass(),
		URL:          text(c.attr("url")),
		HeroImage:    HeroImage(c.ID),
	}
}

// Language maps the teaching language code to its Italian label. Unknown
// values are returned unchanged.
func (c Course) Language() string {
	name := text(c.attr("language.name"))
	if name == "" {
		name = text(c.attr("lingua"))
	}
	if name == "" {
		return NotAvailable
	}
	v := strings.ToUpper(name)
	switch {
	case v == "IT" || strings.Contains(v, "ITAL"):
		return "Italiano"
	case v == "EN" || strings.Contains(v, "INGL"):
		return "Inglese"
	case v == "MU" || strings.Contains(v, "MULTI"):
		return "Multilingua"
	}
	return name
}

// UniversityName returns the name of the university offering c.
func (c Course) UniversityName() string {
	if c.University.Name != "" {
		return c.University.Name
	}
	return c.firstText("nomeStruttura")
}

// City returns the course location with only its first letter capitalised.
func (c Course) City() string {
	name := c.Location.Name
	if name == "" {
		name = text(c.attr("sede.comuneDescrizione"))
	}
	if name == "" {
		return NotAvailable
	}
	lower := strings.ToLower(name)
	r, size := utf8.DecodeRuneInString(lower)
	return string(unicode.ToUpper(r)) + lower[size:]
}

// Duration returns the course length in years, e.g. "3 anni".
func (c Course) Duration() string {
	if years := text(c.attr("durataAnni")); years != "" && years != "0" {
		return years + " anni"
	}
	return NotAvailable
}

// MinisterialClass returns the degree class of c; missing parts are empty.
func (c Course) MinisterialClass() MinisterialClass {
	m := MinisterialClass{
		Code:  text(c.attr("classe.codice")),
		Label: text(c.attr("classe.descrizione")),
	}
	if n, err := strconv.Atoi(text(c.attr("classe.totaleCfu"))); err == nil {
		m.CFU = n
	}
	return m
}

// HeroImage picks one of the stock cover images for a course identifier.
// Non-numeric identifiers count as 1.
func HeroImage(id string) string {
	n, err := strconv.Atoi(strings.TrimSpace(id))
	if err != nil {
		n = 1
	}
	if n < 0 {
		n = -n
	}
	return fmt.Sprintf(heroImagePath, n%heroImages+1)
}

func (c Course) firstText(paths ...string) string {
	for _, p := range paths {
		if v := text(c.attr(p)); v != "" {
			return v
		}
	}
	return NotAvailable
}

// attr follows a dotted path through the raw course attributes.
func (c Course) attr(path string) any {
	var cur any = c.Attributes
	for _, key := range strings.Split(path, ".") {
		switch m := cur.(type) {
		case map[string]any:
			cur = m[key]
		case primitive.M:
			cur = m[key]
		case primitive.D:
			cur = nil
			for _, e := range m {
				if e.Key == key {
					cur = e.Value
					break
				}
			}
		default:
			return nil
		}
	}
	return cur
}

func text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int, int32, int64:
		return fmt.Sprint(t)
	}
	return ""
}
