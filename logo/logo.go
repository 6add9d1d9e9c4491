// Package logo resolves the image shown for a university.
package logo

import (
	"path"
	"strings"
	"unicode"

	"github.com/gosimple/slug"
)

const (
	DefaultBase = "/images/uni_images/uni_logos"
	DefaultLogo = "/images/logo/logo.svg"
)

// Aliases maps a university ID or name slug to its numeric logo code.
type Aliases map[string]string

// FallbackAliases are used when the alias file cannot be loaded.
var FallbackAliases = Aliases{
	"libera_universita_di_bolzano":                         "C3",
	"universita_degli_studi_suor_orsola_benincasa__napoli": "59",
	"link_campus_university":                               "A6",
	"universita_telematica_ecampus":                        "D9",
	"universita_degli_studi_di_perugia":                    "23",
}

// Lookup returns the alias of id, else of the slug of name.
func (a Aliases) Lookup(id, name string) string {
	if a == nil {
		return ""
	}
	if v := a[strings.TrimSpace(id)]; v != "" {
		return v
	}
	if s := Slugify(name); s != "" {
		return a[s]
	}
	return ""
}

// Slugify lowercases name, strips diacritics and punctuation, and joins
// words with underscores. Each whitespace run becomes one underscore, so a
// standalone dash leaves a double underscore.
func Slugify(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	parts := make([]string, len(fields))
	for i, f := range fields {
		kept := strings.Map(func(r rune) rune {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				return r
			}
			return -1
		}, f)
		parts[i] = strings.ReplaceAll(slug.Make(kept), "-", "")
	}
	return strings.Join(parts, "_")
}

func variants(base, key string) []string {
	return []string{
		path.Join(base, key+"_logo.png"),
		path.Join(base, key+"_logo.jpg"),
		path.Join(base, key+".png"),
		path.Join(base, key+".jpg"),
	}
}

// Candidates lists logo paths in priority order: the alias code, else the
// ID, else the name slug, always followed by the default logo.
func Candidates(base, id, name string, aliases Aliases) []string {
	if base == "" {
		base = DefaultBase
	}
	id = strings.TrimSpace(id)
	s := Slugify(name)

	var out []string
	switch {
	case aliases.Lookup(id, name) != "":
		out = variants(base, aliases.Lookup(id, name))
	case id != "":
		out = variants(base, id)
	case s != "":
		out = variants(base, s)
	}
	return append(out, DefaultLogo)
}

// ExpectedFilename is the file name an asset pipeline should produce.
func ExpectedFilename(id, name string, aliases Aliases) string {
	if code := aliases.Lookup(id, name); code != "" {
		return code + "_logo.png"
	}
	if id = strings.TrimSpace(id); id != "" {
		return id + "_logo.png"
	}
	return Slugify(name) + "_logo.png"
}
