package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/ncobase/unicourse/course"
	"github.com/ncobase/unicourse/loader"
)

func TestVersionCommandJSON(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version", "--json"})
	if err := root.Execute(); err != nil {
		t.Fatal(err)
	}
	var info map[string]any
	if err := json.Unmarshal(out.Bytes(), &info); err != nil {
		t.Fatalf("output %q: %v", out.String(), err)
	}
	if _, ok := info["version"]; !ok {
		t.Errorf("info = %v", info)
	}
}

func TestRootRegistersCommands(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"serve", "browse", "search", "show", "reindex", "version"} {
		if c, _, err := root.Find([]string{name}); err != nil || c.Name() != name {
			t.Errorf("command %s not registered", name)
		}
	}
}

func TestPrintState(t *testing.T) {
	var out bytes.Buffer
	printState(&out, loader.State{
		Items: []course.Course{{ID: "c1", Name: "Fisica", University: course.Ref{Name: "Unimi"}}},
		Page:  1,
	})
	s := out.String()
	if !strings.Contains(s, "Fisica") || !strings.Contains(s, "unknown total") {
		t.Errorf("output = %q", s)
	}
}

func TestPrintFacts(t *testing.T) {
	var out bytes.Buffer
	printFacts(&out, course.Course{
		ID:         "7",
		Name:       "Beni culturali",
		University: course.Ref{Name: "Unibo"},
		Attributes: map[string]any{
			"classe": map[string]any{"codice": "L-1", "descrizione": "Beni culturali", "totaleCfu": 180.0},
		},
	})
	s := out.String()
	for _, want := range []string{"Beni culturali\n", "Unibo", "L-1 Beni culturali (180 CFU)", "Website"} {
		if !strings.Contains(s, want) {
			t.Errorf("output missing %q:\n%s", want, s)
		}
	}
}
