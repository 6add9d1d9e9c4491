package repository

import (
	"errors"
	"reflect"
	"testing"

	"github.com/ncobase/unicourse/course"
	"github.com/ncobase/unicourse/data"
	"github.com/ncobase/unicourse/paging"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCategoryFilter(t *testing.T) {
	got := categoryFilter(course.FilterSet{Discipline: "d1", University: "u1", Query: "ignored"})
	want := bson.D{{Key: course.FieldDiscipline, Value: "d1"}, {Key: course.FieldUniversity, Value: "u1"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("categoryFilter() = %v, want %v", got, want)
	}
	if len(categoryFilter(course.FilterSet{})) != 0 {
		t.Error("expected empty filter")
	}
}

func TestPageFilterDefaultSort(t *testing.T) {
	got := pageFilter(course.FilterSet{}, course.Sort{}, &paging.Cursor{ID: "c9"})
	want := bson.D{{Key: "_id", Value: bson.D{{Key: "$gt", Value: "c9"}}}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("pageFilter() = %v, want %v", got, want)
	}
}

func TestPageFilterKeyset(t *testing.T) {
	s := course.SortNameDesc.Sort()
	got := pageFilter(course.FilterSet{Location: "l1"}, s, &paging.Cursor{Value: "Fisica", ID: "c3"})
	want := bson.D{
		{Key: course.FieldLocation, Value: "l1"},
		{Key: "$or", Value: bson.A{
			bson.D{{Key: course.FieldName, Value: bson.D{{Key: "$lt", Value: "Fisica"}}}},
			bson.D{{Key: course.FieldName, Value: "Fisica"}, {Key: "_id", Value: bson.D{{Key: "$lt", Value: "c3"}}}},
		}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("pageFilter() = %v, want %v", got, want)
	}
}

func TestSortDoc(t *testing.T) {
	if got := sortDoc(course.Sort{}); !reflect.DeepEqual(got, bson.D{{Key: "_id", Value: 1}}) {
		t.Errorf("default sortDoc() = %v", got)
	}
	got := sortDoc(course.SortCityAsc.Sort())
	want := bson.D{{Key: course.FieldCityName, Value: 1}, {Key: "_id", Value: 1}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("sortDoc() = %v, want %v", got, want)
	}
}

func TestPageOptionsCollation(t *testing.T) {
	opts := pageOptions(course.SortUniAsc.Sort(), 25)
	if opts.Collation == nil || opts.Collation.Locale != "it" || opts.Collation.Strength != 2 {
		t.Fatalf("collation = %+v, want it/2", opts.Collation)
	}
	if opts.Limit == nil || *opts.Limit != 25 {
		t.Errorf("limit = %v", opts.Limit)
	}
	if opts := pageOptions(course.Sort{}, 25); opts.Collation != nil {
		t.Errorf("identifier order should use binary comparison, got %+v", opts.Collation)
	}
}

func TestCursorFor(t *testing.T) {
	c := course.Course{ID: "c1", Name: "Fisica", University: course.Ref{Name: "Bologna"}, Location: course.Ref{Name: "Roma"}}
	tests := []struct {
		sort course.Sort
		want any
	}{
		{course.Sort{}, nil},
		{course.SortNameAsc.Sort(), "Fisica"},
		{course.SortUniAsc.Sort(), "Bologna"},
		{course.SortCityAsc.Sort(), "Roma"},
	}
	for _, tt := range tests {
		cur := cursorFor(tt.sort)(c)
		if cur.ID != "c1" || cur.Value != tt.want {
			t.Errorf("cursorFor(%v) = %+v, want value %v", tt.sort, cur, tt.want)
		}
	}
}

func TestPrefixFilter(t *testing.T) {
	got := prefixFilter("Ing.")
	want := bson.D{{Key: "name", Value: primitive.Regex{Pattern: `^Ing\.`, Options: "i"}}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("prefixFilter() = %v, want %v", got, want)
	}
	if len(prefixFilter("")) != 0 {
		t.Error("expected empty filter for empty prefix")
	}
}

func TestParseKind(t *testing.T) {
	if k, err := ParseKind("universities"); err != nil || k != Universities {
		t.Errorf("ParseKind() = %q, %v", k, err)
	}
	if _, err := ParseKind("cities"); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestClampLimit(t *testing.T) {
	for in, want := range map[int]int{0: 10, -3: 10, 5: 5, 500: 100} {
		if got := clampLimit(in); got != want {
			t.Errorf("clampLimit(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestStoresRequireMongo(t *testing.T) {
	d := &data.Data{}
	if _, err := NewCourseStore(d, nil); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("NewCourseStore() error = %v", err)
	}
	if _, err := NewTaxonomyStore(d); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("NewTaxonomyStore() error = %v", err)
	}
	if _, err := NewLeadStore(nil); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("NewLeadStore() error = %v", err)
	}
}
