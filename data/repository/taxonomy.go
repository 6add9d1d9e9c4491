package repository

import (
	"context"
	"fmt"
	"regexp"

	"github.com/ncobase/unicourse/data"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Kind names a taxonomy collection.
type Kind string

const (
	Disciplines  Kind = "disciplines"
	Locations    Kind = "locations"
	Universities Kind = "universities"
)

// ParseKind validates a taxonomy name.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case Disciplines, Locations, Universities:
		return k, nil
	}
	return "", fmt.Errorf("unknown taxonomy %q", s)
}

// Taxon is one discipline, location or university.
type Taxon struct {
	ID             string `json:"id" bson:"_id"`
	Name           string `json:"name" bson:"name"`
	Slug           string `json:"slug,omitempty" bson:"slug,omitempty"`
	CoursesCounter int64  `json:"coursesCounter" bson:"coursesCounter"`
}

// TaxonomyStore reads the facet collections.
type TaxonomyStore struct {
	collection collectionFunc
}

// NewTaxonomyStore creates a taxonomy store over d.Mongo.
func NewTaxonomyStore(d *data.Data) (*TaxonomyStore, error) {
	if d == nil || d.Mongo == nil {
		return nil, ErrNotConfigured
	}
	return &TaxonomyStore{collection: d.Mongo.Collection}, nil
}

// TopTaxonomy returns the limit entries with the most courses.
func (s *TaxonomyStore) TopTaxonomy(ctx context.Context, kind Kind, limit int) ([]Taxon, error) {
	return s.find(ctx, kind, bson.D{}, limit)
}

// PrefixSearch returns entries whose name starts with prefix, ignoring case.
func (s *TaxonomyStore) PrefixSearch(ctx context.Context, kind Kind, prefix string, limit int) ([]Taxon, error) {
	return s.find(ctx, kind, prefixFilter(prefix), limit)
}

func (s *TaxonomyStore) find(ctx context.Context, kind Kind, filter bson.D, limit int) ([]Taxon, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "coursesCounter", Value: -1}, {Key: "_id", Value: 1}}).
		SetLimit(int64(clampLimit(limit)))

	cur, err := s.collection(string(kind), true).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", kind, err)
	}
	out := make([]Taxon, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", kind, err)
	}
	return out, nil
}

func prefixFilter(prefix string) bson.D {
	if prefix == "" {
		return bson.D{}
	}
	return bson.D{{Key: "name", Value: primitive.Regex{Pattern: "^" + regexp.QuoteMeta(prefix), Options: "i"}}}
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return 10
	case limit > 100:
		return 100
	}
	return limit
}
