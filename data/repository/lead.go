package repository

import (
	"context"
	"fmt"

	"github.com/ncobase/unicourse/data"
	"github.com/ncobase/unicourse/lead"
)

const leadsCollection = "leads"

// LeadStore writes captured leads.
type LeadStore struct {
	collection collectionFunc
}

// NewLeadStore creates a lead store over d.Mongo.
func NewLeadStore(d *data.Data) (*LeadStore, error) {
	if d == nil || d.Mongo == nil {
		return nil, ErrNotConfigured
	}
	return &LeadStore{collection: d.Mongo.Collection}, nil
}

// Insert stores l on the primary.
func (s *LeadStore) Insert(ctx context.Context, l *lead.Lead) error {
	if _, err := s.collection(leadsCollection, false).InsertOne(ctx, l); err != nil {
		return fmt.Errorf("insert lead: %w", err)
	}
	return nil
}
