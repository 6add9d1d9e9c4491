// Package repository implements the MongoDB backed stores.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ncobase/unicourse/course"
	"github.com/ncobase/unicourse/data"
	"github.com/ncobase/unicourse/data/cache"
	"github.com/ncobase/unicourse/logging/logger"
	"github.com/ncobase/unicourse/paging"
	"github.com/ncobase/unicourse/tracing"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/otel/attribute"
)

var (
	// ErrNotConfigured is returned when MongoDB is not configured.
	ErrNotConfigured = errors.New("repository: mongodb is not configured")
	// ErrNotFound is returned when a course does not exist.
	ErrNotFound = errors.New("repository: course not found")
)

const coursesCollection = "courses"

// pageCollation matches course.FilterSet.Comparator: strength 2 ignores
// case but not accents.
var pageCollation = &options.Collation{Locale: course.SortLanguage.String(), Strength: 2}

// collectionFunc resolves a collection, on a replica when readOnly.
type collectionFunc func(name string, readOnly bool) *mongo.Collection

// CourseStore pages through courses with keyset cursors.
type CourseStore struct {
	collection collectionFunc
	counts     *cache.Cache[int64]
	log        *logger.Logger
}

// NewCourseStore creates a store over d.Mongo with counts cached in
// d.Redis when available.
func NewCourseStore(d *data.Data, l *logger.Logger) (*CourseStore, error) {
	if d == nil || d.Mongo == nil {
		return nil, ErrNotConfigured
	}
	if l == nil {
		l = logger.StdLogger()
	}

	prefix, ttl := "unicourse", 10*time.Minute
	if d.Conf != nil && d.Conf.Redis != nil {
		prefix, ttl = d.Conf.Redis.KeyPrefix, d.Conf.Redis.CountTTL
	}

	var rc *cache.Cache[int64]
	if d.Redis != nil {
		rc = cache.NewCache[int64](d.Redis, prefix+":count", ttl)
	} else {
		rc = cache.NewCache[int64](nil, prefix+":count", ttl)
	}

	return &CourseStore{collection: d.Mongo.Collection, counts: rc, log: l}, nil
}

// FindPage returns up to q.Limit courses positioned after q.After in q.Sort
// order.
func (s *CourseStore) FindPage(ctx context.Context, q course.Query) (res *paging.Result[course.Course], err error) {
	ctx, span := tracing.Start(ctx, "CourseStore.FindPage",
		attribute.String("db.collection", coursesCollection),
		attribute.String("courses.sort", q.Sort.Field),
		attribute.Int("courses.limit", q.Limit),
	)
	defer func() { tracing.End(span, err) }()

	coll := s.collection(coursesCollection, true)

	fetch := func(ctx context.Context, after *paging.Cursor, limit int) ([]course.Course, error) {
		cur, err := coll.Find(ctx, pageFilter(q.Filters, q.Sort, after), pageOptions(q.Sort, limit))
		if err != nil {
			return nil, fmt.Errorf("find courses: %w", err)
		}
		var items []course.Course
		if err := cur.All(ctx, &items); err != nil {
			return nil, fmt.Errorf("decode courses: %w", err)
		}
		return items, nil
	}

	return paging.Paginate(ctx, paging.Params{Cursor: q.After, Limit: q.Limit}, fetch, cursorFor(q.Sort))
}

// EstimateCount counts courses matching the category constraints of f.
func (s *CourseStore) EstimateCount(ctx context.Context, f course.FilterSet) (int64, error) {
	ctx, span := tracing.Start(ctx, "CourseStore.EstimateCount", attribute.String("courses.filters", f.CacheKey()))
	n, err := s.counts.GetOrLoad(ctx, f.CacheKey(), func(ctx context.Context) (int64, error) {
		coll := s.collection(coursesCollection, true)
		filter := categoryFilter(f)
		if len(filter) == 0 {
			return coll.EstimatedDocumentCount(ctx)
		}
		return coll.CountDocuments(ctx, filter)
	})
	tracing.End(span, err)
	if err != nil {
		s.log.Debugf(ctx, "count courses %s: %v", f.CacheKey(), err)
		return 0, err
	}
	return n, nil
}

// ForEachBatch streams every course in identifier order, batchSize at a
// time.
func (s *CourseStore) ForEachBatch(ctx context.Context, batchSize int, fn func([]course.Course) error) error {
	after := ""
	for {
		page, err := s.FindPage(ctx, course.Query{Limit: batchSize, After: after})
		if err != nil {
			return err
		}
		if len(page.Items) > 0 {
			if err := fn(page.Items); err != nil {
				return err
			}
		}
		if !page.HasNextPage {
			return nil
		}
		after = page.NextCursor
	}
}

// FindByID returns a single course, or ErrNotFound.
func (s *CourseStore) FindByID(ctx context.Context, id string) (*course.Course, error) {
	if id == "" {
		return nil, ErrNotFound
	}
	ctx, span := tracing.Start(ctx, "CourseStore.FindByID", attribute.String("courses.id", id))
	defer span.End()

	var c course.Course
	err := s.collection(coursesCollection, true).FindOne(ctx, bson.D{{Key: course.FieldID, Value: id}}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("find course %s: %w", id, err)
	}
	return &c, nil
}

// First returns the first limit courses in identifier order.
func (s *CourseStore) First(ctx context.Context, limit int) ([]course.Course, error) {
	page, err := s.FindPage(ctx, course.Query{Limit: limit})
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}

func categoryFilter(f course.FilterSet) bson.D {
	filter := bson.D{}
	if f.Discipline != "" {
		filter = append(filter, bson.E{Key: course.FieldDiscipline, Value: f.Discipline})
	}
	if f.Location != "" {
		filter = append(filter, bson.E{Key: course.FieldLocation, Value: f.Location})
	}
	if f.University != "" {
		filter = append(filter, bson.E{Key: course.FieldUniversity, Value: f.University})
	}
	return filter
}

// pageFilter adds the keyset condition for rows strictly after the cursor.
func pageFilter(f course.FilterSet, s course.Sort, after *paging.Cursor) bson.D {
	filter := categoryFilter(f)
	if after == nil {
		return filter
	}

	op := "$gt"
	if s.Desc {
		op = "$lt"
	}
	if s.IsDefault() {
		return append(filter, bson.E{Key: course.FieldID, Value: bson.D{{Key: op, Value: after.ID}}})
	}
	return append(filter, bson.E{Key: "$or", Value: bson.A{
		bson.D{{Key: s.Field, Value: bson.D{{Key: op, Value: after.Value}}}},
		bson.D{
			{Key: s.Field, Value: after.Value},
			{Key: course.FieldID, Value: bson.D{{Key: op, Value: after.ID}}},
		},
	}})
}

// pageOptions applies the collation to both the sort and the keyset
// comparison, so cursors stay consistent with the order.
func pageOptions(s course.Sort, limit int) *options.FindOptions {
	opts := options.Find().SetSort(sortDoc(s)).SetLimit(int64(limit))
	if !s.IsDefault() {
		opts.SetCollation(pageCollation)
	}
	return opts
}

func sortDoc(s course.Sort) bson.D {
	if s.IsDefault() {
		return bson.D{{Key: course.FieldID, Value: 1}}
	}
	dir := 1
	if s.Desc {
		dir = -1
	}
	return bson.D{{Key: s.Field, Value: dir}, {Key: course.FieldID, Value: dir}}
}

func cursorFor(s course.Sort) paging.CursorFunc[course.Course] {
	return func(c course.Course) paging.Cursor {
		cur := paging.Cursor{ID: c.ID}
		switch s.Field {
		case course.FieldName:
			cur.Value = c.Name
		case course.FieldUniName:
			cur.Value = c.University.Name
		case course.FieldCityName:
			cur.Value = c.Location.Name
		}
		return cur
	}
}
