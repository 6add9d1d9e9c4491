// Package mongodb manages a primary MongoDB client and optional read
// replicas selected by a load balancing strategy.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"

	"github.com/ncobase/unicourse/data/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

var (
	ErrInvalidStrategy   = errors.New("mongodb: invalid load balancing strategy")
	ErrNoAvailableSlaves = errors.New("mongodb: no available slaves")
)

// Manager routes writes to the master and reads to a slave.
type Manager struct {
	master   *mongo.Client
	slaves   []*mongo.Client
	database string
	strategy Balancer
	mutex    sync.RWMutex
}

// NewManager connects to the configured master and slaves. Slaves that
// cannot be reached are skipped; with no slaves reads go to the master.
func NewManager(ctx context.Context, conf *config.MongoDB) (*Manager, error) {
	if conf == nil || conf.Master == nil {
		return nil, errors.New("master mongodb configuration is required")
	}

	strategy, err := NewBalancer(conf.Strategy, conf.Slaves)
	if err != nil {
		return nil, err
	}

	master, err := newMongoClient(ctx, conf.Master)
	if err != nil {
		return nil, err
	}

	var slaves []*mongo.Client
	for _, slaveCfg := range conf.Slaves {
		slave, err := newMongoClient(ctx, slaveCfg)
		if err != nil {
			continue
		}
		slaves = append(slaves, slave)
	}

	return NewManagerWithClients(master, slaves, conf.Database, strategy), nil
}

// NewManagerWithClients wraps already connected clients.
func NewManagerWithClients(master *mongo.Client, slaves []*mongo.Client, database string, strategy Balancer) *Manager {
	if strategy == nil {
		strategy = NewRoundRobinBalancer()
	}
	return &Manager{master: master, slaves: slaves, database: database, strategy: strategy}
}

// Balancer picks the index of the next slave out of n.
type Balancer interface {
	Next(n int) (int, error)
}

// NewBalancer returns the balancer for a strategy name.
func NewBalancer(strategy string, nodes []*config.MongoNode) (Balancer, error) {
	switch strategy {
	case "round_robin", "":
		return NewRoundRobinBalancer(), nil
	case "random":
		return RandomBalancer{}, nil
	case "weight":
		return NewWeightBalancer(nodes), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidStrategy, strategy)
	}
}

// RoundRobinBalancer cycles through slaves.
type RoundRobinBalancer struct {
	current atomic.Uint64
}

func NewRoundRobinBalancer() *RoundRobinBalancer {
	return &RoundRobinBalancer{}
}

func (rb *RoundRobinBalancer) Next(n int) (int, error) {
	if n <= 0 {
		return 0, ErrNoAvailableSlaves
	}
	return int(rb.current.Add(1) % uint64(n)), nil
}

// RandomBalancer picks a slave uniformly.
type RandomBalancer struct{}

func (RandomBalancer) Next(n int) (int, error) {
	if n <= 0 {
		return 0, ErrNoAvailableSlaves
	}
	return rand.Intn(n), nil
}

// WeightBalancer distributes picks proportionally to node weights.
type WeightBalancer struct {
	weights []int
	current atomic.Uint64
}

func NewWeightBalancer(nodes []*config.MongoNode) *WeightBalancer {
	weights := make([]int, len(nodes))
	for i, node := range nodes {
		weights[i] = max(node.Weight, 1)
	}
	return &WeightBalancer{weights: weights}
}

func (wb *WeightBalancer) Next(n int) (int, error) {
	if n <= 0 {
		return 0, ErrNoAvailableSlaves
	}
	weights := wb.weights
	if len(weights) != n {
		weights = make([]int, n)
		for i := range weights {
			weights[i] = 1
		}
	}

	total := 0
	for _, w := range weights {
		total += w
	}
	next := wb.current.Add(1) % uint64(total)

	var accumulator int
	for i, w := range weights {
		accumulator += w
		if uint64(accumulator) > next {
			return i, nil
		}
	}
	return 0, nil
}

// Master returns the primary client.
func (m *Manager) Master() *mongo.Client {
	if m == nil {
		return nil
	}
	return m.master
}

// Slave returns a read client, falling back to the master.
func (m *Manager) Slave() *mongo.Client {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if len(m.slaves) == 0 {
		return m.master
	}
	idx, err := m.strategy.Next(len(m.slaves))
	if err != nil {
		return m.master
	}
	return m.slaves[idx]
}

// Collection returns a collection of the configured database, on a slave
// when readOnly.
func (m *Manager) Collection(name string, readOnly bool) *mongo.Collection {
	client := m.master
	if readOnly {
		client = m.Slave()
	}
	return client.Database(m.database).Collection(name)
}

// WithTransaction runs fn in a transaction on the master.
func (m *Manager) WithTransaction(ctx context.Context, fn func(mongo.SessionContext) error, opts ...*options.TransactionOptions) error {
	session, err := m.master.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sctx mongo.SessionContext) (any, error) {
		return nil, fn(sctx)
	}, opts...)
	return err
}

// Health pings the master and drops slaves that fail to answer.
func (m *Manager) Health(ctx context.Context) error {
	if err := m.master.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("master mongodb health check failed: %w", err)
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	healthy := m.slaves[:0]
	for _, slave := range m.slaves {
		if err := slave.Ping(ctx, nil); err != nil {
			_ = slave.Disconnect(ctx)
			continue
		}
		healthy = append(healthy, slave)
	}
	m.slaves = healthy
	return nil
}

// Close disconnects every client.
func (m *Manager) Close(ctx context.Context) error {
	var errs []error

	if err := m.master.Disconnect(ctx); err != nil {
		errs = append(errs, fmt.Errorf("error closing master connection: %w", err))
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()
	for i, slave := range m.slaves {
		if err := slave.Disconnect(ctx); err != nil {
			errs = append(errs, fmt.Errorf("error closing slave %d connection: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

func newMongoClient(ctx context.Context, conf *config.MongoNode) (*mongo.Client, error) {
	if conf == nil || conf.URI == "" {
		return nil, errors.New("mongodb configuration is nil or empty")
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(conf.URI))
	if err != nil {
		return nil, fmt.Errorf("mongodb connect error: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongodb ping error: %w", err)
	}
	return client, nil
}
