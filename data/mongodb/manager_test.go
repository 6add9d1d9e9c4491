package mongodb

import (
	"context"
	"errors"
	"testing"

	"github.com/ncobase/unicourse/data/config"
)

func TestNewBalancer(t *testing.T) {
	for _, s := range []string{"", "round_robin", "random", "weight"} {
		if _, err := NewBalancer(s, nil); err != nil {
			t.Errorf("NewBalancer(%q) error = %v", s, err)
		}
	}
	if _, err := NewBalancer("least_conn", nil); !errors.Is(err, ErrInvalidStrategy) {
		t.Errorf("error = %v, want ErrInvalidStrategy", err)
	}
}

func TestRoundRobinBalancer(t *testing.T) {
	b := NewRoundRobinBalancer()
	seen := map[int]int{}
	for i := 0; i < 9; i++ {
		idx, err := b.Next(3)
		if err != nil {
			t.Fatal(err)
		}
		seen[idx]++
	}
	for i := 0; i < 3; i++ {
		if seen[i] != 3 {
			t.Errorf("slave %d picked %d times", i, seen[i])
		}
	}
	if _, err := b.Next(0); !errors.Is(err, ErrNoAvailableSlaves) {
		t.Errorf("error = %v", err)
	}
}

func TestRandomBalancerBounds(t *testing.T) {
	for i := 0; i < 50; i++ {
		idx, err := (RandomBalancer{}).Next(4)
		if err != nil || idx < 0 || idx >= 4 {
			t.Fatalf("Next(4) = %d, %v", idx, err)
		}
	}
}

func TestWeightBalancer(t *testing.T) {
	b := NewWeightBalancer([]*config.MongoNode{{Weight: 3}, {Weight: 0}})
	seen := map[int]int{}
	for i := 0; i < 40; i++ {
		idx, _ := b.Next(2)
		seen[idx]++
	}
	if seen[0] != 30 || seen[1] != 10 {
		t.Errorf("distribution = %v, want 30/10", seen)
	}

	idx, err := b.Next(5)
	if err != nil || idx < 0 || idx >= 5 {
		t.Errorf("mismatched weights Next(5) = %d, %v", idx, err)
	}
}

func TestNewManagerRequiresMaster(t *testing.T) {
	if _, err := NewManager(context.Background(), &config.MongoDB{}); err == nil {
		t.Error("expected error without master")
	}
	if _, err := NewManager(context.Background(), &config.MongoDB{Master: &config.MongoNode{URI: "mongodb://x"}, Strategy: "bogus"}); !errors.Is(err, ErrInvalidStrategy) {
		t.Errorf("error = %v, want ErrInvalidStrategy", err)
	}
}
