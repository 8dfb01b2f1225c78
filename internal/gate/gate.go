// Package gate serializes analysis runs: only one run may be in flight at a
// time, either per process or, with Redis, across replicas.
package gate

import (
	"context"
	"sync"
)

// Gate admits one holder at a time. Acquire blocks until the gate is free or
// ctx ends; the returned release func is safe to call more than once.
type Gate interface {
	Acquire(ctx context.Context) (release func(), err error)
}

type LocalGate struct {
	slot chan struct{}
}

func NewLocalGate() *LocalGate {
	return &LocalGate{slot: make(chan struct{}, 1)}
}

func (g *LocalGate) Acquire(ctx context.Context) (func(), error) {
	select {
	case g.slot <- struct{}{}:
		var once sync.Once
		return func() { once.Do(func() { <-g.slot }) }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
