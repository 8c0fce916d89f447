// Package inspect walks successor trees to measure their size.
package inspect

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/mitchelldurbincs/SquadMinimax/internal/game"
	"github.com/mitchelldurbincs/SquadMinimax/internal/game/world"
)

// Expander is the part of the engine the counter drives
type Expander interface {
	Successors(s *world.State) ([]game.Child, error)
	IsTerminal(s *world.State) bool
}

// Result holds per-depth node counts of a successor tree
type Result struct {
	Nodes     []int64 // Nodes[d] is the number of states d plies below the root
	Terminals int64   // states above the depth limit that ended the game; never expanded
	Elapsed   time.Duration
}

// Total returns the number of states visited, root included
func (r Result) Total() int64 {
	var n int64
	for _, c := range r.Nodes {
		n += c
	}
	return n
}

type Option func(*Counter)

// WithWorkers bounds how many root subtrees are walked at once
func WithWorkers(n int) Option {
	return func(c *Counter) {
		if n > 0 {
			c.workers = n
		}
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Counter) {
		c.logger = logger.With().Str("component", "NodeCounter").Logger()
	}
}

// Counter counts the states of a successor tree down to a fixed depth
type Counter struct {
	expander Expander
	workers  int
	logger   zerolog.Logger
}

// NewCounter creates a counter over expander. It defaults to one worker.
func NewCounter(expander Expander, opts ...Option) *Counter {
	c := &Counter{
		expander: expander,
		workers:  1,
		logger:   log.With().Str("component", "NodeCounter").Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Count is a shorthand for NewCounter(...).Count
func Count(ctx context.Context, expander Expander, root *world.State, depth, workers int) (Result, error) {
	return NewCounter(expander, WithWorkers(workers)).Count(ctx, root, depth)
}

// Count expands root to depth plies. The root's children are walked in
// parallel, each subtree depth-first on a single goroutine.
func (c *Counter) Count(ctx context.Context, root *world.State, depth int) (Result, error) {
	if depth < 0 {
		return Result{}, fmt.Errorf("negative depth %d", depth)
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	start := time.Now()
	res := Result{Nodes: make([]int64, depth+1)}
	res.Nodes[0] = 1

	if depth == 0 {
		res.Elapsed = time.Since(start)
		return res, nil
	}
	if c.expander.IsTerminal(root) {
		res.Terminals = 1
		res.Elapsed = time.Since(start)
		return res, nil
	}

	children, err := c.expander.Successors(root)
	if err != nil {
		return Result{}, err
	}

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for _, child := range children {
		child := child
		g.Go(func() error {
			local := walk{nodes: make([]int64, depth+1)}
			if err := c.walk(ctx, &local, child.State, 1, depth); err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			for d, n := range local.nodes {
				res.Nodes[d] += n
			}
			res.Terminals += local.terminals
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	res.Elapsed = time.Since(start)
	c.logger.Debug().
		Int("depth", depth).
		Int64("nodes", res.Total()).
		Int64("terminals", res.Terminals).
		Dur("elapsed", res.Elapsed).
		Msg("Tree counted")
	return res, nil
}

type walk struct {
	nodes     []int64
	terminals int64
}

func (c *Counter) walk(ctx context.Context, w *walk, s *world.State, ply, depth int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	w.nodes[ply]++
	if ply == depth {
		return nil
	}
	if c.expander.IsTerminal(s) {
		w.terminals++
		return nil
	}
	children, err := c.expander.Successors(s)
	if err != nil {
		return err
	}
	for _, child := range children {
		if err := c.walk(ctx, w, child.State, ply+1, depth); err != nil {
			return err
		}
	}
	return nil
}
