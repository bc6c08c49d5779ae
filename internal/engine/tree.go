package engine

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/michalgawin/checkers/internal/board"
	"github.com/michalgawin/checkers/internal/pool"
)

// ErrAlreadyBuilt is returned when Build is called on a node that has
// already been expanded.
var ErrAlreadyBuilt = errors.New("node already built")

// NodeState tracks the expansion of a node.
type NodeState int32

const (
	Unbuilt NodeState = iota
	Expanding
	Built
)

// String returns the state name.
func (s NodeState) String() string {
	switch s {
	case Unbuilt:
		return "Unbuilt"
	case Expanding:
		return "Expanding"
	case Built:
		return "Built"
	}
	return fmt.Sprintf("NodeState(%d)", int32(s))
}

// Node is one position in the game tree. Every node owns its position; the
// root's Move is the zero Move.
type Node struct {
	Position *board.Position
	Move     board.Move
	Children []*Node

	state atomic.Int32

	// Leaf score, filled lazily by the search.
	score     int
	scored    bool
	scoredFor board.Side
}

// NewRoot creates an unbuilt root for a copy of pos.
func NewRoot(pos *board.Position) *Node {
	return &Node{Position: pos.Copy()}
}

// State returns the expansion state.
func (n *Node) State() NodeState {
	return NodeState(n.state.Load())
}

// IsLeaf returns true for nodes without children.
func (n *Node) IsLeaf() bool {
	return len(n.Children) == 0
}

// Size counts the nodes of the subtree, n included.
func (n *Node) Size() int {
	total := 1
	for _, c := range n.Children {
		total += c.Size()
	}
	return total
}

// Builder expands game trees, fanning child expansion out over a pool.
type Builder struct {
	pool  *pool.Pool
	nodes atomic.Uint64
}

// NewBuilder creates a builder bound to the pool.
func NewBuilder(p *pool.Pool) *Builder {
	return &Builder{pool: p}
}

// Nodes returns the number of nodes created since the last Reset.
func (b *Builder) Nodes() uint64 {
	return b.nodes.Load()
}

// Reset clears the node counter.
func (b *Builder) Reset() {
	b.nodes.Store(0)
}

// Build expands root to depth primitive moves. A capture chain continuation
// counts as a ply. Expansion stops early at nodes without legal moves.
// Children are stored in generation order regardless of scheduling. The
// first error (including ctx cancellation) aborts the whole build.
func (b *Builder) Build(ctx context.Context, root *Node, depth int) error {
	if !root.state.CompareAndSwap(int32(Unbuilt), int32(Expanding)) {
		return ErrAlreadyBuilt
	}
	if depth <= 0 {
		root.state.Store(int32(Built))
		return nil
	}

	// The root fans out per piece and direction as well.
	moves, err := root.Position.LegalMovesParallel(ctx, b.pool)
	if err != nil {
		return err
	}
	return b.expandChildren(ctx, root, moves, depth)
}

// expand builds the subtree below n. n is owned by the calling task.
func (b *Builder) expand(ctx context.Context, n *Node, depth int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	n.state.Store(int32(Expanding))
	if depth <= 0 {
		n.state.Store(int32(Built))
		return nil
	}
	return b.expandChildren(ctx, n, n.Position.LegalMoves(), depth)
}

func (b *Builder) expandChildren(ctx context.Context, n *Node, moves []board.Move, depth int) error {
	n.Children = make([]*Node, len(moves))
	b.nodes.Add(uint64(len(moves)))

	// Leaves are cheap; only fork subtrees that expand further.
	if depth == 1 {
		for i, m := range moves {
			c := &Node{Position: n.Position.Apply(m), Move: m}
			c.state.Store(int32(Built))
			n.Children[i] = c
		}
		n.state.Store(int32(Built))
		return ctx.Err()
	}

	g := b.pool.Group(ctx)
	for i, m := range moves {
		i, m := i, m
		g.Fork(func(ctx context.Context) error {
			c := &Node{Position: n.Position.Apply(m), Move: m}
			n.Children[i] = c
			return b.expand(ctx, c, depth-1)
		})
	}
	if err := g.Join(); err != nil {
		return err
	}
	n.state.Store(int32(Built))
	return nil
}
