package syntax

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrNoTree is returned when a parser cannot produce any tree for a source.
var ErrNoTree = errors.New("parser produced no tree")

// ErrPoolClosed is returned by Parse once the pool is closed.
var ErrPoolClosed = errors.New("parser pool closed")

// InputEdit describes one contiguous replacement in the coordinates of the
// text before the edit.
type InputEdit struct {
	StartByte   uint32
	OldEndByte  uint32
	NewEndByte  uint32
	StartPoint  Point
	OldEndPoint Point
	NewEndPoint Point
}

// Parser turns source text into a Tree. When old and edit are given, old is
// the tree of the text before edit and may be reused. Implementations are
// not safe for concurrent use.
type Parser interface {
	Parse(ctx context.Context, src []byte, old *Tree, edit *InputEdit) (*Tree, error)
	Close() error
}

// Pool hands out parsers for one parse at a time. A pool of size one
// serializes every parse through a single parser.
type Pool struct {
	pool chan Parser
	done chan struct{}

	mu     sync.Mutex
	closed bool
}

// NewPool creates a Pool with n parsers made by newParser.
func NewPool(n int, newParser func() (Parser, error)) (*Pool, error) {
	if n < 1 {
		n = 1
	}
	pp := &Pool{pool: make(chan Parser, n), done: make(chan struct{})}
	for i := 0; i < n; i++ {
		p, err := newParser()
		if err != nil {
			pp.Close()
			return nil, fmt.Errorf("failed to create parser: %w", err)
		}
		pp.pool <- p
	}
	return pp, nil
}

// Parse checks out a parser, parses src and returns the parser to the pool
// on every exit path.
func (pp *Pool) Parse(ctx context.Context, src []byte, old *Tree, edit *InputEdit) (*Tree, error) {
	var p Parser
	select {
	case p = <-pp.pool:
	case <-pp.done:
		return nil, ErrPoolClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer pp.release(p)

	tree, err := p.Parse(ctx, src, old, edit)
	if err != nil {
		return nil, err
	}
	if tree == nil {
		return nil, ErrNoTree
	}
	return tree, nil
}

// release returns p to the pool, or closes it when the pool was closed
// while p was checked out.
func (pp *Pool) release(p Parser) {
	pp.mu.Lock()
	defer pp.mu.Unlock()
	if pp.closed {
		p.Close()
		return
	}
	pp.pool <- p
}

// Close closes every idle parser and makes later parses fail with
// ErrPoolClosed. Parsers checked out during Close are closed when they are
// released.
func (pp *Pool) Close() error {
	pp.mu.Lock()
	defer pp.mu.Unlock()
	if pp.closed {
		return nil
	}
	pp.closed = true
	close(pp.done)

	var errs []error
	for {
		select {
		case p := <-pp.pool:
			if err := p.Close(); err != nil {
				errs = append(errs, err)
			}
		default:
			return errors.Join(errs...)
		}
	}
}
