package goamps

import (
	"fmt"
	"io"
	"strings"
)

// StructureStream is a pipeline of tensor structures. Each stage runs as its
// own goroutine; closing the source propagates downstream.
type StructureStream struct {
	Outlet chan *TensorStructure
}

func NewStructureStream() *StructureStream {
	return &StructureStream{
		Outlet: make(chan *TensorStructure),
	}
}

// StreamStructures pushes copies of the given structures into a new stream
// and closes it.
func StreamStructures(tsList []*TensorStructure) *StructureStream {
	next := &StructureStream{
		Outlet: make(chan *TensorStructure, 1),
	}

	go func() {
		for _, ts := range tsList {
			next.Outlet <- ts.MakeCopy()
		}
		next.Close()
	}()

	return next
}

func (stream *StructureStream) Close() {
	if stream.Outlet != nil {
		close(stream.Outlet)
	}
}

func (stream *StructureStream) PushStructure(ts *TensorStructure) {
	stream.Outlet <- ts.MakeCopy()
}

func (stream *StructureStream) PullStructure() *TensorStructure {
	return <-stream.Outlet
}

// PullAll drains this stream, returning how many structures passed through.
func (stream *StructureStream) PullAll() int {
	count := 0
	for range stream.Outlet {
		count++
	}
	return count
}

// Print writes each passing structure to out and forwards it downstream.
func (stream *StructureStream) Print(out io.Writer, opts PrintOpts) *StructureStream {
	next := &StructureStream{
		Outlet: make(chan *TensorStructure, 1),
	}

	go func() {
		buf := strings.Builder{}
		buf.Grow(128)

		count := 0
		for ts := range stream.Outlet {
			count++
			if len(opts.Label) > 0 {
				buf.WriteString(opts.Label)
			}
			if opts.Numbered {
				fmt.Fprintf(&buf, "  %d) ", count)
			}
			buf.WriteString(ts.String())
			buf.WriteByte('\n')
			io.WriteString(out, buf.String())
			buf.Reset()
			next.Outlet <- ts
		}
		next.Close()
	}()

	return next
}

// AddTo offers each passing structure to target, forwarding only those that
// were newly added. Feeding a StructureSet makes this a dedup stage.
func (stream *StructureStream) AddTo(target StructureAdder) *StructureStream {
	next := &StructureStream{
		Outlet: make(chan *TensorStructure, 1),
	}

	go func() {
		for ts := range stream.Outlet {
			if target.TryAdd(ts) {
				next.Outlet <- ts
			}
		}
		next.Close()
	}()

	return next
}

// SelectFromCatalog streams every stored structure of the given basis.
func SelectFromCatalog(cat Catalog, basis Basis) *StructureStream {
	next := &StructureStream{
		Outlet: make(chan *TensorStructure, 1),
	}

	onHit := make(chan *TensorStructure, 4)

	go func() {
		cat.Select(basis, onHit)
		close(onHit)
	}()

	go func() {
		for ts := range onHit {
			next.Outlet <- ts
		}
		next.Close()
	}()

	return next
}
