// The MIT License (MIT)
//
// Copyright (c) 2019 West Damron
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

// Package graph is a small directed graph with strongly connected components.
package graph

import (
	"iter"
	"slices"
)

// Graph is a directed graph over comparable vertices. Vertices keep the
// order they were first added in.
type Graph[V comparable] struct {
	index map[V]int
	verts []V
	succs [][]int
}

func New[V comparable]() *Graph[V] {
	return &Graph[V]{index: make(map[V]int)}
}

// AddVertex adds v if it is not already in g, and returns its index.
func (g *Graph[V]) AddVertex(v V) int {
	if i, ok := g.index[v]; ok {
		return i
	}
	i := len(g.verts)
	g.index[v] = i
	g.verts = append(g.verts, v)
	g.succs = append(g.succs, nil)
	return i
}

// AddEdge adds from -> to, adding missing vertices first.
func (g *Graph[V]) AddEdge(from, to V) {
	f, t := g.AddVertex(from), g.AddVertex(to)
	if !slices.Contains(g.succs[f], t) {
		g.succs[f] = append(g.succs[f], t)
	}
}

func (g *Graph[V]) HasVertex(v V) bool {
	_, ok := g.index[v]
	return ok
}

func (g *Graph[V]) HasEdge(from, to V) bool {
	f, okFrom := g.index[from]
	t, okTo := g.index[to]
	return okFrom && okTo && slices.Contains(g.succs[f], t)
}

func (g *Graph[V]) Len() int { return len(g.verts) }

// Vertices iterates vertices in insertion order.
func (g *Graph[V]) Vertices() iter.Seq[V] {
	return slices.Values(g.verts)
}

// Edges iterates every edge as (from, to).
func (g *Graph[V]) Edges() iter.Seq2[V, V] {
	return func(yield func(V, V) bool) {
		for f, succs := range g.succs {
			for _, t := range succs {
				if !yield(g.verts[f], g.verts[t]) {
					return
				}
			}
		}
	}
}

// SCC returns the strongly connected components of g, such that a component comes
// after every component it has edges to. Roots are visited in insertion order.
func (g *Graph[V]) SCC() [][]V {
	state := sccState{
		indexTable: make([]int, len(g.verts)),
		lowLink:    make([]int, len(g.verts)),
		onStack:    make([]bool, len(g.verts)),
	}
	for v := range g.verts {
		if state.indexTable[v] == 0 {
			g.tarjan(&state, v)
		}
	}
	sccs := make([][]V, len(state.sccs))
	for i, c := range state.sccs {
		sccs[i] = make([]V, len(c))
		for j, v := range c {
			sccs[i][j] = g.verts[v]
		}
	}
	return sccs
}

type sccState struct {
	index      int
	indexTable []int
	lowLink    []int
	onStack    []bool

	stack []int
	sccs  [][]int
}

// tarjan emits components as they are closed, which is
// successors first
func (g *Graph[V]) tarjan(state *sccState, v int) {
	state.index++
	state.indexTable[v] = state.index
	state.lowLink[v] = state.index
	state.stack = append(state.stack, v)
	state.onStack[v] = true

	for _, succ := range g.succs[v] {
		if state.indexTable[succ] == 0 {
			g.tarjan(state, succ)
			state.lowLink[v] = min(state.lowLink[v], state.lowLink[succ])
		} else if state.onStack[succ] {
			state.lowLink[v] = min(state.lowLink[v], state.indexTable[succ])
		}
	}

	if state.lowLink[v] != state.indexTable[v] {
		return
	}
	var c []int
	for {
		top := state.stack[len(state.stack)-1]
		state.stack = state.stack[:len(state.stack)-1]
		state.onStack[top] = false
		c = append(c, top)
		if top == v {
			break
		}
	}
	// members by insertion order
	slices.Sort(c)
	state.sccs = append(state.sccs, c)
}
