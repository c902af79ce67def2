// Package reconcile computes keyed enter, update and exit operations between
// two renders of a list.
package reconcile

import (
	"github.com/huangsam/timelapse/schema"
)

// Op is one change needed to turn the previous list into the next one.
// Prev is the zero value for enters and Next is the zero value for exits.
type Op[T any] struct {
	Kind  schema.OpKind `json:"kind"`
	Key   string        `json:"key"`
	Index int           `json:"index"` // position in the next list, -1 for exits
	Prev  T             `json:"prev"`
	Next  T             `json:"next"`
}

// Diff compares prev and next by key. Items present in both produce an update
// only when equal reports a difference or their position changed. Enters and
// updates follow next order; exits follow prev order and come last.
func Diff[T any](prev, next []T, key func(T) string, equal func(a, b T) bool) []Op[T] {
	prevIdx := make(map[string]int, len(prev))
	for i, item := range prev {
		prevIdx[key(item)] = i
	}

	var ops []Op[T]
	seen := make(map[string]struct{}, len(next))
	for i, item := range next {
		k := key(item)
		seen[k] = struct{}{}
		j, ok := prevIdx[k]
		if !ok {
			ops = append(ops, Op[T]{Kind: schema.OpEnter, Key: k, Index: i, Next: item})
			continue
		}
		if !equal(prev[j], item) || j != i {
			ops = append(ops, Op[T]{Kind: schema.OpUpdate, Key: k, Index: i, Prev: prev[j], Next: item})
		}
	}
	for _, item := range prev {
		k := key(item)
		if _, ok := seen[k]; !ok {
			ops = append(ops, Op[T]{Kind: schema.OpExit, Key: k, Index: -1, Prev: item})
		}
	}
	return ops
}

// Apply replays ops onto prev and returns the resulting list. Applying the
// ops from Diff(prev, next) yields a list equal to next. Ops computed against
// a different prev produce a shorter list instead of panicking.
func Apply[T any](prev []T, ops []Op[T], key func(T) string) []T {
	byKey := make(map[string]T, len(prev))
	order := make([]string, 0, len(prev))
	for _, item := range prev {
		k := key(item)
		byKey[k] = item
		order = append(order, k)
	}

	placed := make(map[int]string)
	size := len(prev)
	for _, op := range ops {
		switch op.Kind {
		case schema.OpExit:
			delete(byKey, op.Key)
			size--
		case schema.OpEnter:
			byKey[op.Key] = op.Next
			placed[op.Index] = op.Key
			size++
		case schema.OpUpdate:
			byKey[op.Key] = op.Next
			placed[op.Index] = op.Key
		}
	}

	// Untouched survivors keep their relative order and fill the free slots
	moved := make(map[string]struct{}, len(placed))
	for _, k := range placed {
		moved[k] = struct{}{}
	}
	var rest []string
	for _, k := range order {
		if _, ok := byKey[k]; !ok {
			continue
		}
		if _, ok := moved[k]; ok {
			continue
		}
		rest = append(rest, k)
	}

	out := make([]T, 0, max(size, 0))
	for i := 0; i < size; i++ {
		k, ok := placed[i]
		if !ok {
			if len(rest) == 0 {
				break
			}
			k, rest = rest[0], rest[1:]
		}
		out = append(out, byKey[k])
	}
	return out
}

// Summary counts ops by kind.
type Summary struct {
	Enter  int `json:"enter"`
	Update int `json:"update"`
	Exit   int `json:"exit"`
}

// Summarize counts the ops in ops.
func Summarize[T any](ops []Op[T]) Summary {
	var s Summary
	for _, op := range ops {
		switch op.Kind {
		case schema.OpEnter:
			s.Enter++
		case schema.OpUpdate:
			s.Update++
		case schema.OpExit:
			s.Exit++
		}
	}
	return s
}
