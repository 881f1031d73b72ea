package summary

import (
	"wavestats/domain/core"
)

// Node is one grouping label. Interior nodes carry Children; leaves carry Stat.
type Node[T any] struct {
	Label    string
	Stat     *T
	Children Tree[T]
}

// Tree is an ordered set of sibling nodes. Traversal follows slice order, which
// is the insertion order of the upstream mapping.
type Tree[T any] []Node[T]

type (
	InvolvementTree = Tree[InvolvementStat]
	OriginTree      = Tree[OriginStat]
)

// Leaf builds a leaf node.
func Leaf[T any](label string, stat T) Node[T] {
	return Node[T]{Label: label, Stat: &stat}
}

// Branch builds an interior node.
func Branch[T any](label string, children ...Node[T]) Node[T] {
	return Node[T]{Label: label, Children: Tree[T](children)}
}

// Lift nests a whole tree under one label.
func Lift[T any](label string, tree Tree[T]) Node[T] {
	return Node[T]{Label: label, Children: tree}
}

// Walk visits every leaf depth-first in insertion order. depth is the number of
// grouping levels; a stat above that depth, a missing stat at it, or children
// below it fail with a MalformedInput error. Interior nodes with no children
// contribute nothing.
func (t Tree[T]) Walk(depth int, fn func(key GroupKey, stat T) error) error {
	return t.walk(nil, depth, fn)
}

func (t Tree[T]) walk(prefix GroupKey, depth int, fn func(GroupKey, T) error) error {
	for _, n := range t {
		key := append(prefix.clone(), n.Label)
		if len(key) == depth {
			if len(n.Children) > 0 {
				return core.NewDepthMismatchError(key, depth)
			}
			if n.Stat == nil {
				return core.NewMissingStatError(key)
			}
			if err := fn(key, *n.Stat); err != nil {
				return err
			}
			continue
		}
		if n.Stat != nil || len(key) > depth {
			return core.NewDepthMismatchError(key, depth)
		}
		if err := n.Children.walk(key, depth, fn); err != nil {
			return err
		}
	}
	return nil
}

// Leaves counts the leaves of a well-formed tree.
func (t Tree[T]) Leaves() int {
	n := 0
	for _, node := range t {
		if node.Stat != nil {
			n++
		}
		n += node.Children.Leaves()
	}
	return n
}

// Find returns the stat at key, if present.
func (t Tree[T]) Find(key ...string) (T, bool) {
	var zero T
	if len(key) == 0 {
		return zero, false
	}
	for _, n := range t {
		if n.Label != key[0] {
			continue
		}
		if len(key) == 1 {
			if n.Stat == nil {
				return zero, false
			}
			return *n.Stat, true
		}
		return n.Children.Find(key[1:]...)
	}
	return zero, false
}
