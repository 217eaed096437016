package simplesurface

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

var ErrPathNotFound = errors.New("structural path not found")

// StructuralPath locates a component by child offsets from the actor's root
// component, root first. The root itself has the empty path.
type StructuralPath []int

func (p StructuralPath) String() string {
	parts := make([]string, len(p))
	for i, idx := range p {
		parts[i] = strconv.Itoa(idx)
	}
	return strings.Join(parts, ".")
}

func (p StructuralPath) Equal(other StructuralPath) bool {
	return slices.Equal(p, other)
}

func ParseStructuralPath(s string) (StructuralPath, error) {
	if s == "" {
		return StructuralPath{}, nil
	}
	parts := strings.Split(s, ".")
	path := make(StructuralPath, len(parts))
	for i, part := range parts {
		idx, err := strconv.Atoi(part)
		if err != nil || idx < 0 {
			return nil, fmt.Errorf("parse structural path %q: bad offset %q", s, part)
		}
		path[i] = idx
	}
	return path, nil
}

// ComputePath walks parent links from c up to the root, collecting the offset of
// each component in its parent's child list.
func ComputePath(c *SceneComponent) (StructuralPath, error) {
	if c == nil {
		return nil, ErrPathNotFound
	}
	var reversed []int
	for node := c; node.parent != nil; node = node.parent {
		idx := node.parent.IndexOfChild(node)
		if idx < 0 {
			return nil, fmt.Errorf("%s missing from parent %s: %w", node.name, node.parent.name, ErrPathNotFound)
		}
		reversed = append(reversed, idx)
	}
	slices.Reverse(reversed)
	return StructuralPath(reversed), nil
}

// ResolvePath follows path from root. It returns false if any offset is out of range.
func ResolvePath(root *SceneComponent, path StructuralPath) (*SceneComponent, bool) {
	if root == nil {
		return nil, false
	}
	node := root
	for _, idx := range path {
		child, ok := node.Child(idx)
		if !ok {
			return nil, false
		}
		node = child
	}
	return node, true
}

type PathEntry struct {
	Component *SceneComponent
	Path      StructuralPath
}

// EnumerateAll lists root and every descendant in depth-first pre-order, children
// in attach order. Output is stable while the hierarchy is unchanged.
func EnumerateAll(root *SceneComponent) []PathEntry {
	if root == nil {
		return nil
	}
	var out []PathEntry
	var walk func(node *SceneComponent, path StructuralPath)
	walk = func(node *SceneComponent, path StructuralPath) {
		out = append(out, PathEntry{Component: node, Path: path})
		for i, child := range node.children {
			childPath := make(StructuralPath, len(path)+1)
			copy(childPath, path)
			childPath[len(path)] = i
			walk(child, childPath)
		}
	}
	walk(root, StructuralPath{})
	return out
}

// EnumerateRenderables is EnumerateAll restricted to live mesh-bearing components.
func EnumerateRenderables(actor *Actor) []PathEntry {
	if !actor.IsValid() {
		return nil
	}
	var out []PathEntry
	for _, entry := range EnumerateAll(actor.root) {
		if entry.Component.IsValid() && entry.Component.IsRenderable() {
			out = append(out, entry)
		}
	}
	return out
}
