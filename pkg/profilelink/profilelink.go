// Package profilelink resolves the profile behind a tree node and the
// profiles linked to it.
package profilelink

import (
	"context"

	"github.com/grovetools/extender/errors"
	"github.com/grovetools/extender/pkg/profiles"
)

// Node is a tree node that may carry a profile reference. Child nodes
// usually inherit the profile of their session root.
type Node interface {
	Label() string
	// ProfileName returns the profile the node refers to, or "" to defer
	// to the parent.
	ProfileName() string
	Parent() Node
}

// Lookup finds cached profiles by name.
type Lookup interface {
	Get(name string) (*profiles.Profile, bool)
}

// Resolver resolves nodes against a Lookup.
type Resolver struct {
	lookup Lookup
}

// NewResolver creates a resolver reading from lookup.
func NewResolver(lookup Lookup) *Resolver {
	return &Resolver{lookup: lookup}
}

// ProfileNameOf walks from node towards the root and returns the first
// profile reference found.
func ProfileNameOf(node Node) string {
	for n := node; n != nil; n = n.Parent() {
		if name := n.ProfileName(); name != "" {
			return name
		}
	}
	return ""
}

// Resolve returns the profile associated with node.
func (r *Resolver) Resolve(node Node) (*profiles.Profile, error) {
	name := ProfileNameOf(node)
	if name == "" {
		return nil, errors.ProfileNotFound("")
	}
	p, ok := r.lookup.Get(name)
	if !ok {
		return nil, errors.ProfileNotFound(name)
	}
	return p, nil
}

// ResolveLinked returns the profile of profileType linked to the profile of
// node. A missing link, or a link naming a profile of another type, is a
// type mismatch.
func (r *Resolver) ResolveLinked(ctx context.Context, node Node, profileType string) (*profiles.Profile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	primary, err := r.Resolve(node)
	if err != nil {
		return nil, err
	}

	linkedName, ok := primary.LinkedName(profileType)
	if !ok {
		return nil, errors.LinkedProfileTypeMismatch(primary.Name, profileType)
	}

	linked, ok := r.lookup.Get(linkedName)
	if !ok {
		return nil, errors.ProfileNotFound(linkedName).WithDetail("linked_from", primary.Name)
	}
	if linked.Type != profileType {
		return nil, errors.LinkedProfileTypeMismatch(primary.Name, profileType).
			WithDetail("linked", linkedName).
			WithDetail("linked_type", linked.Type)
	}
	return linked, nil
}
