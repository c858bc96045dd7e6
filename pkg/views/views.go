// Package views provides the tree-view providers the extender signals after
// a profile reload.
package views

import (
	"context"
	"fmt"
)

// Provider is a tree-view data source. AddSession asks the provider to add
// sessions for newly available profiles and drop stale ones.
type Provider interface {
	AddSession(ctx context.Context) error
}

// ProviderFunc adapts a function to a Provider.
type ProviderFunc func(ctx context.Context) error

// AddSession calls f(ctx).
func (f ProviderFunc) AddSession(ctx context.Context) error {
	return f(ctx)
}

// Kind identifies one of the three tree views.
type Kind int

const (
	KindDataset Kind = iota
	KindFilesystem
	KindJob
)

// Kinds returns every view kind in signalling order.
func Kinds() []Kind {
	return []Kind{KindDataset, KindFilesystem, KindJob}
}

func (k Kind) String() string {
	switch k {
	case KindDataset:
		return "dataset"
	case KindFilesystem:
		return "filesystem"
	case KindJob:
		return "job"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind parses a view name as printed by Kind.String.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds() {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown view %q (expected dataset, filesystem or job)", s)
}
