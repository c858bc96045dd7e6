package errors

import (
	"fmt"
	"strings"
)

// ProfileNotFound creates a profile not found error. name may be empty when
// the node carried no profile reference at all.
func ProfileNotFound(name string) *ExtenderError {
	if name == "" {
		return New(ErrCodeProfileNotFound, "no profile is associated with the tree node")
	}
	return New(ErrCodeProfileNotFound, fmt.Sprintf("profile '%s' not found", name)).
		WithDetail("profile", name)
}

// LinkedProfileTypeMismatch creates an error for a primary profile that has no
// linked profile of the requested type.
func LinkedProfileTypeMismatch(primary, profileType string) *ExtenderError {
	return New(ErrCodeLinkedProfileTypeMismatch,
		fmt.Sprintf("profile '%s' has no linked profile of type '%s'", primary, profileType)).
		WithDetail("profile", primary).
		WithDetail("type", profileType)
}

// CacheRefresh wraps a failure of the profile cache refresh.
func CacheRefresh(err error) *ExtenderError {
	return Wrap(err, ErrCodeCacheRefresh, "failed to refresh profile cache")
}

// ConfigNotFound creates a configuration not found error
func ConfigNotFound(path string) *ExtenderError {
	return New(ErrCodeConfigNotFound, fmt.Sprintf("configuration file not found: %s", path)).
		WithDetail("path", path)
}

// ConfigInvalid creates an invalid configuration error
func ConfigInvalid(reason string) *ExtenderError {
	return New(ErrCodeConfigInvalid, fmt.Sprintf("invalid configuration: %s", reason))
}

// SignalResult is the outcome of signalling one view provider.
type SignalResult struct {
	Provider string
	Err      error
}

// ProviderSignalError lists the outcome of every provider signalled during a
// single reload, in signalling order. It unwraps to the individual failures.
type ProviderSignalError struct {
	Results []SignalResult
}

func (s *ProviderSignalError) Error() string {
	var parts []string
	for _, r := range s.Results {
		if r.Err != nil {
			parts = append(parts, fmt.Sprintf("%s: %v", r.Provider, r.Err))
		}
	}
	return strings.Join(parts, "; ")
}

// Unwrap returns every provider failure.
func (s *ProviderSignalError) Unwrap() []error {
	var errs []error
	for _, r := range s.Results {
		if r.Err != nil {
			errs = append(errs, r.Err)
		}
	}
	return errs
}

// Failed returns the names of the providers that failed.
func (s *ProviderSignalError) Failed() []string {
	var names []string
	for _, r := range s.Results {
		if r.Err != nil {
			names = append(names, r.Provider)
		}
	}
	return names
}

// ProviderSignal aggregates provider outcomes into a single error. It returns
// nil when every provider succeeded.
func ProviderSignal(results []SignalResult) error {
	failures := &ProviderSignalError{Results: results}
	failed := failures.Failed()
	if len(failed) == 0 {
		return nil
	}
	return Wrap(failures, ErrCodeProviderSignal,
		fmt.Sprintf("%d view provider(s) failed to refresh", len(failed))).
		WithDetail("providers", failed)
}
