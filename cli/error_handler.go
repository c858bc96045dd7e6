package cli

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"

	"github.com/grovetools/extender/errors"
)

// ErrorHandler provides user-friendly error messages
type ErrorHandler struct {
	Verbose bool
	Out     io.Writer
}

// NewErrorHandler creates a new error handler writing to stderr
func NewErrorHandler(verbose bool) *ErrorHandler {
	return &ErrorHandler{
		Verbose: verbose,
		Out:     os.Stderr,
	}
}

// Handle prints a message for err based on its code and returns err.
func (h *ErrorHandler) Handle(err error) error {
	if err == nil {
		return nil
	}

	var extErr *errors.ExtenderError
	stderrors.As(err, &extErr)
	detail := func(key string) interface{} {
		if extErr == nil {
			return nil
		}
		return extErr.Details[key]
	}

	switch errors.GetCode(err) {
	case errors.ErrCodeConfigNotFound:
		fmt.Fprintf(h.Out, "✗ Configuration not found. Create an extender.yml with a 'profiles' list.\n")

	case errors.ErrCodeConfigInvalid:
		fmt.Fprintf(h.Out, "✗ %v\n", err)
		fmt.Fprintf(h.Out, "Run 'extender schema' to see the expected configuration format.\n")

	case errors.ErrCodeProfileNotFound:
		if name := detail("profile"); name != nil {
			fmt.Fprintf(h.Out, "✗ Profile '%v' not found\n", name)
			fmt.Fprintf(h.Out, "Run 'extender profiles list' to see available profiles.\n")
		} else {
			fmt.Fprintf(h.Out, "✗ %v\n", err)
		}

	case errors.ErrCodeLinkedProfileTypeMismatch:
		fmt.Fprintf(h.Out, "✗ Profile '%v' has no linked '%v' profile\n", detail("profile"), detail("type"))
		fmt.Fprintf(h.Out, "Add it under 'links' of the profile in extender.yml.\n")

	case errors.ErrCodeCacheRefresh:
		fmt.Fprintf(h.Out, "✗ Profile reload failed: %v\n", err)

	case errors.ErrCodeProviderSignal:
		var failures *errors.ProviderSignalError
		if stderrors.As(err, &failures) {
			for _, r := range failures.Results {
				if r.Err != nil {
					fmt.Fprintf(h.Out, "✗ %s view failed to refresh: %v\n", r.Provider, r.Err)
				}
			}
		} else {
			fmt.Fprintf(h.Out, "✗ %v\n", err)
		}

	default:
		fmt.Fprintf(h.Out, "✗ Error: %v\n", err)
	}

	if h.Verbose && extErr != nil {
		fmt.Fprintf(h.Out, "\nError details:\n%s\n", extErr.ToJSON())
	}
	return err
}
