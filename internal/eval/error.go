package eval

import "fmt"

// Error reports a formula that could not be parsed or evaluated. Name carries
// the offending variable, function or operator when one can be identified.
type Error struct {
	Formula string
	Name    string
	Reason  string
	Err     error
}

func (e *Error) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("formula %q: %s: %q", e.Formula, e.Reason, e.Name)
	}
	return fmt.Sprintf("formula %q: %s", e.Formula, e.Reason)
}

func (e *Error) Unwrap() error {
	return e.Err
}
