package connect

import (
	"errors"
	"strings"
)

// NotConnectedError is the structured failure raised by a connect that did
// not fully succeed. A leaf failure carries a Reason; a composite failure
// carries one BranchFailure per failing child, preserving the tree shape
// instead of flattening to one string. Successful branches never appear.
type NotConnectedError struct {
	// Reason is the failure message for a leaf (no branches).
	Reason string

	// Branches are the failing children, in registration order.
	Branches []BranchFailure
}

// BranchFailure is one failing branch of an aggregated connect.
type BranchFailure struct {
	// Name is the branch name the failure is reported under.
	Name string

	// Err is the branch's failure. A *NotConnectedError here nests its
	// own report under the branch name.
	Err error
}

// NewNotConnected creates a leaf connection failure.
func NewNotConnected(reason string) *NotConnectedError {
	return &NotConnectedError{Reason: reason}
}

// Error renders the failure report, one branch per line, nested failures
// indented under their branch name.
func (e *NotConnectedError) Error() string {
	return strings.Join(e.Lines(), "\n")
}

// Lines returns the failure report as individual lines. A leaf yields its
// reason; a composite yields "name: reason" per single-line branch and
// "name:" followed by indented sub-lines per multi-line branch.
func (e *NotConnectedError) Lines() []string {
	if len(e.Branches) == 0 {
		return []string{e.Reason}
	}

	var lines []string
	for _, b := range e.Branches {
		sub := failureLines(b.Err)
		if len(sub) == 1 {
			lines = append(lines, b.Name+": "+sub[0])
			continue
		}
		lines = append(lines, b.Name+":")
		for _, l := range sub {
			lines = append(lines, "  "+l)
		}
	}
	return lines
}

// failureLines renders one branch error: structured failures expand to
// their own lines, anything else is a single line of its message.
func failureLines(err error) []string {
	var nc *NotConnectedError
	if errors.As(err, &nc) {
		return nc.Lines()
	}
	return []string{err.Error()}
}
