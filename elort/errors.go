// Package elort is the runtime imported by generated validators.
//
// Generated code calls into elort for validation results, temporal
// keywords, regular expressions and operations on values whose type is
// only known at run time. The package has no mutable state apart from the
// pattern cache used by Matches.
package elort

import (
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// ValidationError is one failed check.
type ValidationError struct {
	// Path is the dotted field path the check is about, if any.
	Path string
	// Rule names the check, such as age_check.
	Rule string
	// Message describes what was expected.
	Message string
}

func (e ValidationError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return e.Path + ": " + e.Message
}

// ValidationErrors collects the failed checks of one validation, in the
// order the checks appear in the rule.
type ValidationErrors []ValidationError

// Add appends a failure.
func (errs *ValidationErrors) Add(path, rule, message string) {
	*errs = append(*errs, ValidationError{Path: path, Rule: rule, Message: message})
}

func (errs ValidationErrors) Error() string {
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "\n")
}

// Err returns errs as an error, or nil when no check failed.
func (errs ValidationErrors) Err() error {
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Table renders the failures as a text table.
func (errs ValidationErrors) Table() string {
	tw := table.NewWriter()
	tw.AppendHeader(table.Row{"Path", "Rule", "Message"})
	for _, e := range errs {
		tw.AppendRow(table.Row{e.Path, e.Rule, e.Message})
	}
	style := table.StyleLight
	style.Format.Header = text.FormatDefault
	tw.SetStyle(style)
	return tw.Render()
}
