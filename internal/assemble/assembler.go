// Package assemble writes the publishable output tree from a scanned entry
// set and a variable set. Output is a deterministic function of its inputs:
// two runs over unchanged inputs produce byte-identical trees. Nothing here
// re-reads the input tree; assembly works entirely from the scan snapshot.
package assemble

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ArdonToonstra/simplifier-ig/internal/config"
	guideerrors "github.com/ArdonToonstra/simplifier-ig/internal/errors"
	"github.com/ArdonToonstra/simplifier-ig/internal/findings"
	"github.com/ArdonToonstra/simplifier-ig/internal/scan"
	"github.com/ArdonToonstra/simplifier-ig/internal/util/sets"
)

// Check identifiers for findings the assembler emits.
const (
	CheckUnresolvedVariable = "unresolved-variable"
	CheckTemplateEncoding   = "template-encoding"
)

// UnresolvedPolicy decides how hard an unresolved variable token hits the
// report. The default warns; strict setups escalate to an error so the run
// exits non-zero even though the output was written.
type UnresolvedPolicy string

const (
	UnresolvedWarn  UnresolvedPolicy = "warn"
	UnresolvedError UnresolvedPolicy = "error"
)

// Severity maps the policy onto finding severity.
func (p UnresolvedPolicy) Severity() findings.Severity {
	if p == UnresolvedError {
		return findings.SeverityError
	}
	return findings.SeverityWarning
}

// tokenPattern matches one variable token. The name is trimmed after
// capture, so both {{ig-var:name}} and {{ig-var: name }} resolve.
var tokenPattern = regexp.MustCompile(`\{\{ig-var:([^{}]*)\}\}`)

// Assembler writes one output tree per call.
type Assembler struct {
	vars   config.VariableSet
	policy UnresolvedPolicy
}

// New creates an assembler over the given variable set. A nil set is valid
// and leaves every token unresolved.
func New(vars config.VariableSet, policy UnresolvedPolicy) *Assembler {
	if policy == "" {
		policy = UnresolvedWarn
	}
	return &Assembler{vars: vars, policy: policy}
}

// Assemble mirrors every categorized entry under outputRoot, substituting
// variable tokens in template-eligible text files and copying everything
// else byte for byte. The returned report carries substitution findings;
// a non-nil error is a fatal filesystem failure and leaves any partial
// output in place for the caller to inspect or discard.
func (a *Assembler) Assemble(outputRoot string, entries []scan.InputEntry) (*findings.Report, error) {
	report := &findings.Report{}
	seen := sets.New()

	if err := os.MkdirAll(outputRoot, 0o755); err != nil {
		return report, guideerrors.MkdirFailed(outputRoot, err)
	}

	for _, e := range entries {
		// Uncategorized files are reported by the validator but never shipped.
		if e.Category == scan.CategoryOther || e.Category == scan.CategoryNone {
			continue
		}

		dest := filepath.Join(outputRoot, filepath.FromSlash(e.RelPath))
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return report, guideerrors.MkdirFailed(filepath.Dir(dest), err)
		}

		content := e.Content
		if e.Template {
			if utf8.Valid(content) {
				content = a.substitute(e, report, seen)
			} else {
				report.Add(findings.Finding{
					Path:     e.RelPath,
					Category: e.Category,
					Severity: findings.SeverityInfo,
					Check:    CheckTemplateEncoding,
					Message:  "template-eligible file is not valid UTF-8 text, copied without substitution",
				})
			}
		}

		if err := os.WriteFile(dest, content, 0o644); err != nil {
			return report, guideerrors.WriteFailed(dest, err)
		}
	}

	report.Sort()
	return report, nil
}

// substitute replaces every resolvable token in one entry. Unresolved
// tokens stay verbatim; each distinct name is reported once per run, at
// the first file it appears in.
func (a *Assembler) substitute(e scan.InputEntry, report *findings.Report, seen sets.Set) []byte {
	return tokenPattern.ReplaceAllFunc(e.Content, func(tok []byte) []byte {
		name := strings.TrimSpace(string(tokenPattern.FindSubmatch(tok)[1]))
		if val, ok := a.vars[name]; ok {
			return []byte(val)
		}
		if seen.Add(name) {
			report.Add(findings.Finding{
				Path:     e.RelPath,
				Category: e.Category,
				Severity: a.policy.Severity(),
				Check:    CheckUnresolvedVariable,
				Message:  fmt.Sprintf("variable %q is not defined in %s", name, config.VariablesFileName),
			})
		}
		return tok
	})
}
