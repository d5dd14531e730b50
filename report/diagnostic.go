package report

import "github.com/atlas-lang/atlas/source"

// SchemaVersion is the current version tag embedded in every JSON diagnostic
// projection, per spec.md §3 ("schema-version tag"). Readers of a foreign
// JSON diagnostic should compare against this before trusting unfamiliar
// fields.
const SchemaVersion = 1

// RelatedSpan annotates a diagnostic with a secondary span and a short note,
// e.g. "previous declaration here" for a redeclaration error.
type RelatedSpan struct {
	Span    source.Span
	Message string
}

// Diagnostic is a single structured record as described in spec.md §3 and
// §6. It is immutable once constructed; Handler only ever appends.
type Diagnostic struct {
	Code     Code
	Severity Severity
	Primary  source.Span
	Message  string
	Related  []RelatedSpan
	Help     string
	hasHelp  bool
}

// New builds a diagnostic at its code's default severity (Warning for
// AT2xxx, Error otherwise).
func New(code Code, primary source.Span, message string) Diagnostic {
	return Diagnostic{Code: code, Severity: code.DefaultSeverity(), Primary: primary, Message: message}
}

// WithRelated returns a copy of d with an additional related span.
func (d Diagnostic) WithRelated(span source.Span, message string) Diagnostic {
	d.Related = append(append([]RelatedSpan(nil), d.Related...), RelatedSpan{Span: span, Message: message})
	return d
}

// WithHelp returns a copy of d carrying a "= help:" suggestion.
func (d Diagnostic) WithHelp(help string) Diagnostic {
	d.Help = help
	d.hasHelp = true
	return d
}

// HasHelp reports whether d carries a help suggestion.
func (d Diagnostic) HasHelp() bool { return d.hasHelp || d.Help != "" }

// WithSeverity returns a copy of d with its severity overridden; used to
// implement the per-code allow|warn|deny policy in spec.md §7.
func (d Diagnostic) WithSeverity(sev Severity) Diagnostic {
	d.Severity = sev
	return d
}

// jsonDiagnostic is the wire shape for the JSON projection in spec.md §6.
// Keeping it as a separate, tag-stable struct (rather than json-tagging
// Diagnostic directly) is what makes the round-trip property in §8
// ("parse_json(render_json(d)) = d") checkable byte-for-byte: encoding/json
// always emits object keys in this struct's field order.
type jsonDiagnostic struct {
	DiagVersion int            `json:"diag_version"`
	Severity    string         `json:"severity"`
	Code        string         `json:"code"`
	Message     string         `json:"message"`
	File        string         `json:"file"`
	Line        int            `json:"line"`
	Column      int            `json:"column"`
	Length      int            `json:"length"`
	Hint        string         `json:"hint,omitempty"`
	Related     []jsonRelated  `json:"related,omitempty"`
}

type jsonRelated struct {
	Message string `json:"message"`
	File    string `json:"file"`
	Line    int    `json:"line"`
	Column  int    `json:"column"`
	Length  int    `json:"length"`
}
