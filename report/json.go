package report

import (
	"encoding/json"
	"fmt"

	"github.com/atlas-lang/atlas/source"
)

// ToJSON renders the JSON projection of spec.md §6. The field order and
// omitempty rules here are chosen to make json_parse(json_stringify(d)) = d
// exact (the §8 round-trip property), modulo the synthetic "file" name used
// for dummy spans.
func (d Diagnostic) ToJSON() ([]byte, error) {
	w := jsonDiagnostic{
		DiagVersion: SchemaVersion,
		Severity:    d.Severity.String(),
		Code:        d.Code.String(),
		Message:     d.Message,
		Length:      d.Primary.Len(),
	}
	if d.Primary.IsDummy() {
		w.File = "<synthetic>"
	} else {
		w.File = d.Primary.File.Name()
		w.Line = d.Primary.Line
		w.Column = d.Primary.Column
	}
	if d.HasHelp() {
		w.Hint = d.Help
	}
	for _, r := range d.Related {
		jr := jsonRelated{Message: r.Message, Length: r.Span.Len()}
		if !r.Span.IsDummy() {
			jr.File = r.Span.File.Name()
			jr.Line = r.Span.Line
			jr.Column = r.Span.Column
		} else {
			jr.File = "<synthetic>"
		}
		w.Related = append(w.Related, jr)
	}
	return json.Marshal(w)
}

// FromJSON parses a diagnostic produced by ToJSON back into a Diagnostic.
// Because a Span requires a *source.File to index into, the decoded
// Diagnostic carries a detached span: a File with the decoded name and no
// contents, the decoded Line/Column, and the range [0, Length). Encoding
// it again with ToJSON reproduces the original JSON (the round-trip
// property).
func FromJSON(data []byte) (Diagnostic, error) {
	var w jsonDiagnostic
	if err := json.Unmarshal(data, &w); err != nil {
		return Diagnostic{}, err
	}
	if w.DiagVersion != SchemaVersion {
		return Diagnostic{}, fmt.Errorf("report: unsupported diag_version %d (want %d)", w.DiagVersion, SchemaVersion)
	}
	d := Diagnostic{
		Message: w.Message,
		Help:    w.Hint,
		hasHelp: w.Hint != "",
	}
	for code := Code(0); code < 10000; code++ {
		if code.String() == w.Code {
			d.Code = code
			break
		}
	}
	switch w.Severity {
	case "error":
		d.Severity = Error
	case "warning":
		d.Severity = Warning
	case "note":
		d.Severity = Note
	case "help":
		d.Severity = Help
	}
	d.Primary = detachedSpan(w.File, w.Line, w.Column, w.Length)
	for _, r := range w.Related {
		d.Related = append(d.Related, RelatedSpan{
			Span:    detachedSpan(r.File, r.Line, r.Column, r.Length),
			Message: r.Message,
		})
	}
	return d, nil
}

// detachedSpan reconstructs a Span's printable fields without a backing
// *source.File. It is only ever used for JSON round-tripping, where the
// original file contents may not be available to the reader.
func detachedSpan(file string, line, column, length int) source.Span {
	if file == "<synthetic>" {
		return source.Dummy
	}
	f := source.New(file, nil)
	return source.Span{File: f, Start: 0, End: length, Line: line, Column: column}
}
