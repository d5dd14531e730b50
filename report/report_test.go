package report_test

import (
	"testing"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/stretchr/testify/require"

	"github.com/atlas-lang/atlas/report"
	"github.com/atlas-lang/atlas/source"
)

func TestRenderGolden(t *testing.T) {
	f := source.New("main.atl", []byte("let x = ;\n"))
	f.AddLine(10)
	span := source.Make(f, 8, 9)

	d := report.New(report.ErrUnexpectedToken, span, "expected expression").
		WithHelp("insert a value before the semicolon")

	got := d.Render()
	want := "error[AT1005]: expected expression\n" +
		"  --> main.atl:1:9\n" +
		"1 | let x = ;\n" +
		"  |         ^\n" +
		"  = help: insert a value before the semicolon\n"

	if got != want {
		diff := difflib.UnifiedDiff{
			A:        difflib.SplitLines(want),
			B:        difflib.SplitLines(got),
			FromFile: "want",
			ToFile:   "got",
			Context:  3,
		}
		text, _ := difflib.GetUnifiedDiffString(diff)
		t.Fatalf("render mismatch:\n%s", text)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	f := source.New("a.atl", []byte("x + y"))
	span := source.Make(f, 0, 1)

	d := report.New(report.ErrTypeMismatch, span, "type mismatch").
		WithRelated(span, "declared here")

	data, err := d.ToJSON()
	require.NoError(t, err)

	back, err := report.FromJSON(data)
	require.NoError(t, err)

	data2, err := back.ToJSON()
	require.NoError(t, err)
	require.JSONEq(t, string(data), string(data2))
}

func TestCollectorOrderIsDeterministic(t *testing.T) {
	c := &report.Collector{}
	f := source.New("a.atl", []byte("abc"))
	h := report.NewHandler(c)

	for i := 0; i < 5; i++ {
		_ = h.Error(report.New(report.ErrUnknownSymbol, source.Make(f, i, i+1), "x"))
	}
	got := c.Diagnostics()
	require.Len(t, got, 5)
	for i, d := range got {
		require.Equal(t, i, d.Primary.Start)
	}
}
