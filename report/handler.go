package report

import "sync"

// Reporter receives diagnostics as they are produced. It is the embedder's
// hook for presenting, filtering, or promoting them, mirroring the
// Error/Warning split in protocompile's reporter.Reporter.
type Reporter interface {
	// Error is invoked for every error-severity diagnostic. If it returns a
	// non-nil error, the operation that produced the diagnostic aborts
	// immediately with that error; returning nil allows the compilation to
	// keep collecting further diagnostics (spec.md §7 propagation policy).
	Error(Diagnostic) error
	// Warning is invoked for every non-error diagnostic. It never aborts the
	// operation.
	Warning(Diagnostic)
}

// Funcs adapts two plain functions into a Reporter.
type Funcs struct {
	OnError   func(Diagnostic) error
	OnWarning func(Diagnostic)
}

func (f Funcs) Error(d Diagnostic) error {
	if f.OnError == nil {
		return nil
	}
	return f.OnError(d)
}

func (f Funcs) Warning(d Diagnostic) {
	if f.OnWarning != nil {
		f.OnWarning(d)
	}
}

// Collector is the common case: a Reporter that never aborts and simply
// accumulates every diagnostic, in emission order, for later retrieval. Its
// deterministic append-only order is what makes the §8 "diagnostic
// determinism" property checkable.
type Collector struct {
	mu    sync.Mutex
	diags []Diagnostic
}

func (c *Collector) Error(d Diagnostic) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.diags = append(c.diags, d)
	return nil
}

func (c *Collector) Warning(d Diagnostic) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.diags = append(c.diags, d)
}

// Diagnostics returns every diagnostic collected so far, in emission order.
func (c *Collector) Diagnostics() []Diagnostic {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Diagnostic, len(c.diags))
	copy(out, c.diags)
	return out
}

// Handler threads diagnostic emission through a single Reporter for one
// compilation, tracking whether any error has fired so callers can
// short-circuit (e.g. the checker continuing in Unknown mode per spec.md
// §7, or the VM/interpreter stopping at the first runtime error). Modeled
// directly on protocompile's reporter.Handler.
type Handler struct {
	reporter Reporter

	mu     sync.Mutex
	hadErr bool
	abort  error
}

// NewHandler creates a Handler that reports through rep. A nil rep installs
// a Collector.
func NewHandler(rep Reporter) *Handler {
	if rep == nil {
		rep = &Collector{}
	}
	return &Handler{reporter: rep}
}

// Error reports an error diagnostic. It returns the abort error (if the
// underlying Reporter requested one), which the caller should propagate
// immediately without producing further diagnostics for the current node.
func (h *Handler) Error(d Diagnostic) error {
	h.mu.Lock()
	h.hadErr = true
	h.mu.Unlock()
	if err := h.reporter.Error(d); err != nil {
		h.mu.Lock()
		h.abort = err
		h.mu.Unlock()
		return err
	}
	return nil
}

// Warning reports a warning/note/help diagnostic. Never aborts.
func (h *Handler) Warning(d Diagnostic) {
	h.reporter.Warning(d)
}

// HadError reports whether any error-severity diagnostic has been reported
// so far.
func (h *Handler) HadError() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.hadErr
}

// Aborted returns the error that caused the Reporter to request an abort, or
// nil if none has occurred.
func (h *Handler) Aborted() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.abort
}
