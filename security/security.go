// Package security implements Atlas's capability gate (spec.md §4.15): a
// single object consulted before any effectful operation (I/O, process,
// environment, network), shared by the interpreter and the VM so one
// embedder policy governs both engines. Grounded on protocompile's walk
// package visitor-mediation pattern — every effectful node passes through
// one gate — applied here to runtime capability checks instead of AST
// traversal.
package security

import (
	"github.com/atlas-lang/atlas/report"
	"github.com/atlas-lang/atlas/source"
)

// Context is the capability object spec.md §4.15 describes. The zero value
// is not meaningful; use DenyAll or New.
type Context struct {
	policy *Policy
}

// DenyAll returns a Context that denies every capability, the default
// policy spec.md §6 requires ("Default policy: deny-all security").
func DenyAll() *Context { return &Context{policy: &Policy{}} }

// New builds a Context enforcing an explicit policy. A nil policy behaves
// like DenyAll.
func New(p *Policy) *Context {
	if p == nil {
		p = &Policy{}
	}
	return &Context{policy: p}
}

func (c *Context) denied(span source.Span, capability, subject string) error {
	return report.NewRuntimeError(report.ErrSecurityDenied, span,
		"%s denied for %q", capability, subject)
}

// CheckFilesystemRead implements spec.md §4.15's check_filesystem_read(path).
func (c *Context) CheckFilesystemRead(span source.Span, path string) error {
	if c.policy.allows(c.policy.FilesystemRead, path) {
		return nil
	}
	return c.denied(span, "filesystem read", path)
}

// CheckFilesystemWrite implements check_filesystem_write(path).
func (c *Context) CheckFilesystemWrite(span source.Span, path string) error {
	if c.policy.allows(c.policy.FilesystemWrite, path) {
		return nil
	}
	return c.denied(span, "filesystem write", path)
}

// CheckNetwork implements check_network(host).
func (c *Context) CheckNetwork(span source.Span, host string) error {
	if c.policy.allows(c.policy.Network, host) {
		return nil
	}
	return c.denied(span, "network", host)
}

// CheckProcess implements check_process(command).
func (c *Context) CheckProcess(span source.Span, command string) error {
	if c.policy.allows(c.policy.Process, command) {
		return nil
	}
	return c.denied(span, "process", command)
}

// CheckEnvironment implements check_environment(var).
func (c *Context) CheckEnvironment(span source.Span, name string) error {
	if c.policy.allows(c.policy.Environment, name) {
		return nil
	}
	return c.denied(span, "environment", name)
}
