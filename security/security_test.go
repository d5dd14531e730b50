package security_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlas-lang/atlas/report"
	"github.com/atlas-lang/atlas/security"
	"github.com/atlas-lang/atlas/source"
)

func TestDenyAllDeniesEveryCapability(t *testing.T) {
	ctx := security.DenyAll()

	err := ctx.CheckFilesystemRead(source.Dummy, "/etc/passwd")
	require.Error(t, err)
	rerr, ok := report.AsRuntimeError(err)
	require.True(t, ok)
	assert.Equal(t, report.ErrSecurityDenied, rerr.Code)

	assert.Error(t, ctx.CheckFilesystemWrite(source.Dummy, "/tmp/x"))
	assert.Error(t, ctx.CheckNetwork(source.Dummy, "example.com"))
	assert.Error(t, ctx.CheckProcess(source.Dummy, "ls"))
	assert.Error(t, ctx.CheckEnvironment(source.Dummy, "HOME"))
}

func TestPolicyGlobGrantsMatchingPaths(t *testing.T) {
	policy, err := security.LoadPolicy([]byte(`
filesystem_read:
  - "/data/**/*.json"
network:
  - "*.example.com"
`))
	require.NoError(t, err)
	ctx := security.New(policy)

	assert.NoError(t, ctx.CheckFilesystemRead(source.Dummy, "/data/a/b/config.json"))
	assert.Error(t, ctx.CheckFilesystemRead(source.Dummy, "/etc/passwd"))
	assert.NoError(t, ctx.CheckNetwork(source.Dummy, "api.example.com"))
	assert.Error(t, ctx.CheckNetwork(source.Dummy, "evil.com"))
	assert.Error(t, ctx.CheckFilesystemWrite(source.Dummy, "/data/a/b/config.json"))
}
