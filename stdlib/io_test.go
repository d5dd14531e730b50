package stdlib_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlas-lang/atlas/report"
	"github.com/atlas-lang/atlas/security"
	"github.com/atlas-lang/atlas/source"
	"github.com/atlas-lang/atlas/stdlib"
	"github.com/atlas-lang/atlas/value"
)

func TestReadFileDeniedUnderDefaultPolicy(t *testing.T) {
	b, ok := stdlib.Lookup("readFile")
	require.True(t, ok)
	_, err := b.Call(&stdlib.Context{}, source.Dummy, []value.Value{value.Str("/etc/passwd")})
	require.Error(t, err)
	rerr, ok := report.AsRuntimeError(err)
	require.True(t, ok)
	assert.Equal(t, report.ErrSecurityDenied, rerr.Code)
}

func TestWriteThenReadFileUnderGrantingPolicy(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "out.txt")

	policy, err := security.LoadPolicy([]byte(`
filesystem_read:
  - "` + dir + `/**"
filesystem_write:
  - "` + dir + `/**"
`))
	require.NoError(t, err)
	ctx := &stdlib.Context{Security: security.New(policy)}

	writeB, ok := stdlib.Lookup("writeFile")
	require.True(t, ok)
	_, err = writeB.Call(ctx, source.Dummy, []value.Value{value.Str(target), value.Str("hello")})
	require.NoError(t, err)

	readB, ok := stdlib.Lookup("readFile")
	require.True(t, ok)
	v, err := readB.Call(ctx, source.Dummy, []value.Value{value.Str(target)})
	require.NoError(t, err)
	assert.Equal(t, value.Str("hello"), v)
}

func TestGetEnvDeniedByDefaultGrantedByPolicy(t *testing.T) {
	t.Setenv("ATLAS_TEST_VAR", "v")
	b, ok := stdlib.Lookup("getEnv")
	require.True(t, ok)

	_, err := b.Call(&stdlib.Context{}, source.Dummy, []value.Value{value.Str("ATLAS_TEST_VAR")})
	require.Error(t, err)

	policy, err := security.LoadPolicy([]byte("environment:\n  - \"ATLAS_TEST_VAR\"\n"))
	require.NoError(t, err)
	v, err := b.Call(&stdlib.Context{Security: security.New(policy)}, source.Dummy, []value.Value{value.Str("ATLAS_TEST_VAR")})
	require.NoError(t, err)
	assert.Equal(t, value.Str("v"), v)

	v, err = b.Call(&stdlib.Context{Security: security.New(policy)}, source.Dummy, []value.Value{value.Str("ATLAS_TEST_MISSING")})
	require.NoError(t, err)
	assert.Equal(t, value.Null{}, v)
}
