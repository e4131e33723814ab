package fat

import (
	"testing"

	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/require"
)

func newTestVolumes(t *testing.T, opts ...Option) map[string]*Volume {
	t.Helper()
	return map[string]*Volume{
		"osfs":  NewOSVolume(t.TempDir(), opts...),
		"memfs": NewMemVolume(opts...),
	}
}

func mustWrite(t *testing.T, v *Volume, path string, data []byte) {
	t.Helper()
	require.NoError(t, util.WriteFile(v.Filesystem(), path, data, 0o644))
}
