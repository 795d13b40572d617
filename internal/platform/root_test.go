package platform

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindRoot(t *testing.T) {
	// base/
	//   vault/ (.notegraph)
	//     subdir/nested/
	//   configured/ (notegraph.yaml)
	//     inner/
	//   empty/
	baseDir := t.TempDir()
	vaultDir := filepath.Join(baseDir, "vault")
	subDir := filepath.Join(vaultDir, "subdir")
	nestedDir := filepath.Join(subDir, "nested")
	configuredDir := filepath.Join(baseDir, "configured")
	innerDir := filepath.Join(configuredDir, "inner")
	emptyDir := filepath.Join(baseDir, "empty")

	for _, d := range []string{nestedDir, innerDir, emptyDir} {
		require.NoError(t, os.MkdirAll(d, 0755))
	}
	require.NoError(t, os.Mkdir(filepath.Join(vaultDir, DefaultSystemDir), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(configuredDir, ConfigFile), []byte("adapter: fs\n"), 0644))

	tests := []struct {
		name      string
		startPath string
		wantRoot  string
		wantErr   bool
	}{
		{name: "start at root", startPath: vaultDir, wantRoot: vaultDir},
		{name: "start in subdir", startPath: subDir, wantRoot: vaultDir},
		{name: "start nested deeply", startPath: nestedDir, wantRoot: vaultDir},
		{name: "config file marks root", startPath: innerDir, wantRoot: configuredDir},
		{name: "no root found", startPath: emptyDir, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FindRoot(tt.startPath)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, filepath.Clean(tt.wantRoot), filepath.Clean(got))
		})
	}
}
