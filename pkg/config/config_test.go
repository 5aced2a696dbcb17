package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.MaxBoxes = 0
	require.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Scales = nil
	require.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Relations.NoRel = 0
	require.Error(t, cfg.Validate())
}

func TestLoad(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "roibatch.json")
	require.NoError(t, os.WriteFile(filename, []byte(`{"maxBoxes": 20, "scales": [480, 600]}`), 0644))
	cfg, err := Load(filename)
	require.NoError(t, err)
	require.Equal(t, 20, cfg.MaxBoxes)
	require.Equal(t, []int{480, 600}, cfg.Scales)
	// Fields absent from the file keep their defaults
	require.Equal(t, Default().MaxGrasps, cfg.MaxGrasps)

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}
