package testutil

import (
	"io"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/blockscene/internal/plan"
	"gopkg.in/yaml.v3"
)

// ReadManifest decodes a manifest written by plan.WriteManifest and fails the
// test if it is not valid YAML.
func ReadManifest(t testing.TB, r io.Reader) *plan.Manifest {
	t.Helper()
	var m plan.Manifest
	require.NoError(t, yaml.NewDecoder(r).Decode(&m), "failed to decode plan manifest")
	return &m
}
