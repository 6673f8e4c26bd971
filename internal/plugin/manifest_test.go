package plugin_test

import (
	"testing"

	"github.com/Masterminds/semver/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/dmengine/internal/plugin"
)

const goodManifest = `
id: weather
name: Weather Effects
version: 1.2.0
api: ">=1.0.0, <2.0.0"
entry: main.lua
permissions:
  - events.*
  - actions.register
`

func TestParseManifest_Valid(t *testing.T) {
	m, err := plugin.ParseManifest([]byte(goodManifest))
	require.NoError(t, err)
	assert.Equal(t, "weather", m.ID)
	assert.Equal(t, []string{"events.*", "actions.register"}, m.Permissions)
}

func TestParseManifest_Invalid(t *testing.T) {
	cases := []struct {
		name, yaml, wantErr string
	}{
		{"empty", "", "empty"},
		{"bad id", "id: Weather\nversion: 1.0.0\nentry: a.lua\n", "id"},
		{"bad version", "id: w\nversion: latest\nentry: a.lua\n", "version"},
		{"bad constraint", "id: w\nversion: 1.0.0\napi: banana\nentry: a.lua\n", "api constraint"},
		{"no entry", "id: w\nversion: 1.0.0\n", "entry is required"},
		{"escaping entry", "id: w\nversion: 1.0.0\nentry: ../x.lua\n", "relative path"},
		{"bad checksum", "id: w\nversion: 1.0.0\nentry: a.lua\nchecksum: abc\n", "checksum"},
		{"unknown field", "id: w\nversion: 1.0.0\nentry: a.lua\nauthor: me\n", "invalid YAML"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := plugin.ParseManifest([]byte(tc.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestManifest_Compatible(t *testing.T) {
	m, err := plugin.ParseManifest([]byte(goodManifest))
	require.NoError(t, err)
	assert.NoError(t, m.Compatible(semver.MustParse("1.4.0")))
	assert.Error(t, m.Compatible(semver.MustParse("2.0.0")))

	m.API = ""
	assert.NoError(t, m.Compatible(semver.MustParse("9.0.0")))
}

func TestManifest_VerifyEntry(t *testing.T) {
	src := []byte("function activate(api) end")
	m := &plugin.Manifest{ID: "w", Checksum: plugin.Checksum(src)}
	assert.NoError(t, m.VerifyEntry(src))
	assert.ErrorContains(t, m.VerifyEntry([]byte("tampered")), "checksum mismatch")
	assert.Len(t, plugin.Checksum(src), 64)
}
