package plugin

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
	"golang.org/x/crypto/blake2b"
	"gopkg.in/yaml.v3"
)

// ManifestFile is the manifest file name inside a plugin directory.
const ManifestFile = "plugin.yaml"

// maxIDLength is the maximum allowed length for plugin ids.
const maxIDLength = 64

// idPattern: a lowercase letter, then lowercase letters, digits, or
// hyphens, not ending with a hyphen.
var idPattern = regexp.MustCompile(`^[a-z]([a-z0-9-]*[a-z0-9])?$`)

// Manifest is a parsed plugin.yaml.
type Manifest struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	Version     string   `yaml:"version"`
	API         string   `yaml:"api"`
	Entry       string   `yaml:"entry"`
	Checksum    string   `yaml:"checksum,omitempty"`
	Permissions []string `yaml:"permissions,omitempty"`
}

// ParseManifest parses and validates a plugin.yaml file.
func ParseManifest(data []byte) (*Manifest, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("manifest data is empty")
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var m Manifest
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks manifest constraints.
func (m *Manifest) Validate() error {
	if !idPattern.MatchString(m.ID) {
		return fmt.Errorf("id %q must start with a-z, contain only a-z, 0-9, hyphens, and not end with a hyphen", m.ID)
	}
	if len(m.ID) > maxIDLength {
		return fmt.Errorf("id must be %d characters or less, got %d", maxIDLength, len(m.ID))
	}
	if _, err := semver.StrictNewVersion(m.Version); err != nil {
		return fmt.Errorf("version %q: %w", m.Version, err)
	}
	if m.API != "" {
		if _, err := semver.NewConstraint(m.API); err != nil {
			return fmt.Errorf("api constraint %q: %w", m.API, err)
		}
	}
	if m.Entry == "" {
		return errors.New("entry is required")
	}
	if strings.Contains(m.Entry, "..") || strings.HasPrefix(m.Entry, "/") {
		return fmt.Errorf("entry %q must be a relative path inside the plugin directory", m.Entry)
	}
	if m.Checksum != "" {
		if b, err := hex.DecodeString(m.Checksum); err != nil || len(b) != blake2b.Size256 {
			return fmt.Errorf("checksum must be %d hex-encoded bytes", blake2b.Size256)
		}
	}
	return nil
}

// Compatible reports an error unless host satisfies the manifest's api
// constraint. An empty constraint accepts any host.
func (m *Manifest) Compatible(host *semver.Version) error {
	if m.API == "" {
		return nil
	}
	c, err := semver.NewConstraint(m.API)
	if err != nil {
		return fmt.Errorf("api constraint %q: %w", m.API, err)
	}
	if ok, errs := c.Validate(host); !ok {
		return fmt.Errorf("plugin %s requires api %s, host provides %s: %v", m.ID, m.API, host, errs)
	}
	return nil
}

// Checksum returns the hex blake2b-256 digest of data.
func Checksum(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// VerifyEntry checks entry source against the manifest checksum. A manifest
// without a checksum accepts any source.
func (m *Manifest) VerifyEntry(source []byte) error {
	if m.Checksum == "" {
		return nil
	}
	if got := Checksum(source); !strings.EqualFold(got, m.Checksum) {
		return fmt.Errorf("plugin %s: entry checksum mismatch: manifest %s, file %s", m.ID, m.Checksum, got)
	}
	return nil
}
