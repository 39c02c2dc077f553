package build

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"

	"github.com/okra-platform/dtogen/internal/output"
)

// ManifestName is the file written next to the generated sources
const ManifestName = ".dtogen-manifest.json"

// Manifest records what a build produced, so later builds can detect
// unchanged inputs and remove files that are no longer generated
type Manifest struct {
	BuildInfo BuildInfo `json:"build"`
	// Files are slash-separated paths relative to the output directory
	Files []string `json:"files"`
}

// NewManifest creates a manifest for the generated files
func NewManifest(info BuildInfo, files []output.File) *Manifest {
	m := &Manifest{BuildInfo: info, Files: make([]string, 0, len(files))}
	for _, f := range files {
		m.Files = append(m.Files, f.Path())
	}
	return m
}

// File returns the manifest as an output file at the root of the output directory
func (m *Manifest) File() (output.File, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return output.File{}, errors.Wrap(err, "failed to marshal manifest")
	}
	return output.File{
		BaseName:  ".dtogen-manifest",
		Extension: "json",
		Content:   append(data, '\n'),
	}, nil
}

// ReadManifest loads the manifest of a previous build
func ReadManifest(outputDir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(outputDir, ManifestName))
	if err != nil {
		return nil, errors.Wrap(err, "failed to read manifest")
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrap(err, "failed to parse manifest")
	}
	return &m, nil
}

// Prune removes files listed in m that are not part of current and returns
// their paths. Paths that fail validation are never touched.
func (m *Manifest) Prune(outputDir string, current []output.File) []string {
	keep := make(map[string]bool, len(current))
	for _, f := range current {
		keep[f.Path()] = true
	}

	var removed []string
	for _, p := range m.Files {
		if keep[p] || output.ValidatePath(p) != nil {
			continue
		}
		if err := os.Remove(filepath.Join(outputDir, filepath.FromSlash(p))); err == nil {
			removed = append(removed, p)
		}
	}
	return removed
}
