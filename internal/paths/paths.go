// Package paths provides path resolution utilities.
package paths

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	appName = "hoard"

	// ProjectDir is the per-project directory holding config and documents.
	ProjectDir = ".hoard"

	// DefaultDocumentName is used when a directory is given without a file.
	DefaultDocumentName = "inventory.yaml"
)

// documentNames are probed, in order, when resolving a directory.
var documentNames = []string{
	"inventory.yaml",
	"inventory.yml",
	"inventory.json",
	"inventory.toml",
	"inventory.db",
}

// ConfigDir returns ~/.config/hoard, or "" when the home dir is unknown.
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appName)
}

// DataDir returns the directory for documents. HOARD_HOME wins, then
// $XDG_DATA_HOME/hoard, then ~/.local/share/hoard.
func DataDir() string {
	if dir := os.Getenv("HOARD_HOME"); dir != "" {
		return filepath.Clean(dir)
	}
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "share", appName)
}

// DefaultDocumentPath returns DataDir()/inventory.yaml, or "" when no data
// dir can be derived.
func DefaultDocumentPath() string {
	dir := DataDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, DefaultDocumentName)
}

// DefaultTracesPath returns ~/.config/hoard/traces/traces.jsonl, or "".
func DefaultTracesPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "traces", "traces.jsonl")
}

// ResolveDocumentPath turns user input into a document file path.
//
//   - "" -> "./.hoard/inventory.yaml"
//   - an existing file, or a missing path with an extension -> unchanged
//   - a directory holding inventory.* -> that file
//   - any other directory -> resolved inside its .hoard directory
//
// A .hoard/redirect file naming another directory is followed, so several
// checkouts can share one document.
func ResolveDocumentPath(path string) string {
	if path == "" {
		path = "."
	}
	path = filepath.Clean(path)

	info, err := os.Stat(path)
	if err == nil && !info.IsDir() {
		return path
	}
	if err != nil && filepath.Ext(path) != "" {
		return path
	}

	dir := path
	if filepath.Base(dir) != ProjectDir {
		if found := findDocument(dir); found != "" {
			return found
		}
		dir = filepath.Join(dir, ProjectDir)
	}
	dir = followRedirect(dir)

	if found := findDocument(dir); found != "" {
		return found
	}
	return filepath.Join(dir, DefaultDocumentName)
}

func findDocument(dir string) string {
	for _, name := range documentNames {
		candidate := filepath.Join(dir, name)
		if st, err := os.Stat(candidate); err == nil && !st.IsDir() {
			return candidate
		}
	}
	return ""
}

func followRedirect(dir string) string {
	content, err := os.ReadFile(filepath.Join(dir, "redirect")) //nolint:gosec // redirect lives inside the project dir
	if err != nil {
		return dir
	}
	target := strings.TrimSpace(string(content))
	if target == "" {
		return dir
	}
	if filepath.IsAbs(target) {
		return filepath.Clean(target)
	}
	return filepath.Clean(filepath.Join(dir, target))
}
