// Package modules collects module sources for the evaluator: from a source
// tree on disk or from a bundle archive.
package modules

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/funvibe/serpent/internal/config"
)

// ModuleName maps a file path to its module name: the base name without
// the extension.
func ModuleName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func hasExtension(name string, exts []string) bool {
	for _, ext := range exts {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// LoadDir reads every source file under dir, recursively, into a map from
// module name to source. Two files with the same module name are an error.
// exts defaults to config.SourceFileExtensions.
func LoadDir(dir string, exts []string) (map[string]string, error) {
	sources := make(map[string]string)
	if err := loadInto(sources, make(map[string]string), dir, exts); err != nil {
		return nil, err
	}
	return sources, nil
}

// LoadDirs merges several source trees with the same rules as LoadDir.
func LoadDirs(dirs []string, exts []string) (map[string]string, error) {
	sources := make(map[string]string)
	origin := make(map[string]string)
	for _, dir := range dirs {
		if err := loadInto(sources, origin, dir, exts); err != nil {
			return nil, err
		}
	}
	return sources, nil
}

func loadInto(sources, origin map[string]string, dir string, exts []string) error {
	if len(exts) == 0 {
		exts = config.SourceFileExtensions
	}
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !hasExtension(d.Name(), exts) {
			return nil
		}

		name := ModuleName(path)
		if prev, ok := origin[name]; ok {
			return fmt.Errorf("module %s defined twice: %s and %s", name, prev, path)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading module %s: %w", name, err)
		}
		sources[name] = string(data)
		origin[name] = path
		return nil
	})
}
