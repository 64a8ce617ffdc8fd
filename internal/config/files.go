package config

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	derrors "git.home.luguber.info/inful/docweb/internal/errors"
	"git.home.luguber.info/inful/docweb/internal/logfields"
)

// Base directories (relative to RootDir) and extensions for documentation sources.
const (
	DocBaseDir    = "doc"
	DocExt        = ".rst"
	SourceBaseDir = "lib"
	SourceExt     = ".nim"
)

// splitPatterns separates a pattern list on ';' and whitespace.
func splitPatterns(value string) []string {
	return strings.FieldsFunc(value, func(r rune) bool {
		return r == ';' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
}

// expandPatterns resolves each pattern against base: the file
// <base>/<pattern><ext> when it exists (ext only added when the pattern has
// none), plus every <ext> file below <base>/<pattern> when that is a
// directory. Results keep pattern order; directory walks are lexical.
func expandPatterns(base, ext, value string) ([]string, error) {
	var out []string
	for _, pattern := range splitPatterns(value) {
		matched := false

		file := filepath.Join(base, pattern)
		if filepath.Ext(file) == "" {
			file += ext
		}
		if info, err := os.Stat(file); err == nil && info.Mode().IsRegular() {
			out = append(out, file)
			matched = true
		}

		dir := filepath.Join(base, pattern)
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
				if walkErr != nil {
					return walkErr
				}
				if !d.IsDir() && filepath.Ext(path) == ext {
					out = append(out, path)
				}
				return nil
			})
			if err != nil {
				return nil, derrors.ResourceError(dir, "walk", err)
			}
			matched = true
		}

		if !matched {
			slog.Warn("Documentation pattern matched no files",
				slog.String("pattern", pattern),
				logfields.Path(base))
		}
	}
	return out, nil
}
