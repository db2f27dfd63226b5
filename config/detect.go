package config

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
	"golang.org/x/text/language"
)

// detectDepth is how far below the project root locale roots are searched.
const detectDepth = 3

// skipDirs are never searched for locale roots.
var skipDirs = map[string]bool{
	"node_modules": true,
	"vendor":       true,
	"venv":         true,
	"__pycache__":  true,
}

// DetectLocalePaths finds locale roots below root: directories holding
// <lang>/LC_MESSAGES/*.po. Paths are returned relative to root, sorted.
// Used when neither the config file nor the command line names any.
func DetectLocalePaths(fs afero.Fs, root string) []string {
	var found []string
	var walk func(dir string, depth int)
	walk = func(dir string, depth int) {
		if isLocaleRoot(fs, dir) {
			rel, err := filepath.Rel(root, dir)
			if err != nil {
				rel = dir
			}
			found = append(found, rel)
			return
		}
		if depth >= detectDepth {
			return
		}
		entries, err := afero.ReadDir(fs, dir)
		if err != nil {
			return
		}
		for _, entry := range entries {
			name := entry.Name()
			if !entry.IsDir() || strings.HasPrefix(name, ".") || skipDirs[name] {
				continue
			}
			walk(filepath.Join(dir, name), depth+1)
		}
	}
	walk(root, 0)
	sort.Strings(found)
	return found
}

// isLocaleRoot checks if dir has at least one language directory with
// compiled-catalog layout (lang/LC_MESSAGES/*.po).
func isLocaleRoot(fs afero.Fs, dir string) bool {
	return len(detectLanguages(fs, dir)) > 0
}

// detectLanguages lists the language directories of a locale root.
func detectLanguages(fs afero.Fs, dir string) []string {
	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		return nil
	}

	var langs []string
	for _, entry := range entries {
		if !entry.IsDir() || !isLangCode(entry.Name()) {
			continue
		}
		msgDir := filepath.Join(dir, entry.Name(), "LC_MESSAGES")
		subEntries, err := afero.ReadDir(fs, msgDir)
		if err != nil {
			continue
		}
		for _, sub := range subEntries {
			if !sub.IsDir() && strings.HasSuffix(sub.Name(), ".po") {
				langs = append(langs, entry.Name())
				break
			}
		}
	}
	sort.Strings(langs)
	return langs
}

// isLangCode checks if a directory name looks like a locale (en, ru, pt_BR,
// zh_Hans, sr_Latn, ...).
func isLangCode(s string) bool {
	base, _, _ := strings.Cut(s, "_")
	if len(base) < 2 || len(base) > 3 || strings.ToLower(base) != base {
		return false
	}
	_, err := language.Parse(strings.ReplaceAll(s, "_", "-"))
	return err == nil
}

// DetectLocalePathsOS runs DetectLocalePaths on the real filesystem and
// returns nil when root cannot be read.
func DetectLocalePathsOS(root string) []string {
	if _, err := os.Stat(root); err != nil {
		return nil
	}
	return DetectLocalePaths(afero.NewOsFs(), root)
}
