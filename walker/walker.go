// Package walker discovers gettext catalogs below a project's locale
// directories (<root>/<lang>/LC_MESSAGES/<domain>.po).
package walker

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// Ext is the catalog file extension.
const Ext = ".po"

var (
	// ErrI18NDisabled means the project has translation turned off.
	ErrI18NDisabled = errors.New("internationalization is disabled (use_i18n: false)")
	// ErrNoLocalePaths means no locale directory is configured.
	ErrNoLocalePaths = errors.New("no locale paths configured")
)

// Config is the part of the project configuration the walker needs.
type Config struct {
	UseI18N     bool
	LocalePaths []string
	Fs          afero.Fs
	Log         logrus.FieldLogger
}

// Job is one catalog to process.
type Job struct {
	Root     string
	Path     string
	Language string
}

// Walker enumerates catalogs.
type Walker struct {
	roots []string
	fs    afero.Fs
	log   logrus.FieldLogger
}

// New validates cfg. Both errors it returns are configuration errors.
func New(cfg Config) (*Walker, error) {
	if !cfg.UseI18N {
		return nil, ErrI18NDisabled
	}
	roots := lo.Compact(cfg.LocalePaths)
	if len(roots) == 0 {
		return nil, ErrNoLocalePaths
	}

	fs := cfg.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	log := cfg.Log
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		log = l
	}
	return &Walker{roots: roots, fs: fs, log: log}, nil
}

// Jobs walks every root and returns the catalogs found, in root order and
// lexical order within a root. When allow is non-empty, catalogs for other
// languages are skipped. A root that does not exist is reported and skipped.
func (w *Walker) Jobs(allow []string) ([]Job, error) {
	var jobs []Job
	for _, root := range w.roots {
		info, err := w.fs.Stat(root)
		if err != nil {
			if os.IsNotExist(err) {
				w.log.WithField("root", root).Warn("locale path does not exist")
				continue
			}
			return nil, fmt.Errorf("stat %s: %w", root, err)
		}
		if !info.IsDir() {
			w.log.WithField("root", root).Warn("locale path is not a directory")
			continue
		}

		err = afero.Walk(w.fs, root, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() || !strings.HasSuffix(info.Name(), Ext) {
				return nil
			}

			lang := LanguageOf(path)
			if len(allow) > 0 && !lo.Contains(allow, lang) {
				w.log.WithField("locale", lang).Infof("skipping translation for locale `%s`", lang)
				return nil
			}
			jobs = append(jobs, Job{Root: root, Path: path, Language: lang})
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", root, err)
		}
	}
	return jobs, nil
}

// LanguageOf derives the target language from a catalog path: the name of
// the directory two levels above the file.
func LanguageOf(path string) string {
	return filepath.Base(filepath.Dir(filepath.Dir(path)))
}
