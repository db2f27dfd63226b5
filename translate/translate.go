// Package translate fills in missing translations of gettext catalogs
// using a machine-translation provider.
//
// A Patcher brings one catalog up to date for one target language; Run
// drives a Patcher over every job the walker found. Entries are processed
// strictly in catalog order and the catalog is saved after every entry
// that changed, so an interrupted run keeps everything finished so far.
package translate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
	"unicode"

	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/minios-linux/autopo/langcode"
	po "github.com/minios-linux/autopo/pofile"
	"github.com/minios-linux/autopo/provider"
	"github.com/minios-linux/autopo/walker"
)

// OriginLanguage is the language source strings are written in unless the
// caller says otherwise.
const OriginLanguage = "en"

// ErrUnsupportedLanguage is wrapped by PatchFile when the provider does not
// support the source or target language. The file is skipped.
var ErrUnsupportedLanguage = errors.New("unsupported language")

// ---------------------------------------------------------------------------
// Options and results
// ---------------------------------------------------------------------------

// Options controls one patching run.
type Options struct {
	// SourceLanguage is the language of msgid (default "en").
	SourceLanguage string
	// SkipTranslated only selects entries that are not yet translated.
	SkipTranslated bool
	// SetFuzzy marks every machine translation as fuzzy.
	SetFuzzy bool
	// Silent suppresses the progress bar.
	Silent bool
	// Progress receives the progress bar; nil disables it.
	Progress io.Writer
	// DryRun counts the work without calling the provider or saving.
	DryRun bool
}

func (o *Options) sourceLanguage() string {
	if o.SourceLanguage != "" {
		return o.SourceLanguage
	}
	return OriginLanguage
}

// Result counts what happened to one catalog.
type Result struct {
	// Translated entries got a machine translation.
	Translated int
	// Failed entries hit a provider error and were left empty.
	Failed int
	// Skipped entries were selected but already had content (including
	// partially filled plural entries).
	Skipped int
	// Saves is the number of times the catalog was written.
	Saves int
	// Pending is the number of entries a dry run would send.
	Pending int
}

func (r *Result) add(other Result) {
	r.Translated += other.Translated
	r.Failed += other.Failed
	r.Skipped += other.Skipped
	r.Saves += other.Saves
	r.Pending += other.Pending
}

// ---------------------------------------------------------------------------
// Patcher
// ---------------------------------------------------------------------------

// Patcher translates catalogs with one provider.
type Patcher struct {
	Translator provider.Translator
	Fs         afero.Fs
	Log        logrus.FieldLogger
	// Now stamps PO-Revision-Date (default time.Now).
	Now func() time.Time
}

func (p *Patcher) log() logrus.FieldLogger {
	if p.Log != nil {
		return p.Log
	}
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

func (p *Patcher) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

// PatchFile loads job.Path, patches it and saves it back.
func (p *Patcher) PatchFile(ctx context.Context, job walker.Job, opts Options) (Result, error) {
	cat, err := po.Load(p.Fs, job.Path)
	if err != nil {
		return Result{}, fmt.Errorf("loading %s: %w", job.Path, err)
	}
	return p.Patch(ctx, cat, job, opts)
}

// Patch fills the catalog's missing translations for job.Language.
func (p *Patcher) Patch(ctx context.Context, cat *po.Catalog, job walker.Job, opts Options) (Result, error) {
	log := p.log().WithFields(logrus.Fields{"file": job.Path, "locale": job.Language})
	entries := collectEntries(cat, opts)

	if opts.DryRun {
		res := Result{}
		for _, e := range entries {
			if needsWork(e) {
				res.Pending++
			} else {
				res.Skipped++
			}
		}
		return res, nil
	}

	source, target, err := p.resolveLanguages(ctx, opts.sourceLanguage(), job.Language)
	if err != nil {
		return Result{}, err
	}
	log.WithFields(logrus.Fields{"source": source, "target": target, "entries": len(entries)}).Debug("patching catalog")

	bar := newProgressBar(opts, job, len(entries))
	var res Result
	var loopErr error
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			loopErr = err
			break
		}

		changed, err := p.patchEntry(ctx, e, source, target, opts, &res)
		if bar != nil {
			bar.Add(1)
		}
		if err != nil {
			if ctx.Err() != nil {
				loopErr = ctx.Err()
				break
			}
			log.WithError(err).WithField("msgid", e.MsgID).Error("translation failed")
		}
		if changed {
			if err := p.save(cat, job.Path, &res); err != nil {
				return res, err
			}
		}
	}
	if bar != nil {
		bar.Finish()
		fmt.Fprintln(opts.Progress)
	}

	// A catalog nothing was sent for is left as it is on disk.
	if res.Translated+res.Failed > 0 {
		if err := p.save(cat, job.Path, &res); err != nil {
			return res, err
		}
	}
	if loopErr != nil {
		return res, loopErr
	}

	total, translated, _, _ := cat.Stats()
	log.WithFields(logrus.Fields{"translated": res.Translated, "failed": res.Failed}).
		Infof("saved %s (%d/%d translated)", job.Path, translated, total)
	return res, nil
}

// resolveLanguages maps the source and target codes to the provider's
// spelling. The alias table is applied first; when the provider does not
// know the aliased code the directory code itself is tried.
func (p *Patcher) resolveLanguages(ctx context.Context, source, target string) (string, string, error) {
	supported, err := p.Translator.SupportedLanguages(ctx)
	if err != nil {
		return "", "", fmt.Errorf("%w: cannot list provider languages: %v", ErrUnsupportedLanguage, err)
	}

	resolve := func(code string) (string, bool) {
		aliased := langcode.Alias(code)
		if _, c, ok := langcode.Resolve(aliased, supported); ok {
			return c, true
		}
		if aliased != code {
			if _, c, ok := langcode.Resolve(code, supported); ok {
				return c, true
			}
		}
		return "", false
	}

	src, ok := resolve(source)
	if !ok {
		return "", "", fmt.Errorf("%w: source language %q", ErrUnsupportedLanguage, source)
	}
	tgt, ok := resolve(target)
	if !ok {
		return "", "", fmt.Errorf("%w: target language %q", ErrUnsupportedLanguage, target)
	}
	return src, tgt, nil
}

// patchEntry translates one entry. It reports whether the entry changed.
// A partially filled plural entry is left alone, and so is a singular
// entry that already has a translation.
func (p *Patcher) patchEntry(ctx context.Context, e *po.Entry, source, target string, opts Options, res *Result) (bool, error) {
	if !needsWork(e) {
		res.Skipped++
		return false, nil
	}

	if e.IsPlural() {
		one, err := p.call(ctx, e.MsgID, source, target)
		if err != nil {
			res.Failed++
			return false, err
		}
		many, err := p.call(ctx, e.MsgIDPlural, source, target)
		if err != nil {
			res.Failed++
			return false, err
		}
		e.SetPluralSlot(0, one)
		e.SetPluralSlot(1, many)
	} else {
		out, err := p.call(ctx, e.MsgID, source, target)
		if err != nil {
			res.Failed++
			return false, err
		}
		e.MsgStr = out
	}

	if opts.SetFuzzy {
		e.AddFlag(po.FlagFuzzy)
	}
	res.Translated++
	return true, nil
}

// call asks the provider for one string. Rate limiting is the
// translator's business (see provider.Throttle).
func (p *Patcher) call(ctx context.Context, text, source, target string) (string, error) {
	out, err := p.Translator.Translate(ctx, text, source, target)
	if err != nil {
		return "", err
	}
	if out == "" {
		return "", errors.New("provider returned an empty translation")
	}
	return out, nil
}

// save stamps the revision date when something was translated and writes
// the catalog.
func (p *Patcher) save(cat *po.Catalog, path string, res *Result) error {
	if res.Translated > 0 {
		cat.SetHeaderField("PO-Revision-Date", p.now().UTC().Format("2006-01-02 15:04+0000"))
	}
	if err := cat.Save(p.Fs, path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	res.Saves++
	return nil
}

// ---------------------------------------------------------------------------
// Entry selection
// ---------------------------------------------------------------------------

// collectEntries returns the live entries that qualify for translation in
// catalog order.
func collectEntries(cat *po.Catalog, opts Options) []*po.Entry {
	checkLetters := langcode.Equal(opts.sourceLanguage(), OriginLanguage)

	var out []*po.Entry
	for _, e := range cat.Messages() {
		if opts.SkipTranslated && e.IsTranslated() {
			continue
		}
		if checkLetters && !hasLetter(e.MsgID) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// needsWork reports whether every translation slot of e is empty.
func needsWork(e *po.Entry) bool {
	if e.IsPlural() {
		return e.PluralSlot(0) == "" && e.PluralSlot(1) == ""
	}
	return e.MsgStr == ""
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// Progress
// ---------------------------------------------------------------------------

func newProgressBar(opts Options, job walker.Job, total int) *progressbar.ProgressBar {
	if opts.Silent || opts.Progress == nil || total == 0 {
		return nil
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(opts.Progress),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription(fmt.Sprintf("[cyan]%s[reset] %s", job.Language, job.Path)),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}
