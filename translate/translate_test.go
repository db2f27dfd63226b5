package translate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	po "github.com/minios-linux/autopo/pofile"
	"github.com/minios-linux/autopo/provider"
	"github.com/minios-linux/autopo/walker"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

type call struct {
	text, source, target string
}

// stubTranslator answers from a fixed table, or "<target>:<text>".
type stubTranslator struct {
	calls   []call
	answers map[string]string
	fail    map[string]bool
	langs   map[string]string
	langErr error
}

func newStub() *stubTranslator {
	return &stubTranslator{
		answers: map[string]string{},
		fail:    map[string]bool{},
		langs: map[string]string{
			"English": "en",
			"French":  "fr",
			"German":  "de",
			"Hebrew":  "iw",
		},
	}
}

func (s *stubTranslator) Translate(_ context.Context, text, source, target string) (string, error) {
	s.calls = append(s.calls, call{text, source, target})
	if s.fail[text] {
		return "", errors.New("connection reset by peer")
	}
	if out, ok := s.answers[text+"|"+source+"|"+target]; ok {
		return out, nil
	}
	return target + ":" + text, nil
}

func (s *stubTranslator) SupportedLanguages(context.Context) (map[string]string, error) {
	if s.langErr != nil {
		return nil, s.langErr
	}
	return s.langs, nil
}

const header = "msgid \"\"\nmsgstr \"\"\n\"Language: fr\\n\"\n"

func catalogFile(entries ...string) string {
	return header + "\n" + strings.Join(entries, "\n")
}

func setup(t *testing.T, lang, content string) (afero.Fs, walker.Job) {
	t.Helper()
	fs := afero.NewMemMapFs()
	path := fmt.Sprintf("/locale/%s/LC_MESSAGES/django.po", lang)
	if err := afero.WriteFile(fs, path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return fs, walker.Job{Root: "/locale", Path: path, Language: lang}
}

func newPatcher(fs afero.Fs, tr *stubTranslator) (*Patcher, *bytes.Buffer) {
	var buf bytes.Buffer
	l := logrus.New()
	l.SetOutput(&buf)
	l.SetFormatter(&logrus.TextFormatter{DisableColors: true, DisableTimestamp: true})
	return &Patcher{
		Translator: tr,
		Fs:         fs,
		Log:        l,
		Now:        func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) },
	}, &buf
}

func load(t *testing.T, fs afero.Fs, path string) *po.Catalog {
	t.Helper()
	cat, err := po.Load(fs, path)
	if err != nil {
		t.Fatalf("Load(%s): %v", path, err)
	}
	return cat
}

func readFile(t *testing.T, fs afero.Fs, path string) string {
	t.Helper()
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		t.Fatalf("ReadFile(%s): %v", path, err)
	}
	return string(data)
}

// ---------------------------------------------------------------------------
// Patcher
// ---------------------------------------------------------------------------

func TestPatchFileTranslatesAndMarksFuzzy(t *testing.T) {
	fs, job := setup(t, "fr", catalogFile("msgid \"Hello\"\nmsgstr \"\"\n"))
	tr := newStub()
	tr.answers["Hello|en|fr"] = "Bonjour"
	p, _ := newPatcher(fs, tr)

	res, err := p.PatchFile(context.Background(), job, Options{SetFuzzy: true})
	if err != nil {
		t.Fatalf("PatchFile error: %v", err)
	}
	if res.Translated != 1 || res.Failed != 0 || res.Saves != 2 {
		t.Fatalf("Result = %+v", res)
	}

	cat := load(t, fs, job.Path)
	e := cat.Messages()[0]
	if e.MsgStr != "Bonjour" {
		t.Fatalf("MsgStr = %q, want Bonjour", e.MsgStr)
	}
	if !e.IsFuzzy() {
		t.Fatalf("Flags = %v, want fuzzy", e.Flags)
	}
	if got := cat.HeaderField("PO-Revision-Date"); got != "2024-05-01 12:00+0000" {
		t.Fatalf("PO-Revision-Date = %q", got)
	}
}

func TestPatchFileWithoutFuzzy(t *testing.T) {
	fs, job := setup(t, "fr", catalogFile("msgid \"Hello\"\nmsgstr \"\"\n"))
	p, _ := newPatcher(fs, newStub())

	if _, err := p.PatchFile(context.Background(), job, Options{}); err != nil {
		t.Fatalf("PatchFile error: %v", err)
	}
	e := load(t, fs, job.Path).Messages()[0]
	if e.MsgStr != "fr:Hello" || e.IsFuzzy() {
		t.Fatalf("entry = %#v", e)
	}
}

func TestPluralEntryUsesTwoCalls(t *testing.T) {
	fs, job := setup(t, "fr", catalogFile(
		"msgid \"1 file\"\nmsgid_plural \"{n} files\"\nmsgstr[0] \"\"\nmsgstr[1] \"\"\n",
	))
	tr := newStub()
	p, _ := newPatcher(fs, tr)

	if _, err := p.PatchFile(context.Background(), job, Options{}); err != nil {
		t.Fatalf("PatchFile error: %v", err)
	}

	want := []call{{"1 file", "en", "fr"}, {"{n} files", "en", "fr"}}
	if len(tr.calls) != 2 || tr.calls[0] != want[0] || tr.calls[1] != want[1] {
		t.Fatalf("calls = %v, want %v", tr.calls, want)
	}
	e := load(t, fs, job.Path).Messages()[0]
	if e.PluralSlot(0) != "fr:1 file" || e.PluralSlot(1) != "fr:{n} files" {
		t.Fatalf("plural slots = %v", e.MsgStrPlural)
	}
}

func TestPartialPluralIsNeverTouched(t *testing.T) {
	for _, skip := range []bool{false, true} {
		fs, job := setup(t, "fr", catalogFile(
			"msgid \"1 file\"\nmsgid_plural \"{n} files\"\nmsgstr[0] \"un fichier\"\nmsgstr[1] \"\"\n",
		))
		tr := newStub()
		p, _ := newPatcher(fs, tr)

		res, err := p.PatchFile(context.Background(), job, Options{SkipTranslated: skip, SetFuzzy: true})
		if err != nil {
			t.Fatalf("skip=%v: PatchFile error: %v", skip, err)
		}
		if len(tr.calls) != 0 {
			t.Fatalf("skip=%v: provider called: %v", skip, tr.calls)
		}
		if res.Skipped != 1 {
			t.Fatalf("skip=%v: Skipped = %d, want 1", skip, res.Skipped)
		}
		e := load(t, fs, job.Path).Messages()[0]
		if e.PluralSlot(0) != "un fichier" || e.PluralSlot(1) != "" || e.IsFuzzy() {
			t.Fatalf("skip=%v: entry mutated: %#v", skip, e)
		}
	}
}

func TestHebrewUsesAliasedCode(t *testing.T) {
	for _, dir := range []string{"he", "he_IL"} {
		fs, job := setup(t, dir, catalogFile("msgid \"Hello\"\nmsgstr \"\"\n"))
		tr := newStub()
		p, _ := newPatcher(fs, tr)

		if _, err := p.PatchFile(context.Background(), job, Options{}); err != nil {
			t.Fatalf("%s: PatchFile error: %v", dir, err)
		}
		if len(tr.calls) != 1 || tr.calls[0].target != "iw" {
			t.Fatalf("%s: calls = %v, want target iw", dir, tr.calls)
		}
	}
}

func TestDirectoryCodeUsedWhenAliasUnsupported(t *testing.T) {
	fs, job := setup(t, "nb", catalogFile("msgid \"Hello\"\nmsgstr \"\"\n"))
	tr := newStub()
	tr.langs["Norwegian Bokmål"] = "nb"
	p, _ := newPatcher(fs, tr)

	if _, err := p.PatchFile(context.Background(), job, Options{}); err != nil {
		t.Fatalf("PatchFile error: %v", err)
	}
	if len(tr.calls) != 1 || tr.calls[0].target != "nb" {
		t.Fatalf("calls = %v, want target nb", tr.calls)
	}
}

func TestSymbolicSourceSkippedOnlyForOriginLanguage(t *testing.T) {
	content := catalogFile("msgid \"1234\"\nmsgstr \"\"\n", "msgid \"%(count)s / 10\"\nmsgstr \"\"\n")

	fs, job := setup(t, "fr", content)
	tr := newStub()
	p, _ := newPatcher(fs, tr)
	if _, err := p.PatchFile(context.Background(), job, Options{}); err != nil {
		t.Fatalf("PatchFile error: %v", err)
	}
	if len(tr.calls) != 1 || tr.calls[0].text != "%(count)s / 10" {
		t.Fatalf("en source: calls = %v, want only the entry with letters", tr.calls)
	}

	fs, job = setup(t, "fr", content)
	tr = newStub()
	p, _ = newPatcher(fs, tr)
	if _, err := p.PatchFile(context.Background(), job, Options{SourceLanguage: "de"}); err != nil {
		t.Fatalf("PatchFile error: %v", err)
	}
	if len(tr.calls) != 2 || tr.calls[0].source != "de" {
		t.Fatalf("de source: calls = %v, want both entries", tr.calls)
	}
}

func TestProviderFailureLeavesEntryEmptyAndSaves(t *testing.T) {
	fs, job := setup(t, "fr", catalogFile("msgid \"Hello\"\nmsgstr \"\"\n"))
	tr := newStub()
	tr.fail["Hello"] = true
	p, logs := newPatcher(fs, tr)

	res, err := p.PatchFile(context.Background(), job, Options{SetFuzzy: true})
	if err != nil {
		t.Fatalf("PatchFile error: %v", err)
	}
	if res.Failed != 1 || res.Translated != 0 || res.Saves != 1 {
		t.Fatalf("Result = %+v", res)
	}
	e := load(t, fs, job.Path).Messages()[0]
	if e.MsgStr != "" || e.IsFuzzy() {
		t.Fatalf("entry = %#v, want untouched", e)
	}
	if !strings.Contains(logs.String(), "translation failed") || !strings.Contains(logs.String(), "connection reset by peer") {
		t.Fatalf("error not logged:\n%s", logs.String())
	}
}

func TestPluralFailureWritesNeitherSlot(t *testing.T) {
	fs, job := setup(t, "fr", catalogFile(
		"msgid \"1 file\"\nmsgid_plural \"{n} files\"\nmsgstr[0] \"\"\nmsgstr[1] \"\"\n",
	))
	tr := newStub()
	tr.fail["{n} files"] = true
	p, _ := newPatcher(fs, tr)

	res, err := p.PatchFile(context.Background(), job, Options{})
	if err != nil {
		t.Fatalf("PatchFile error: %v", err)
	}
	if res.Failed != 1 {
		t.Fatalf("Failed = %d, want 1", res.Failed)
	}
	e := load(t, fs, job.Path).Messages()[0]
	if e.PluralSlot(0) != "" || e.PluralSlot(1) != "" {
		t.Fatalf("plural slots = %v, want both empty", e.MsgStrPlural)
	}
}

func TestSkipModeIsIdempotent(t *testing.T) {
	fs, job := setup(t, "fr", catalogFile(
		"msgid \"Save\"\nmsgstr \"Enregistrer\"\n",
		"msgid \"Hello\"\nmsgstr \"\"\n",
		"msgid \"1 file\"\nmsgid_plural \"{n} files\"\nmsgstr[0] \"\"\nmsgstr[1] \"\"\n",
	))
	tr := newStub()
	p, _ := newPatcher(fs, tr)
	opts := Options{SkipTranslated: true, SetFuzzy: true}

	if _, err := p.PatchFile(context.Background(), job, opts); err != nil {
		t.Fatalf("first PatchFile error: %v", err)
	}
	for _, c := range tr.calls {
		if c.text == "Save" {
			t.Fatalf("translated entry was sent to the provider: %v", tr.calls)
		}
	}
	if len(tr.calls) != 3 {
		t.Fatalf("first run made %d calls, want 3", len(tr.calls))
	}
	first := readFile(t, fs, job.Path)
	if !strings.Contains(first, "msgstr \"Enregistrer\"") {
		t.Fatalf("existing translation changed:\n%s", first)
	}

	tr.calls = nil
	p.Now = func() time.Time { return time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC) }
	res, err := p.PatchFile(context.Background(), job, opts)
	if err != nil {
		t.Fatalf("second PatchFile error: %v", err)
	}
	if len(tr.calls) != 0 || res.Translated != 0 {
		t.Fatalf("second run made calls: %v", tr.calls)
	}
	if second := readFile(t, fs, job.Path); second != first {
		t.Fatalf("second run changed the file:\n%s\n---\n%s", first, second)
	}
}

func TestNothingToDoLeavesFileUntouched(t *testing.T) {
	content := catalogFile(
		"#, fuzzy\n#| msgctxt \"menu\"\n#| msgid \"\"\n#| \"Old\\n\"\n#| \"greeting\"\nmsgid \"Hello\"\nmsgstr \"Salut\"\n",
		"msgid \"Save\"\nmsgstr \"Enregistrer\"\n",
	)
	fs, job := setup(t, "fr", content)
	tr := newStub()
	p, _ := newPatcher(fs, tr)

	res, err := p.PatchFile(context.Background(), job, Options{SkipTranslated: true})
	if err != nil {
		t.Fatalf("PatchFile error: %v", err)
	}
	if len(tr.calls) != 0 || res.Translated != 0 || res.Saves != 0 {
		t.Fatalf("Result = %+v, calls = %v", res, tr.calls)
	}
	if res.Skipped != 1 {
		t.Fatalf("Skipped = %d, want 1 (the fuzzy entry)", res.Skipped)
	}
	if got := readFile(t, fs, job.Path); got != content {
		t.Fatalf("file changed:\n%s\n---\n%s", content, got)
	}
}

func TestUnsupportedLanguageSkipsFile(t *testing.T) {
	content := catalogFile("msgid \"Hello\"\nmsgstr \"\"\n")
	fs, job := setup(t, "xx", content)
	tr := newStub()
	p, _ := newPatcher(fs, tr)

	res, err := p.PatchFile(context.Background(), job, Options{})
	if !errors.Is(err, ErrUnsupportedLanguage) {
		t.Fatalf("PatchFile error = %v, want ErrUnsupportedLanguage", err)
	}
	if res.Saves != 0 || len(tr.calls) != 0 {
		t.Fatalf("Result = %+v, calls = %v", res, tr.calls)
	}
	if got := readFile(t, fs, job.Path); got != content {
		t.Fatalf("file changed:\n%s", got)
	}

	tr.langErr = errors.New("dns failure")
	if _, err := p.PatchFile(context.Background(), job, Options{}); !errors.Is(err, ErrUnsupportedLanguage) {
		t.Fatalf("language list failure error = %v, want ErrUnsupportedLanguage", err)
	}
}

func TestDryRunCountsWithoutCalling(t *testing.T) {
	content := catalogFile(
		"msgid \"Save\"\nmsgstr \"Enregistrer\"\n",
		"msgid \"Hello\"\nmsgstr \"\"\n",
	)
	fs, job := setup(t, "fr", content)
	tr := newStub()
	p, _ := newPatcher(fs, tr)

	res, err := p.PatchFile(context.Background(), job, Options{DryRun: true})
	if err != nil {
		t.Fatalf("PatchFile error: %v", err)
	}
	if res.Pending != 1 || res.Skipped != 1 || res.Saves != 0 {
		t.Fatalf("Result = %+v", res)
	}
	if len(tr.calls) != 0 || readFile(t, fs, job.Path) != content {
		t.Fatal("dry run touched the provider or the file")
	}
}

func TestThrottleHonoursCancellation(t *testing.T) {
	fs, job := setup(t, "fr", catalogFile("msgid \"Hello\"\nmsgstr \"\"\n"))
	tr := newStub()
	p, _ := newPatcher(fs, tr)
	p.Translator = provider.Throttle(tr, time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := p.PatchFile(ctx, job, Options{})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("PatchFile error = %v, want DeadlineExceeded", err)
	}
	if len(tr.calls) != 0 {
		t.Fatalf("provider called during throttle: %v", tr.calls)
	}
}

// ---------------------------------------------------------------------------
// Run and Status
// ---------------------------------------------------------------------------

func TestRunContinuesPastSkippedFiles(t *testing.T) {
	fs := afero.NewMemMapFs()
	content := catalogFile("msgid \"Hello\"\nmsgstr \"\"\n")
	jobs := []walker.Job{
		{Root: "/locale", Path: "/locale/xx/LC_MESSAGES/django.po", Language: "xx"},
		{Root: "/locale", Path: "/locale/missing/LC_MESSAGES/django.po", Language: "de"},
		{Root: "/locale", Path: "/locale/fr/LC_MESSAGES/django.po", Language: "fr"},
	}
	afero.WriteFile(fs, jobs[0].Path, []byte(content), 0644)
	afero.WriteFile(fs, jobs[2].Path, []byte(content), 0644)

	tr := newStub()
	p, logs := newPatcher(fs, tr)
	sum, err := Run(context.Background(), p, jobs, Options{})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if sum.Files != 1 || sum.SkippedFiles != 1 || sum.FailedFiles != 1 || sum.Translated != 1 {
		t.Fatalf("Summary = %+v", sum)
	}
	for _, want := range []string{
		"filling up translations for locale `fr`",
		"skipping catalog",
		"catalog failed",
	} {
		if !strings.Contains(logs.String(), want) {
			t.Fatalf("log lacks %q:\n%s", want, logs.String())
		}
	}
}

func TestRunStopsWhenCancelled(t *testing.T) {
	fs, job := setup(t, "fr", catalogFile("msgid \"Hello\"\nmsgstr \"\"\n"))
	tr := newStub()
	p, _ := newPatcher(fs, tr)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Run(ctx, p, []walker.Job{job}, Options{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("Run error = %v, want Canceled", err)
	}
	if len(tr.calls) != 0 {
		t.Fatalf("provider called after cancel: %v", tr.calls)
	}
}

func TestStatus(t *testing.T) {
	fs, job := setup(t, "fr", catalogFile(
		"msgid \"Save\"\nmsgstr \"Enregistrer\"\n",
		"#, fuzzy\nmsgid \"Open\"\nmsgstr \"Ouvrir\"\n",
		"msgid \"Hello\"\nmsgstr \"\"\n",
		"msgid \"Bye\"\nmsgstr \"\"\n",
	))
	missing := walker.Job{Path: "/nope.po", Language: "de"}

	got := Status(fs, []walker.Job{job, missing})
	if len(got) != 2 {
		t.Fatalf("Status len = %d", len(got))
	}
	st := got[0]
	if st.Total != 4 || st.Translated != 1 || st.Fuzzy != 1 || st.Untranslated != 2 || st.Percent() != 25 {
		t.Fatalf("Status = %+v", st)
	}
	if got[1].Err == nil {
		t.Fatal("missing catalog should report an error")
	}
}
