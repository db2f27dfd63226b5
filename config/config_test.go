package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/multierr"

	"github.com/minios-linux/autopo/provider"
	"github.com/minios-linux/autopo/settings"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoadDefaultsAndFile(t *testing.T) {
	t.Run("missing default file returns defaults", func(t *testing.T) {
		dir := t.TempDir()
		cfg, err := Load(dir, "")
		if err != nil {
			t.Fatalf("Load error: %v", err)
		}
		if !cfg.UseI18N || cfg.SourceLanguage != "en" || cfg.Provider != provider.Google || cfg.Throttle != "1" {
			t.Fatalf("Load defaults = %#v", cfg)
		}
		if cfg.Path != "" {
			t.Fatalf("Path = %q, want empty", cfg.Path)
		}
	})

	t.Run("missing explicit file is an error", func(t *testing.T) {
		dir := t.TempDir()
		if _, err := Load(dir, "nope.yaml"); err == nil {
			t.Fatal("expected error for missing explicit config")
		}
	})

	t.Run("reads keys and keeps unset defaults", func(t *testing.T) {
		dir := t.TempDir()
		path := writeConfig(t, dir, "use_i18n: false\n"+
			"locale_paths: [locale, app/locale]\n"+
			"provider: deepl\n"+
			"throttle: \"0.5\"\n"+
			"memory: .autopo/memory.db\n"+
			"credentials:\n"+
			"  deepl_key: file-key\n"+
			"  deepl_free_api: false\n")

		cfg, err := Load(dir, "")
		if err != nil {
			t.Fatalf("Load error: %v", err)
		}
		if cfg.Path != path {
			t.Fatalf("Path = %q, want %q", cfg.Path, path)
		}
		if cfg.UseI18N {
			t.Fatal("UseI18N = true, want false")
		}
		if cfg.SourceLanguage != "en" {
			t.Fatalf("SourceLanguage = %q, want en", cfg.SourceLanguage)
		}
		if cfg.Provider != provider.DeepL || cfg.Credentials.DeepLKey != "file-key" {
			t.Fatalf("provider/credentials = %q/%q", cfg.Provider, cfg.Credentials.DeepLKey)
		}
		if cfg.Credentials.DeepLFree() {
			t.Fatal("DeepLFree() = true, want false")
		}
		wantPaths := []string{filepath.Join(dir, "locale"), filepath.Join(dir, "app", "locale")}
		if got := cfg.ResolvedLocalePaths(); !reflect.DeepEqual(got, wantPaths) {
			t.Fatalf("ResolvedLocalePaths() = %v, want %v", got, wantPaths)
		}
		if got, want := cfg.MemoryPath(), filepath.Join(dir, ".autopo", "memory.db"); got != want {
			t.Fatalf("MemoryPath() = %q, want %q", got, want)
		}
	})

	t.Run("invalid yaml", func(t *testing.T) {
		dir := t.TempDir()
		writeConfig(t, dir, "locale_paths: [unclosed\n")
		if _, err := Load(dir, ""); err == nil {
			t.Fatal("expected parse error")
		}
	})
}

func TestCredentialPrecedence(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	t.Setenv("DEEPL_TRANSLATE_KEY", "env-key")
	t.Setenv("DEEPL_FREE_API", "false")

	dir := t.TempDir()
	writeConfig(t, dir, "provider: deepl\n"+
		"credentials:\n"+
		"  deepl_key: file-key\n"+
		"  microsoft_region: westeurope\n")

	cfg, err := Load(dir, "")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if err := cfg.ApplyEnv(); err != nil {
		t.Fatalf("ApplyEnv error: %v", err)
	}
	if cfg.Credentials.DeepLKey != "env-key" {
		t.Fatalf("DeepLKey after env = %q, want env-key", cfg.Credentials.DeepLKey)
	}
	if cfg.Credentials.DeepLFree() {
		t.Fatal("DEEPL_FREE_API=false was not applied")
	}
	if cfg.Credentials.MicrosoftRegion != "westeurope" {
		t.Fatalf("MicrosoftRegion = %q, want file value", cfg.Credentials.MicrosoftRegion)
	}

	cfg.FillFromStore(settings.Store{
		"deepl":  {Type: settings.TypeAPI, Key: "store-key"},
		"papago": {Type: settings.TypeClient, Key: "client-id", Secret: "client-secret"},
	})
	if cfg.Credentials.DeepLKey != "env-key" {
		t.Fatalf("store overrode env: %q", cfg.Credentials.DeepLKey)
	}
	if cfg.Credentials.PapagoClientID != "client-id" || cfg.Credentials.PapagoSecret != "client-secret" {
		t.Fatalf("papago from store = %q/%q", cfg.Credentials.PapagoClientID, cfg.Credentials.PapagoSecret)
	}

	other := Default(dir)
	other.FillFromStore(settings.Store{
		"papago": {Type: settings.TypeAPI, Key: "client-id", Secret: "stray"},
	})
	if other.Credentials.PapagoSecret != "" {
		t.Fatalf("secret taken from an api entry: %q", other.Credentials.PapagoSecret)
	}

	cfg.ApplyAPIKey(provider.DeepL, "flag-key")
	if cfg.Credentials.DeepLKey != "flag-key" {
		t.Fatalf("DeepLKey after flag = %q, want flag-key", cfg.Credentials.DeepLKey)
	}
	cfg.ApplyAPIKey(provider.DeepL, "")
	if cfg.Credentials.DeepLKey != "flag-key" {
		t.Fatal("empty --api-key must not clear the key")
	}
}

func TestValidate(t *testing.T) {
	t.Run("unknown provider", func(t *testing.T) {
		cfg := Default(".")
		cfg.Provider = "pons"
		err := cfg.Validate()
		if !errors.Is(err, provider.ErrUnknownProvider) {
			t.Fatalf("Validate() = %v, want ErrUnknownProvider", err)
		}
	})

	t.Run("missing credentials are collected", func(t *testing.T) {
		cfg := Default(".")
		cfg.Provider = provider.Papago
		cfg.SourceLanguage = " "
		err := cfg.Validate()
		if err == nil {
			t.Fatal("expected validation error")
		}
		if n := len(multierr.Errors(err)); n != 3 {
			t.Fatalf("len(errors) = %d, want 3: %v", n, err)
		}
		var missing *provider.MissingCredentialError
		if !errors.As(err, &missing) {
			t.Fatalf("Validate() = %v, want MissingCredentialError", err)
		}
	})

	t.Run("default google needs nothing", func(t *testing.T) {
		if err := Default(".").Validate(); err != nil {
			t.Fatalf("Validate() = %v, want nil", err)
		}
	})
}

func TestParseThrottle(t *testing.T) {
	cases := []struct {
		in   string
		want time.Duration
		ok   bool
	}{
		{"1", time.Second, true},
		{"0", 0, true},
		{"0.25", 250 * time.Millisecond, true},
		{"", time.Second, true},
		{"fast", time.Second, false},
		{"-2", time.Second, false},
		{"NaN", time.Second, false},
	}
	for _, tc := range cases {
		got, ok := ParseThrottle(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("ParseThrottle(%q) = (%v, %v), want (%v, %v)", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestDetectLocalePaths(t *testing.T) {
	fs := afero.NewMemMapFs()
	files := []string{
		"/proj/locale/ru/LC_MESSAGES/django.po",
		"/proj/app/locale/pt_BR/LC_MESSAGES/django.po",
		"/proj/node_modules/pkg/locale/de/LC_MESSAGES/x.po",
		"/proj/docs/README.md",
		"/proj/other/notalang/LC_MESSAGES/x.po",
	}
	for _, f := range files {
		if err := afero.WriteFile(fs, f, []byte(""), 0644); err != nil {
			t.Fatalf("WriteFile %s: %v", f, err)
		}
	}

	got := DetectLocalePaths(fs, "/proj")
	want := []string{filepath.Join("app", "locale"), "locale"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("DetectLocalePaths() = %v, want %v", got, want)
	}

	if langs := detectLanguages(fs, "/proj/app/locale"); !reflect.DeepEqual(langs, []string{"pt_BR"}) {
		t.Fatalf("detectLanguages() = %v, want [pt_BR]", langs)
	}
}

func TestIsLangCode(t *testing.T) {
	for _, s := range []string{"en", "ru", "pt_BR", "zh_Hans", "sr_Latn"} {
		if !isLangCode(s) {
			t.Fatalf("isLangCode(%q) = false, want true", s)
		}
	}
	for _, s := range []string{"LC_MESSAGES", "x", "locale", "Templates"} {
		if isLangCode(s) {
			t.Fatalf("isLangCode(%q) = true, want false", s)
		}
	}
}
