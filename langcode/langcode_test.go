package langcode

import "testing"

func TestCanonical(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{in: "pt_br", want: "pt-BR"},
		{in: " EN-us ", want: "en-US"},
		{in: "zh_hans", want: "zh-Hans"},
		{in: "sr_latn_RS", want: "sr-Latn-RS"},
		{in: "ru", want: "ru"},
		{in: "", want: ""},
	}

	for _, tc := range cases {
		if got := Canonical(tc.in); got != tc.want {
			t.Fatalf("Canonical(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestAlias(t *testing.T) {
	cases := map[string]string{
		"zh_Hans": "zh-CN",
		"zh-hans": "zh-CN",
		"zh_CN":   "zh-CN",
		"zh-cn":   "zh-CN",
		"zh":      "zh-CN",
		"zh_Hant": "zh-TW",
		"zh-hant": "zh-TW",
		"zh_TW":   "zh-TW",
		"zh-tw":   "zh-TW",
		"he":      "iw",
		"nb":      "no",
		"he_IL":   "iw-IL",
		"he-il":   "iw-IL",
		"nb_NO":   "no-NO",
		"fr":      "fr",
		"pt_BR":   "pt_BR",
		"zh_HK":   "zh_HK",
	}
	for in, want := range cases {
		if got := Alias(in); got != want {
			t.Fatalf("Alias(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestResolve(t *testing.T) {
	supported := map[string]string{
		"English":               "en",
		"French":                "fr",
		"Hebrew":                "iw",
		"Portuguese":            "pt",
		"Chinese (Simplified)":  "zh-CN",
		"Chinese (Traditional)": "zh-TW",
	}

	t.Run("exact match", func(t *testing.T) {
		name, code, ok := Resolve("fr", supported)
		if !ok || name != "French" || code != "fr" {
			t.Fatalf("Resolve(fr) = %q, %q, %v", name, code, ok)
		}
	})

	t.Run("spelling insensitive", func(t *testing.T) {
		_, code, ok := Resolve("zh_tw", supported)
		if !ok || code != "zh-TW" {
			t.Fatalf("Resolve(zh_tw) = %q, %v", code, ok)
		}
	})

	t.Run("base fallback", func(t *testing.T) {
		_, code, ok := Resolve("pt_BR", supported)
		if !ok || code != "pt" {
			t.Fatalf("Resolve(pt_BR) = %q, %v, want pt", code, ok)
		}
	})

	t.Run("unsupported", func(t *testing.T) {
		if _, _, ok := Resolve("xx", supported); ok {
			t.Fatal("Resolve(xx) should fail")
		}
		if _, _, ok := Resolve("", supported); ok {
			t.Fatal("Resolve(\"\") should fail")
		}
	})
}

func TestNames(t *testing.T) {
	if got := EnglishName("fr"); got != "French" {
		t.Fatalf("EnglishName(fr) = %q, want French", got)
	}
	if got := NativeName("de"); got != "Deutsch" {
		t.Fatalf("NativeName(de) = %q, want Deutsch", got)
	}
	if got := EnglishName(""); got != "" {
		t.Fatalf("EnglishName(\"\") = %q, want empty", got)
	}
}

func TestTable(t *testing.T) {
	table := Table([]string{"en", "fr", "de"})
	if len(table) != 3 {
		t.Fatalf("Table len = %d, want 3", len(table))
	}
	if table["French"] != "fr" || table["German"] != "de" {
		t.Fatalf("Table = %v", table)
	}
}
