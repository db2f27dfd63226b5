package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/minios-linux/autopo/langcode"
)

const (
	deeplFreeURL = "https://api-free.deepl.com/v2"
	deeplProURL  = "https://api.deepl.com/v2"
)

// deeplCodes are the DeepL languages. DeepL has no listing endpoint
// reachable with every key type, so the table is fixed.
var deeplCodes = []string{
	"ar", "bg", "cs", "da", "de", "el", "en", "es", "et", "fi", "fr", "hu",
	"id", "it", "ja", "ko", "lt", "lv", "nb", "nl", "pl", "pt", "ro", "ru",
	"sk", "sl", "sv", "tr", "uk", "zh",
}

type deepl struct {
	http    *resty.Client
	baseURL string
	key     string
}

func newDeepL(creds Credentials, opts Options) *deepl {
	base := deeplProURL
	if creds.DeepLFree() {
		base = deeplFreeURL
	}
	return &deepl{
		http:    newClient(DeepL, opts),
		baseURL: opts.baseURL(base),
		key:     creds.DeepLKey,
	}
}

func (d *deepl) Translate(ctx context.Context, text, source, target string) (string, error) {
	var result struct {
		Translations []struct {
			Text string `json:"text"`
		} `json:"translations"`
	}
	resp, err := d.http.R().
		SetContext(ctx).
		SetHeader("Authorization", "DeepL-Auth-Key "+d.key).
		SetFormData(map[string]string{
			"text":        text,
			"source_lang": strings.ToUpper(langcode.Base(source)),
			"target_lang": strings.ToUpper(target),
		}).
		SetResult(&result).
		Post(endpoint(d.baseURL, "translate"))
	if err := checkResponse(DeepL, resp, err); err != nil {
		return "", err
	}
	if len(result.Translations) == 0 {
		return "", fmt.Errorf("%s: empty response", DeepL)
	}
	return result.Translations[0].Text, nil
}

func (d *deepl) SupportedLanguages(context.Context) (map[string]string, error) {
	return langcode.Table(deeplCodes), nil
}
