package provider

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
)

const yandexURL = "https://translate.yandex.net/api/v1.5/tr.json"

type yandex struct {
	http    *resty.Client
	baseURL string
	key     string
	langs   *languageCache
}

func newYandex(creds Credentials, opts Options) *yandex {
	y := &yandex{
		http:    newClient(Yandex, opts),
		baseURL: opts.baseURL(yandexURL),
		key:     creds.YandexKey,
	}
	y.langs = &languageCache{fetch: y.fetchLanguages}
	return y
}

func (y *yandex) Translate(ctx context.Context, text, source, target string) (string, error) {
	var result struct {
		Code    int      `json:"code"`
		Message string   `json:"message"`
		Text    []string `json:"text"`
	}
	resp, err := y.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"key":  y.key,
			"text": text,
			"lang": source + "-" + target,
		}).
		SetResult(&result).
		SetError(&result).
		Post(endpoint(y.baseURL, "translate"))
	if err := checkResponse(Yandex, resp, err); err != nil {
		return "", err
	}
	if result.Code != 0 && result.Code != 200 {
		return "", fmt.Errorf("%s: code %d: %s", Yandex, result.Code, result.Message)
	}
	if len(result.Text) == 0 {
		return "", fmt.Errorf("%s: empty response", Yandex)
	}
	return result.Text[0], nil
}

func (y *yandex) SupportedLanguages(ctx context.Context) (map[string]string, error) {
	return y.langs.get(ctx)
}

func (y *yandex) fetchLanguages(ctx context.Context) (map[string]string, error) {
	var result struct {
		Langs map[string]string `json:"langs"`
	}
	resp, err := y.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{"key": y.key, "ui": "en"}).
		SetResult(&result).
		Post(endpoint(y.baseURL, "getLangs"))
	if err := checkResponse(Yandex, resp, err); err != nil {
		return nil, err
	}
	out := make(map[string]string, len(result.Langs))
	for code, name := range result.Langs {
		out[name] = code
	}
	return out, nil
}
