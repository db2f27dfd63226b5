package provider

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
)

type libre struct {
	http    *resty.Client
	baseURL string
	key     string
	langs   *languageCache
}

func newLibre(creds Credentials, opts Options) *libre {
	mirror := creds.LibreMirrorURL
	if mirror == "" {
		mirror = DefaultLibreMirror
	}
	l := &libre{
		http:    newClient(Libre, opts),
		baseURL: opts.baseURL(mirror),
		key:     creds.LibreKey,
	}
	l.langs = &languageCache{fetch: l.fetchLanguages}
	return l
}

func (l *libre) Translate(ctx context.Context, text, source, target string) (string, error) {
	body := map[string]string{
		"q":      text,
		"source": source,
		"target": target,
		"format": "text",
	}
	if l.key != "" {
		body["api_key"] = l.key
	}

	var result struct {
		TranslatedText string `json:"translatedText"`
		Error          string `json:"error"`
	}
	resp, err := l.http.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&result).
		Post(endpoint(l.baseURL, "translate"))
	if err := checkResponse(Libre, resp, err); err != nil {
		return "", err
	}
	if result.Error != "" {
		return "", fmt.Errorf("%s: %s", Libre, result.Error)
	}
	return result.TranslatedText, nil
}

func (l *libre) SupportedLanguages(ctx context.Context) (map[string]string, error) {
	return l.langs.get(ctx)
}

func (l *libre) fetchLanguages(ctx context.Context) (map[string]string, error) {
	var result []struct {
		Code string `json:"code"`
		Name string `json:"name"`
	}
	resp, err := l.http.R().
		SetContext(ctx).
		SetResult(&result).
		Get(endpoint(l.baseURL, "languages"))
	if err := checkResponse(Libre, resp, err); err != nil {
		return nil, err
	}
	out := make(map[string]string, len(result))
	for _, lang := range result {
		out[lang.Name] = lang.Code
	}
	return out, nil
}
