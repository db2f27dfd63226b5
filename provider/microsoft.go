package provider

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
)

const microsoftURL = "https://api.cognitive.microsofttranslator.com"

type microsoft struct {
	http    *resty.Client
	baseURL string
	key     string
	region  string
	langs   *languageCache
}

func newMicrosoft(creds Credentials, opts Options) *microsoft {
	m := &microsoft{
		http:    newClient(Microsoft, opts),
		baseURL: opts.baseURL(microsoftURL),
		key:     creds.MicrosoftKey,
		region:  creds.MicrosoftRegion,
	}
	m.langs = &languageCache{fetch: m.fetchLanguages}
	return m
}

func (m *microsoft) request(ctx context.Context) *resty.Request {
	r := m.http.R().
		SetContext(ctx).
		SetHeader("Ocp-Apim-Subscription-Key", m.key).
		SetQueryParam("api-version", "3.0")
	if m.region != "" {
		r.SetHeader("Ocp-Apim-Subscription-Region", m.region)
	}
	return r
}

func (m *microsoft) Translate(ctx context.Context, text, source, target string) (string, error) {
	var result []struct {
		Translations []struct {
			Text string `json:"text"`
		} `json:"translations"`
	}
	resp, err := m.request(ctx).
		SetQueryParams(map[string]string{"from": source, "to": target}).
		SetBody([]map[string]string{{"Text": text}}).
		SetResult(&result).
		Post(endpoint(m.baseURL, "translate"))
	if err := checkResponse(Microsoft, resp, err); err != nil {
		return "", err
	}
	if len(result) == 0 || len(result[0].Translations) == 0 {
		return "", fmt.Errorf("%s: empty response", Microsoft)
	}
	return result[0].Translations[0].Text, nil
}

func (m *microsoft) SupportedLanguages(ctx context.Context) (map[string]string, error) {
	return m.langs.get(ctx)
}

func (m *microsoft) fetchLanguages(ctx context.Context) (map[string]string, error) {
	var result struct {
		Translation map[string]struct {
			Name string `json:"name"`
		} `json:"translation"`
	}
	resp, err := m.request(ctx).
		SetQueryParam("scope", "translation").
		SetResult(&result).
		Get(endpoint(m.baseURL, "languages"))
	if err := checkResponse(Microsoft, resp, err); err != nil {
		return nil, err
	}
	out := make(map[string]string, len(result.Translation))
	for code, lang := range result.Translation {
		out[lang.Name] = code
	}
	return out, nil
}
