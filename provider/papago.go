package provider

import (
	"context"

	"github.com/go-resty/resty/v2"

	"github.com/minios-linux/autopo/langcode"
)

const papagoURL = "https://openapi.naver.com/v1/papago"

var papagoCodes = []string{
	"ko", "en", "ja", "zh-CN", "zh-TW", "vi", "id", "th", "de", "ru", "es", "it", "fr",
}

type papago struct {
	http     *resty.Client
	baseURL  string
	clientID string
	secret   string
}

func newPapago(creds Credentials, opts Options) *papago {
	return &papago{
		http:     newClient(Papago, opts),
		baseURL:  opts.baseURL(papagoURL),
		clientID: creds.PapagoClientID,
		secret:   creds.PapagoSecret,
	}
}

func (p *papago) Translate(ctx context.Context, text, source, target string) (string, error) {
	var result struct {
		Message struct {
			Result struct {
				TranslatedText string `json:"translatedText"`
			} `json:"result"`
		} `json:"message"`
	}
	resp, err := p.http.R().
		SetContext(ctx).
		SetHeader("X-Naver-Client-Id", p.clientID).
		SetHeader("X-Naver-Client-Secret", p.secret).
		SetFormData(map[string]string{
			"source": source,
			"target": target,
			"text":   text,
		}).
		SetResult(&result).
		Post(endpoint(p.baseURL, "n2mt"))
	if err := checkResponse(Papago, resp, err); err != nil {
		return "", err
	}
	return result.Message.Result.TranslatedText, nil
}

func (p *papago) SupportedLanguages(context.Context) (map[string]string, error) {
	return langcode.Table(papagoCodes), nil
}
