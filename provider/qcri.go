package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/samber/lo"

	"github.com/minios-linux/autopo/langcode"
)

const qcriURL = "https://mt.qcri.org/api/v1"

type qcri struct {
	http    *resty.Client
	baseURL string
	key     string
	langs   *languageCache
}

func newQCRI(creds Credentials, opts Options) *qcri {
	q := &qcri{
		http:    newClient(QCRI, opts),
		baseURL: opts.baseURL(qcriURL),
		key:     creds.QCRIKey,
	}
	q.langs = &languageCache{fetch: q.fetchLanguages}
	return q
}

func (q *qcri) Translate(ctx context.Context, text, source, target string) (string, error) {
	var result struct {
		Success        bool   `json:"success"`
		TranslatedText string `json:"translatedText"`
		Error          string `json:"error"`
	}
	resp, err := q.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"key":      q.key,
			"langpair": source + "-" + target,
			"domain":   "general",
			"text":     text,
		}).
		SetResult(&result).
		Get(endpoint(q.baseURL, "translate"))
	if err := checkResponse(QCRI, resp, err); err != nil {
		return "", err
	}
	if !result.Success {
		return "", fmt.Errorf("%s: %s", QCRI, result.Error)
	}
	return result.TranslatedText, nil
}

func (q *qcri) SupportedLanguages(ctx context.Context) (map[string]string, error) {
	return q.langs.get(ctx)
}

// fetchLanguages derives the language set from the "src-tgt" pairs the
// service offers.
func (q *qcri) fetchLanguages(ctx context.Context) (map[string]string, error) {
	var result struct {
		Success bool     `json:"success"`
		Result  []string `json:"result"`
	}
	resp, err := q.http.R().
		SetContext(ctx).
		SetQueryParam("key", q.key).
		SetResult(&result).
		Get(endpoint(q.baseURL, "getLanguagePairs"))
	if err := checkResponse(QCRI, resp, err); err != nil {
		return nil, err
	}
	if !result.Success {
		return nil, fmt.Errorf("%s: listing language pairs failed", QCRI)
	}

	codes := lo.Uniq(lo.FlatMap(result.Result, func(pair string, _ int) []string {
		return strings.SplitN(pair, "-", 2)
	}))
	return langcode.Table(codes), nil
}
