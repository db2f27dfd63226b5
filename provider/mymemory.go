package provider

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"

	"github.com/minios-linux/autopo/langcode"
)

const myMemoryURL = "https://api.mymemory.translated.net"

type myMemory struct {
	http    *resty.Client
	baseURL string
	email   string
}

func newMyMemory(creds Credentials, opts Options) *myMemory {
	return &myMemory{
		http:    newClient(MyMemory, opts),
		baseURL: opts.baseURL(myMemoryURL),
		email:   creds.MyMemoryEmail,
	}
}

func (m *myMemory) Translate(ctx context.Context, text, source, target string) (string, error) {
	params := map[string]string{
		"q":        text,
		"langpair": source + "|" + target,
	}
	if m.email != "" {
		params["de"] = m.email
	}

	var result struct {
		ResponseData struct {
			TranslatedText string `json:"translatedText"`
		} `json:"responseData"`
		// Sent as a number on success and as a string on some errors.
		ResponseStatus  any    `json:"responseStatus"`
		ResponseDetails string `json:"responseDetails"`
	}
	resp, err := m.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetResult(&result).
		Get(endpoint(m.baseURL, "get"))
	if err := checkResponse(MyMemory, resp, err); err != nil {
		return "", err
	}
	if status := fmt.Sprint(result.ResponseStatus); status != "200" {
		return "", fmt.Errorf("%s: status %s: %s", MyMemory, status, result.ResponseDetails)
	}
	return result.ResponseData.TranslatedText, nil
}

func (m *myMemory) SupportedLanguages(context.Context) (map[string]string, error) {
	return langcode.Table(googleCodes), nil
}
