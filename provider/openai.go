package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/minios-linux/autopo/langcode"
)

const (
	openAIURL   = "https://api.openai.com/v1"
	openAIModel = "gpt-4o-mini"
)

// systemPrompt is sent with every request; {{source}} and {{target}} are
// replaced by English language names.
const systemPrompt = `You are a professional translator specializing in software localization. You are translating UI strings of a web application from {{source}} to {{target}}.

- Translate for naturalness and fluency, not word-for-word.
- Use established IT terminology in {{target}}.
- Preserve all format specifiers exactly as-is (%s, %d, %(name)s, {n}, etc.).
- Preserve leading/trailing whitespace, newlines and punctuation patterns.
- Keep brand names and proper nouns unchanged.
- Reply with the translated string ONLY, without quotes, explanations or markdown.`

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	Stream      bool          `json:"stream"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// openAI talks to any OpenAI-compatible chat completions endpoint
// (OpenAI, Groq, a local Ollama).
type openAI struct {
	http    *resty.Client
	baseURL string
	key     string
	model   string
}

func newOpenAI(creds Credentials, opts Options) *openAI {
	base := creds.OpenAIBaseURL
	if base == "" {
		base = openAIURL
	}
	model := creds.OpenAIModel
	if model == "" {
		model = openAIModel
	}
	return &openAI{
		http:    newClient(OpenAI, opts),
		baseURL: opts.baseURL(base),
		key:     creds.OpenAIKey,
		model:   model,
	}
}

func buildChatRequest(model, text, source, target string) chatRequest {
	prompt := strings.NewReplacer(
		"{{source}}", langcode.EnglishName(source),
		"{{target}}", langcode.EnglishName(target),
	).Replace(systemPrompt)
	return chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: prompt},
			{Role: "user", Content: text},
		},
		Temperature: 0.2,
		Stream:      false,
	}
}

func (o *openAI) Translate(ctx context.Context, text, source, target string) (string, error) {
	var result chatResponse
	r := o.http.R().
		SetContext(ctx).
		SetBody(buildChatRequest(o.model, text, source, target)).
		SetResult(&result).
		SetError(&result)
	if o.key != "" {
		r.SetAuthToken(o.key)
	}
	resp, err := r.Post(endpoint(o.baseURL, "chat/completions"))
	if result.Error != nil && result.Error.Message != "" {
		return "", fmt.Errorf("%s: API error: %s", OpenAI, result.Error.Message)
	}
	if err := checkResponse(OpenAI, resp, err); err != nil {
		return "", err
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("%s: no choices returned", OpenAI)
	}
	return strings.TrimSpace(result.Choices[0].Message.Content), nil
}

func (o *openAI) SupportedLanguages(context.Context) (map[string]string, error) {
	return langcode.Table(googleCodes), nil
}
