package provider

import (
	"context"
	"fmt"

	"cloud.google.com/go/translate"
	"github.com/bregydoc/gtranslate"
	"golang.org/x/text/language"
	"google.golang.org/api/option"

	"github.com/minios-linux/autopo/langcode"
)

// ---------------------------------------------------------------------------
// google: public web endpoint, no key
// ---------------------------------------------------------------------------

type googleWeb struct {
	tries int
}

func newGoogle(opts Options) *googleWeb {
	return &googleWeb{tries: opts.maxRetries() + 1}
}

func (g *googleWeb) Translate(ctx context.Context, text, source, target string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	out, err := gtranslate.TranslateWithParams(text, gtranslate.TranslationParams{
		From:  source,
		To:    target,
		Tries: g.tries,
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", Google, err)
	}
	return out, nil
}

func (g *googleWeb) SupportedLanguages(context.Context) (map[string]string, error) {
	return langcode.Table(googleCodes), nil
}

// ---------------------------------------------------------------------------
// google-cloud: Cloud Translation v2 with an API key
// ---------------------------------------------------------------------------

type googleCloud struct {
	client *translate.Client
	langs  *languageCache
}

func newGoogleCloud(ctx context.Context, creds Credentials, opts Options) (*googleCloud, error) {
	clientOpts := []option.ClientOption{option.WithAPIKey(creds.GoogleKey)}
	if opts.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(opts.BaseURL))
	}
	client, err := translate.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("%s: creating client: %w", GoogleCloud, err)
	}

	g := &googleCloud{client: client}
	g.langs = &languageCache{fetch: g.fetchLanguages}
	return g, nil
}

func (g *googleCloud) Translate(ctx context.Context, text, source, target string) (string, error) {
	targetTag, err := language.Parse(target)
	if err != nil {
		return "", fmt.Errorf("%s: target %q: %w", GoogleCloud, target, err)
	}
	sourceTag, err := language.Parse(source)
	if err != nil {
		return "", fmt.Errorf("%s: source %q: %w", GoogleCloud, source, err)
	}

	res, err := g.client.Translate(ctx, []string{text}, targetTag, &translate.Options{
		Source: sourceTag,
		Format: translate.Text,
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", GoogleCloud, err)
	}
	if len(res) == 0 {
		return "", fmt.Errorf("%s: empty response", GoogleCloud)
	}
	return res[0].Text, nil
}

func (g *googleCloud) SupportedLanguages(ctx context.Context) (map[string]string, error) {
	return g.langs.get(ctx)
}

func (g *googleCloud) fetchLanguages(ctx context.Context) (map[string]string, error) {
	langs, err := g.client.SupportedLanguages(ctx, language.English)
	if err != nil {
		return nil, fmt.Errorf("%s: listing languages: %w", GoogleCloud, err)
	}
	out := make(map[string]string, len(langs))
	for _, l := range langs {
		out[l.Name] = l.Tag.String()
	}
	return out, nil
}

// Close releases the underlying client.
func (g *googleCloud) Close() error {
	return g.client.Close()
}
