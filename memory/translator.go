package memory

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/minios-linux/autopo/provider"
)

// Translator answers from the Store and falls back to the wrapped
// provider, recording what it returns.
type Translator struct {
	next     provider.Translator
	store    *Store
	provider string
	log      logrus.FieldLogger

	hits   int
	misses int
}

// Wrap decorates next with the translation memory. providerID keys the
// cache so that different services never share entries. A nil log
// discards messages.
//
// Put the memory outside any rate limiting (provider.Throttle) so that
// hits are answered without waiting.
func Wrap(next provider.Translator, store *Store, providerID string, log logrus.FieldLogger) *Translator {
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		log = l
	}
	return &Translator{
		next:     next,
		store:    store,
		provider: providerID,
		log:      log,
	}
}

// Translate implements provider.Translator.
func (t *Translator) Translate(ctx context.Context, text, source, target string) (string, error) {
	key := Key{SourceText: text, SrcLang: source, TgtLang: target, Provider: t.provider}

	cached, err := t.store.Get(ctx, key)
	if err != nil {
		t.log.WithError(err).Warn("translation memory lookup failed")
	} else if cached != nil {
		t.hits++
		t.log.WithField("msgid", text).Debug("translation memory hit")
		return cached.Translation, nil
	}

	t.misses++
	out, err := t.next.Translate(ctx, text, source, target)
	if err != nil {
		return "", err
	}
	if out != "" {
		if err := t.store.Put(ctx, key, out); err != nil {
			t.log.WithError(err).Warn("translation memory write failed")
		}
	}
	return out, nil
}

// SupportedLanguages implements provider.Translator.
func (t *Translator) SupportedLanguages(ctx context.Context) (map[string]string, error) {
	return t.next.SupportedLanguages(ctx)
}

// Hits returns how many translations were answered from the memory.
func (t *Translator) Hits() int { return t.hits }

// Misses returns how many translations went to the provider.
func (t *Translator) Misses() int { return t.misses }

// Stored returns the number of translations the memory holds for any
// provider.
func (t *Translator) Stored(ctx context.Context) (int, error) {
	return t.store.Count(ctx)
}
