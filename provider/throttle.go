package provider

import (
	"context"
	"time"
)

// throttled pauses before every call it forwards to the wrapped service.
type throttled struct {
	next  Translator
	pause time.Duration
}

// Throttle returns a Translator that waits pause before each Translate
// call reaches next. Language listings are not delayed. A pause of zero
// or less returns next unchanged.
//
// Wrap only the remote service: anything answered before the call gets
// here (a translation memory, say) should not pay for the pause.
func Throttle(next Translator, pause time.Duration) Translator {
	if pause <= 0 {
		return next
	}
	return &throttled{next: next, pause: pause}
}

func (t *throttled) Translate(ctx context.Context, text, source, target string) (string, error) {
	timer := time.NewTimer(t.pause)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-timer.C:
	}
	return t.next.Translate(ctx, text, source, target)
}

func (t *throttled) SupportedLanguages(ctx context.Context) (map[string]string, error) {
	return t.next.SupportedLanguages(ctx)
}
