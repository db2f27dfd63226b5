package translate

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/minios-linux/autopo/walker"
)

// Summary aggregates a whole run.
type Summary struct {
	Result
	// Files is the number of catalogs processed.
	Files int
	// SkippedFiles were not touched because of an unsupported language.
	SkippedFiles int
	// FailedFiles could not be loaded or saved.
	FailedFiles int
}

// Run patches every job in order. Unsupported languages and load/save
// failures are logged and the run moves on; only cancellation stops it.
func Run(ctx context.Context, p *Patcher, jobs []walker.Job, opts Options) (Summary, error) {
	var sum Summary
	log := p.log()

	for _, job := range jobs {
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		jl := log.WithFields(logrus.Fields{"locale": job.Language, "file": job.Path})
		jl.Infof("filling up translations for locale `%s`", job.Language)

		res, err := p.PatchFile(ctx, job, opts)
		sum.add(res)

		switch {
		case err == nil:
			sum.Files++
		case errors.Is(err, ErrUnsupportedLanguage):
			jl.WithError(err).Warn("skipping catalog")
			sum.SkippedFiles++
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			sum.Files++
			return sum, err
		default:
			jl.WithError(err).Error("catalog failed")
			sum.FailedFiles++
		}
	}
	return sum, nil
}
