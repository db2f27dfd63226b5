package translate

import (
	"github.com/spf13/afero"

	po "github.com/minios-linux/autopo/pofile"
	"github.com/minios-linux/autopo/walker"
)

// FileStatus holds the statistics of one catalog.
type FileStatus struct {
	Job          walker.Job
	Total        int
	Translated   int
	Fuzzy        int
	Untranslated int
	// Err is set when the catalog could not be read.
	Err error
}

// Percent returns the translated share, 0-100.
func (s FileStatus) Percent() int {
	if s.Total == 0 {
		return 0
	}
	return s.Translated * 100 / s.Total
}

// Status reads every catalog and counts its entries by state.
func Status(fs afero.Fs, jobs []walker.Job) []FileStatus {
	out := make([]FileStatus, 0, len(jobs))
	for _, job := range jobs {
		st := FileStatus{Job: job}
		cat, err := po.Load(fs, job.Path)
		if err != nil {
			st.Err = err
		} else {
			st.Total, st.Translated, st.Fuzzy, st.Untranslated = cat.Stats()
		}
		out = append(out, st)
	}
	return out
}
