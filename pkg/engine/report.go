package engine

import (
	"os"

	"github.com/platinummonkey/protosign/pkg/breaking"
)

// Report is the diagnostics document a breaking run produces. Its JSON
// shape is stable: { "changes": [ ... ] }.
type Report struct {
	Changes []breaking.Change `json:"changes"`
}

// HasChanges reports whether any rule fired.
func (r *Report) HasChanges() bool {
	return len(r.Changes) > 0
}

// Result is the outcome of a verdict comparison.
type Result struct {
	Verdict             Verdict           `json:"verdict"`
	PreviousFingerprint string            `json:"previous_fingerprint"`
	CurrentFingerprint  string            `json:"current_fingerprint"`
	Changes             []breaking.Change `json:"changes,omitempty"`
}

// ReadSource loads a source from disk. Read failures surface as
// IO-stage engine errors so convenience callers keep the same error
// taxonomy as string-based ones.
func ReadSource(path string) (Source, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Source{}, &Error{Stage: StageIO, Path: path, Err: err}
	}
	return Source{Path: path, Content: string(content)}, nil
}
