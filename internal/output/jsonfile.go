package output

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/gofrs/flock"
)

// WriteJSONFile writes the report to path, holding a file lock for the
// duration of the write so parallel invocations pointed at the same results
// file cannot interleave.
func WriteJSONFile(path string, result Result) error {
	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock results file: %w", err)
	}
	defer func() { _ = lock.Unlock() }()

	payload, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	payload = append(payload, '\n')
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return fmt.Errorf("write results file: %w", err)
	}
	return nil
}
