package court

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// CheckResultPath is where the check result for date is written.
func CheckResultPath(dir, date string) string {
	return filepath.Join(dir, fmt.Sprintf("case_check_result_%s.json", date))
}

// DownloadSummaryPath is where the download summary for date is written.
func DownloadSummaryPath(dir, date string) string {
	return filepath.Join(dir, fmt.Sprintf("causelist_download_summary_%s.json", date))
}

// WriteJSON writes v to path as indented JSON, replacing any existing file.
func WriteJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	return f.Close()
}
