package prediction

import (
	"encoding/json"
	"fmt"
	"sort"

	"lukechampine.com/blake3"
)

// fingerprintInput mirrors Signals but pulls the cardinality of the
// import list out as an explicit field. Two signal bundles that differ
// only in which imports are present, but agree on count, would
// otherwise risk colliding on a naive content hash if imports were
// truncated upstream before reaching the cache; making the count
// explicit keeps the fingerprint sensitive to it regardless.
type fingerprintInput struct {
	ActiveFile    string   `json:"active_file"`
	ImportCount   int      `json:"import_count"`
	Imports       []string `json:"imports"`
	Symbols       []string `json:"symbols"`
	Directory     string   `json:"directory"`
	RecentQueries []string `json:"recent_queries"`
	RecentIntents []string `json:"recent_intents"`
	BranchName    string   `json:"branch_name"`
	ModifiedFiles []string `json:"modified_files"`
	TimeBucket    string   `json:"time_bucket"`
	HourOfDay     int      `json:"hour_of_day"`
}

// Fingerprint returns a stable BLAKE3 hex digest identifying a signal
// bundle for cache lookup purposes.
func Fingerprint(s Signals) string {
	imports := append([]string(nil), s.File.Imports...)
	sort.Strings(imports)
	symbols := append([]string(nil), s.File.Symbols...)
	sort.Strings(symbols)
	queries := append([]string(nil), s.Behavioral.RecentQueries...)
	sort.Strings(queries)
	intents := append([]string(nil), s.Behavioral.RecentIntents...)
	sort.Strings(intents)
	modified := append([]string(nil), s.Git.ModifiedFiles...)
	sort.Strings(modified)

	input := fingerprintInput{
		ImportCount:   len(s.File.Imports),
		Imports:       imports,
		Symbols:       symbols,
		RecentQueries: queries,
		RecentIntents: intents,
		ModifiedFiles: modified,
		TimeBucket:    s.Temporal.TimeBucket,
		HourOfDay:     s.Temporal.HourOfDay,
	}
	if s.File.ActiveFile != nil {
		input.ActiveFile = *s.File.ActiveFile
	}
	if s.File.Directory != nil {
		input.Directory = *s.File.Directory
	}
	if s.Git.BranchName != nil {
		input.BranchName = *s.Git.BranchName
	}

	raw, err := json.Marshal(input)
	if err != nil {
		// Marshaling a struct of strings and string slices cannot fail;
		// panicking here would indicate a bug in this file, not bad input.
		panic(fmt.Sprintf("prediction: fingerprint marshal: %v", err))
	}
	sum := blake3.Sum256(raw)
	return fmt.Sprintf("%x", sum[:])
}
