package ingest

// IsNew reports whether a candidate media path is absent from the set of
// paths already present in the destination table. The set is built once per
// ingestion run so the check is a map lookup.
func IsNew(candidate_path string, existing map[string]bool) bool {
	return !existing[candidate_path]
}
