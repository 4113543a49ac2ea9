package records

// Caps on the autocomplete history lists. Names get a longer tail than
// cities because a household sees more distinct providers than
// municipalities in a tax year.
const (
	HistoryNameCap = 20
	HistoryCityCap = 10
)

// mergeHistory prepends value to list, removing any earlier occurrence
// and truncating to cap. Empty values are never recorded.
func mergeHistory(list []string, value string, cap int) []string {
	if value == "" {
		return list
	}
	merged := make([]string, 0, len(list)+1)
	merged = append(merged, value)
	for _, v := range list {
		if v != value {
			merged = append(merged, v)
		}
	}
	if len(merged) > cap {
		merged = merged[:cap]
	}
	return merged
}
