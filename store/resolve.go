package store

// findIndex returns the position of the first record whose identifier text is
// exactly id. Records without a numeric or textual id never match.
func findIndex(recs []Record, id string) (int, bool) {
	for i, rec := range recs {
		rid := rec.ID()
		if rid.Kind() == KindNone {
			continue
		}
		if rid.String() == id {
			return i, true
		}
	}
	return -1, false
}
