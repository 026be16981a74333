package scene

// Reconcile merges a locally edited element set with the last fetched
// remote set into one consistent scene.
//
// Winners are picked per id by (version, versionNonce), higher wins; an id
// present in only one input survives unconditionally and tombstones are
// winners like any other element. The tie-break makes the winner set
// independent of argument order, so concurrent savers converge on the same
// superset of elements.
//
// Ordering keeps the local sequence as the skeleton. Remote-only elements
// splice in immediately after their nearest preceding remote neighbor that
// also exists locally, preserving their remote relative order; remote-only
// elements with no such neighbor go to the end.
func Reconcile(local, remote []Element) ([]Element, error) {
	if err := Validate(local); err != nil {
		return nil, err
	}
	if err := Validate(remote); err != nil {
		return nil, err
	}

	winners := make(map[string]Element, len(local)+len(remote))
	for _, e := range local {
		winners[e.ID] = e
	}
	for _, e := range remote {
		if cur, ok := winners[e.ID]; !ok || e.newerThan(cur) {
			winners[e.ID] = e
		}
	}

	localIndex := make(map[string]int, len(local))
	for i, e := range local {
		localIndex[e.ID] = i
	}

	// Bucket remote-only elements by the local position they anchor to.
	spliced := make(map[int][]Element)
	var unanchored []Element
	anchor := -1
	for _, e := range remote {
		if i, ok := localIndex[e.ID]; ok {
			anchor = i
			continue
		}
		if anchor < 0 {
			unanchored = append(unanchored, e)
		} else {
			spliced[anchor] = append(spliced[anchor], e)
		}
	}

	merged := make([]Element, 0, len(winners))
	for i, e := range local {
		merged = append(merged, winners[e.ID])
		merged = append(merged, spliced[i]...)
	}
	merged = append(merged, unanchored...)

	return merged, nil
}
