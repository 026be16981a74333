package scene

// Version derives the scene version from the full element set: the sum of
// per-element versions. Every edit bumps the touched element's version, so
// any change to any element moves the scene version. Used by the sync layer
// to skip saves of scenes already known to be persisted.
func Version(elements []Element) int64 {
	var v int64
	for _, e := range elements {
		v += e.Version
	}
	return v
}
