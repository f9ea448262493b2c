package matching

// Entry is one (key, status) pair fed to BuildIndex, in source row order.
type Entry struct {
	Key    string
	Status string
}

// Index answers membership and status lookups for one source, keyed by
// normalized identifier.
type Index struct {
	statuses  map[string]string
	hasStatus bool
}

// BuildIndex indexes entries by normalized key. When several entries share a
// key, the first one seen keeps its status. If hasStatus is false the index
// still answers Contains but LookupStatus always reports absent.
func BuildIndex(entries []Entry, hasStatus bool) *Index {
	idx := &Index{
		statuses:  make(map[string]string, len(entries)),
		hasStatus: hasStatus,
	}
	for _, e := range entries {
		key := NormalizeKey(e.Key)
		if _, seen := idx.statuses[key]; seen {
			continue
		}
		idx.statuses[key] = e.Status
	}
	return idx
}

// Contains reports whether any entry normalized to key.
func (i *Index) Contains(key string) bool {
	_, ok := i.statuses[key]
	return ok
}

// LookupStatus returns the first-seen status for key. Blank statuses count
// as absent.
func (i *Index) LookupStatus(key string) (string, bool) {
	if !i.hasStatus {
		return "", false
	}
	status, ok := i.statuses[key]
	if !ok || isBlank(status) {
		return "", false
	}
	return status, true
}

// HasStatus reports whether the indexed source carried a status column.
func (i *Index) HasStatus() bool {
	return i.hasStatus
}

// Len returns the number of distinct normalized keys.
func (i *Index) Len() int {
	return len(i.statuses)
}
