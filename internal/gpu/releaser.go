package gpu

// Releaser releases acquired handles in reverse acquisition order.
//
// Every handle is pushed immediately after it is acquired, so a failure half way
// through initialization still releases exactly what was created.
type Releaser struct {
	entries []releaseEntry

	// Trace logs each release as it happens.
	Trace bool
}

type releaseEntry struct {
	name    string
	release func()
}

// Push registers release under name. A nil release is ignored.
func (r *Releaser) Push(name string, release func()) {
	if release == nil {
		return
	}
	r.entries = append(r.entries, releaseEntry{name: name, release: release})
}

// Len returns the number of handles still awaiting release.
func (r *Releaser) Len() int {
	return len(r.entries)
}

// Names returns the registered names in the order they will be released.
func (r *Releaser) Names() []string {
	names := make([]string, 0, len(r.entries))
	for i := len(r.entries) - 1; i >= 0; i-- {
		names = append(names, r.entries[i].name)
	}
	return names
}

// ReleaseAll runs every registered release, last pushed first. Calling it again
// is a no-op.
func (r *Releaser) ReleaseAll() {
	for len(r.entries) > 0 {
		last := len(r.entries) - 1
		entry := r.entries[last]
		r.entries = r.entries[:last]

		if r.Trace {
			logger.Printf("release %s", entry.name)
		}
		entry.release()
	}
}
