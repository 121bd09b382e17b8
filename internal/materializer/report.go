package materializer

import (
	"sync"

	"github.com/jakoblorz/go-treegen/internal/models"
)

// Entry is one filesystem entry created by a run
type Entry struct {
	// Path is the full path of the entry
	Path string `json:"path"`

	// Kind is "file" or "directory"
	Kind string `json:"kind"`

	// Size is the number of content bytes written (files only)
	Size int64 `json:"size"`
}

// Report describes what a run created, in creation order. It is filled in
// even when the run fails part way.
type Report struct {
	Root        string  `json:"root"`
	Entries     []Entry `json:"entries"`
	Files       int     `json:"files"`
	Directories int     `json:"directories"`
	Bytes       int64   `json:"bytes"`

	mu sync.Mutex
}

func (r *Report) add(e Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.Entries) == 0 {
		r.Root = e.Path
	}
	r.Entries = append(r.Entries, e)
	if e.Kind == models.KindDirectory {
		r.Directories++
	} else {
		r.Files++
		r.Bytes += e.Size
	}
}
