// Package match defines the record produced for every discovered target directory.
package match

import "time"

// Record is one discovered target directory.
type Record struct {
	// Path is the absolute path of the directory, unique within one scan.
	Path string `json:"path"`
	// SizeBytes is the total size of the tree. Nil means unknown.
	SizeBytes *uint64 `json:"size_bytes"`
	// ModifiedAt is the directory's modification time at discovery.
	ModifiedAt time.Time `json:"modified_at"`
}

// Size returns the resolved size and whether it is known.
func (r Record) Size() (uint64, bool) {
	if r.SizeBytes == nil {
		return 0, false
	}

	return *r.SizeBytes, true
}

// WithSize returns a copy of r carrying size n.
func (r Record) WithSize(n uint64) Record {
	r.SizeBytes = &n

	return r
}
