package match

import (
	"testing"
	"time"
)

func TestRecordSize(t *testing.T) {
	r := Record{Path: "/a/node_modules", ModifiedAt: time.Unix(0, 0)}

	if _, ok := r.Size(); ok {
		t.Fatal("fresh record should have unknown size")
	}

	sized := r.WithSize(2048)

	if n, ok := sized.Size(); !ok || n != 2048 {
		t.Errorf("Size() = %d, %v; want 2048, true", n, ok)
	}

	if _, ok := r.Size(); ok {
		t.Error("WithSize mutated the original record")
	}
}
