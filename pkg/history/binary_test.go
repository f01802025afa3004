package history

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/azybler/graphembed/pkg/vector"
)

func TestWriteReadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "history.bin")

	const n, d = 4, 3
	w, err := Create(path, n, d)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	snapshots := [][]vector.Vector{
		{{0, 0, 0}, {1, 1, 1}, {2, 2, 2}, {3, 3, 3}},
		{{0.1, 0, 0}, {1.1, 1, 1}, {2.1, 2, 2}, {3.1, 3, 3}},
	}
	for i, snap := range snapshots {
		if err := w.Append(uint64(i*10), snap); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	r, err := OpenReader(f)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	if r.N() != n || r.D() != d {
		t.Fatalf("N()=%d D()=%d, want %d,%d", r.N(), r.D(), n, d)
	}

	for i, want := range snapshots {
		iter, got, err := r.Next()
		if err != nil {
			t.Fatalf("Next(%d): %v", i, err)
		}
		if iter != uint64(i*10) {
			t.Errorf("iteration = %d, want %d", iter, i*10)
		}
		for v := range want {
			for c := range want[v] {
				if got[v][c] != want[v][c] {
					t.Errorf("snapshot %d node %d comp %d = %f, want %f", i, v, c, got[v][c], want[v][c])
				}
			}
		}
	}

	if _, _, err := r.Next(); !errors.Is(err, io.EOF) {
		t.Fatalf("expected io.EOF after last snapshot, got %v", err)
	}
}

func TestRequireDimensionRejectsMismatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "history.bin")

	w, err := Create(path, 2, 4)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	r, err := OpenReader(f)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	if err := r.RequireDimension(3); !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("RequireDimension(3) = %v, want ErrDimensionMismatch", err)
	}
	if err := r.RequireDimension(4); err != nil {
		t.Fatalf("RequireDimension(4) = %v, want nil", err)
	}
}

func TestAppendRejectsWrongNodeCount(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "history.bin")
	w, err := Create(path, 3, 2)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer w.Close()
	err = w.Append(0, []vector.Vector{{0, 0}})
	if err == nil {
		t.Fatalf("expected error for wrong node count")
	}
}
