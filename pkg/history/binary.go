// Package history implements the binary position-history format of
// §6: a little-endian header (N, D as uint64) followed by any number
// of snapshots (an iteration number plus N·D row-major float32
// positions), EOF-terminated. It adapts the teacher's
// pkg/graph/binary.go technique — atomic temp-file-then-rename writes,
// and rows streamed through a buffered writer in place of a single
// in-memory buffer —
// but drops the teacher's CRC32 trailer and magic/version header,
// which have no counterpart in §6's wire format, and writes with
// encoding/binary instead of the teacher's unsafe.Slice zero-copy
// helpers (this format's per-snapshot writes are not the hot path
// binary.go was optimized for).
package history

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/azybler/graphembed/pkg/vector"
)

// ErrDimensionMismatch is returned when a reader's expected D does not
// match the file header's D.
var ErrDimensionMismatch = errors.New("history: dimension mismatch")

const headerSize = 16 // two little-endian uint64s

// Writer streams position snapshots to a binary history file. The file
// is built under a temp name in the same directory as path and atomically
// renamed into place on Close, so a crash mid-run never leaves a
// half-written file at the final path.
type Writer struct {
	n, d int

	tmp       *os.File
	bw        *bufio.Writer
	tmpPath   string
	finalPath string
	scratch   []byte
}

// Create opens a new history file for n nodes of dimension d.
func Create(path string, n, d int) (*Writer, error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".history-*.tmp")
	if err != nil {
		return nil, fmt.Errorf("history: create temp file: %w", err)
	}

	bw := bufio.NewWriterSize(tmp, 1<<20)
	var header [headerSize]byte
	binary.LittleEndian.PutUint64(header[0:8], uint64(n))
	binary.LittleEndian.PutUint64(header[8:16], uint64(d))
	if _, err := bw.Write(header[:]); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("history: write header: %w", err)
	}

	return &Writer{
		n: n, d: d,
		tmp: tmp, bw: bw,
		tmpPath:   tmp.Name(),
		finalPath: path,
		scratch:   make([]byte, 4*d),
	}, nil
}

// Append writes one snapshot: the iteration number followed by
// positions, row-major by NodeId. len(positions) must equal n, and each
// position must have dimension d.
func (w *Writer) Append(iteration uint64, positions []vector.Vector) error {
	if len(positions) != w.n {
		return fmt.Errorf("history: Append: got %d positions, want %d", len(positions), w.n)
	}

	var iterBuf [8]byte
	binary.LittleEndian.PutUint64(iterBuf[:], iteration)
	if _, err := w.bw.Write(iterBuf[:]); err != nil {
		return fmt.Errorf("history: write iteration: %w", err)
	}

	for _, p := range positions {
		if len(p) != w.d {
			return fmt.Errorf("history: Append: position has dimension %d, want %d", len(p), w.d)
		}
		for i, c := range p {
			binary.LittleEndian.PutUint32(w.scratch[4*i:4*i+4], math.Float32bits(c))
		}
		if _, err := w.bw.Write(w.scratch); err != nil {
			return fmt.Errorf("history: write snapshot row: %w", err)
		}
	}
	return nil
}

// Close flushes buffered output and atomically renames the temp file
// into place at the configured path.
func (w *Writer) Close() error {
	if err := w.bw.Flush(); err != nil {
		w.tmp.Close()
		os.Remove(w.tmpPath)
		return fmt.Errorf("history: flush: %w", err)
	}
	if err := w.tmp.Close(); err != nil {
		os.Remove(w.tmpPath)
		return fmt.Errorf("history: close temp file: %w", err)
	}
	if err := os.Rename(w.tmpPath, w.finalPath); err != nil {
		os.Remove(w.tmpPath)
		return fmt.Errorf("history: rename into place: %w", err)
	}
	return nil
}

// Reader streams snapshots back out of a binary history file.
type Reader struct {
	br     *bufio.Reader
	n, d   int
	scratch []byte
}

// OpenReader reads the header from r and returns a Reader positioned at
// the first snapshot.
func OpenReader(r io.Reader) (*Reader, error) {
	br := bufio.NewReaderSize(r, 1<<20)
	var header [headerSize]byte
	if _, err := io.ReadFull(br, header[:]); err != nil {
		return nil, fmt.Errorf("history: read header: %w", err)
	}
	n := int(binary.LittleEndian.Uint64(header[0:8]))
	d := int(binary.LittleEndian.Uint64(header[8:16]))
	return &Reader{br: br, n: n, d: d, scratch: make([]byte, 4*d)}, nil
}

// N returns the node count recorded in the header.
func (r *Reader) N() int { return r.n }

// D returns the embedding dimension recorded in the header.
func (r *Reader) D() int { return r.d }

// RequireDimension errors with ErrDimensionMismatch if the header's D
// does not match want.
func (r *Reader) RequireDimension(want int) error {
	if r.d != want {
		return fmt.Errorf("history: file has D=%d, want %d: %w", r.d, want, ErrDimensionMismatch)
	}
	return nil
}

// Next reads the next snapshot, returning io.EOF (unwrapped, so
// errors.Is(err, io.EOF) holds) once the stream is exhausted cleanly.
func (r *Reader) Next() (iteration uint64, positions []vector.Vector, err error) {
	var iterBuf [8]byte
	if _, err := io.ReadFull(r.br, iterBuf[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return 0, nil, io.EOF
		}
		return 0, nil, fmt.Errorf("history: read iteration: %w", err)
	}
	iteration = binary.LittleEndian.Uint64(iterBuf[:])

	positions = make([]vector.Vector, r.n)
	for i := 0; i < r.n; i++ {
		if _, err := io.ReadFull(r.br, r.scratch); err != nil {
			return 0, nil, fmt.Errorf("history: read snapshot row %d: %w", i, err)
		}
		p := make(vector.Vector, r.d)
		for c := 0; c < r.d; c++ {
			p[c] = math.Float32frombits(binary.LittleEndian.Uint32(r.scratch[4*c : 4*c+4]))
		}
		positions[i] = p
	}
	return iteration, positions, nil
}
