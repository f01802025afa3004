// Package gedge parses the edge-list text input format of §6: one edge
// per line, two whitespace-separated non-negative integers, zero-based.
// Ids are used as written: there is no remapping to dense ids, so an id
// that never appears in the file still counts toward the vertex count.
// No tags, no geometry, just pairs.
package gedge

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrSelfLoop is returned when a line names the same vertex twice.
var ErrSelfLoop = errors.New("gedge: self-loop rejected")

// ErrMalformedLine is returned for a line that isn't exactly two integers.
var ErrMalformedLine = errors.New("gedge: malformed line")

// ParseResult is the raw, zero-based edge list plus the inferred vertex
// count, ready for graphview.Build.
type ParseResult struct {
	Edges    [][2]uint32
	NumNodes int
}

// Parse reads the edge-list format from r. Vertex count is inferred as
// max(id)+1 across all endpoints seen; duplicate edges are tolerated
// (graphview.Build dedups them); self-loops are rejected outright.
func Parse(r io.Reader) (*ParseResult, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var edges [][2]uint32
	var maxID uint32
	seenAny := false
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, fmt.Errorf("gedge: line %d: %w", lineNo, ErrMalformedLine)
		}
		u, err := strconv.ParseUint(fields[0], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("gedge: line %d: %w: %v", lineNo, ErrMalformedLine, err)
		}
		v, err := strconv.ParseUint(fields[1], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("gedge: line %d: %w: %v", lineNo, ErrMalformedLine, err)
		}
		if u == v {
			return nil, fmt.Errorf("gedge: line %d: %w", lineNo, ErrSelfLoop)
		}

		edges = append(edges, [2]uint32{uint32(u), uint32(v)})
		if uint32(u) > maxID || !seenAny {
			maxID = uint32(u)
		}
		seenAny = true
		if uint32(v) > maxID {
			maxID = uint32(v)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("gedge: scan: %w", err)
	}

	numNodes := 0
	if seenAny {
		numNodes = int(maxID) + 1
	}

	return &ParseResult{Edges: edges, NumNodes: numNodes}, nil
}
