package table

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"

	"minirel/internal/pagefile"
	"minirel/internal/record"
)

var (
	ErrSchemaTooLarge = errors.New("table: serialized schema exceeds page size")
	ErrBadMetadata    = errors.New("table: malformed metadata page")
)

// tableMeta is the management block persisted on page 0.
type tableMeta struct {
	numTuples    int
	nextFreePage int // -1: no known page with free space
	schema       *record.Schema
}

// encodeMeta serializes the management block into dst (a full page buffer).
// The format is textual and newline delimited:
//
//	<numTuples> <nextFreePage>
//	<numAttr>
//	<typeCode> <typeLength> <attrName>   (per attribute)
//	<numKeys> <key...>                   (absent on tables written before
//	                                      keys were persisted)
func encodeMeta(dst []byte, m tableMeta) error {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%d %d\n", m.numTuples, m.nextFreePage)
	fmt.Fprintf(&buf, "%d\n", m.schema.NumAttrs())
	for _, a := range m.schema.Attrs {
		fmt.Fprintf(&buf, "%d %d %s\n", int(a.Type), a.Length, a.Name)
	}
	fmt.Fprintf(&buf, "%d", len(m.schema.Keys))
	for _, k := range m.schema.Keys {
		fmt.Fprintf(&buf, " %d", k)
	}
	buf.WriteByte('\n')

	if buf.Len() > pagefile.PageSize {
		return fmt.Errorf("metadata is %d bytes: %w", buf.Len(), ErrSchemaTooLarge)
	}

	for i := range dst {
		dst[i] = 0
	}
	copy(dst, buf.Bytes())
	return nil
}

// decodeMeta parses page 0 back into a management block.
func decodeMeta(src []byte) (tableMeta, error) {
	var m tableMeta

	text := src
	if n := bytes.IndexByte(text, 0); n >= 0 {
		text = text[:n]
	}
	sc := bufio.NewScanner(bytes.NewReader(text))

	line, err := nextLine(sc)
	if err != nil {
		return m, err
	}
	if _, err := fmt.Sscanf(line, "%d %d", &m.numTuples, &m.nextFreePage); err != nil {
		return m, fmt.Errorf("parse tuple counter line %q: %w", line, ErrBadMetadata)
	}

	line, err = nextLine(sc)
	if err != nil {
		return m, err
	}
	var numAttr int
	if _, err := fmt.Sscanf(line, "%d", &numAttr); err != nil || numAttr < 0 {
		return m, fmt.Errorf("parse attribute count %q: %w", line, ErrBadMetadata)
	}

	schema := &record.Schema{Attrs: make([]record.Attribute, numAttr)}
	for i := range numAttr {
		line, err = nextLine(sc)
		if err != nil {
			return m, err
		}
		var typeCode, typeLen int
		var name string
		if _, err := fmt.Sscanf(line, "%d %d %s", &typeCode, &typeLen, &name); err != nil {
			return m, fmt.Errorf("parse attribute %d %q: %w", i, line, ErrBadMetadata)
		}
		schema.Attrs[i] = record.Attribute{
			Name:   name,
			Type:   record.DataType(typeCode),
			Length: typeLen,
		}
	}

	// Key line is optional for compatibility with tables that predate it.
	if sc.Scan() {
		fields := bytes.Fields(sc.Bytes())
		if len(fields) > 0 {
			var numKeys int
			if _, err := fmt.Sscanf(string(fields[0]), "%d", &numKeys); err != nil || numKeys != len(fields)-1 {
				return m, fmt.Errorf("parse key line: %w", ErrBadMetadata)
			}
			schema.Keys = make([]int, numKeys)
			for i, f := range fields[1:] {
				if _, err := fmt.Sscanf(string(f), "%d", &schema.Keys[i]); err != nil {
					return m, fmt.Errorf("parse key index %q: %w", f, ErrBadMetadata)
				}
			}
		}
	}

	m.schema = schema
	return m, nil
}

func nextLine(sc *bufio.Scanner) (string, error) {
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return "", err
		}
		return "", fmt.Errorf("truncated metadata: %w", ErrBadMetadata)
	}
	return sc.Text(), nil
}
