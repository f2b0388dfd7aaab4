package table

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"minirel/internal/pagefile"
	"minirel/internal/record"
)

func TestMeta_EncodeDecodeRoundTrip(t *testing.T) {
	schema := &record.Schema{
		Attrs: []record.Attribute{
			{Name: "id", Type: record.TypeInt},
			{Name: "name", Type: record.TypeString, Length: 10},
			{Name: "salary", Type: record.TypeFloat},
			{Name: "active", Type: record.TypeBool},
		},
		Keys: []int{0, 2},
	}
	in := tableMeta{numTuples: 17, nextFreePage: 3, schema: schema}

	buf := make([]byte, pagefile.PageSize)
	require.NoError(t, encodeMeta(buf, in))

	out, err := decodeMeta(buf)
	require.NoError(t, err)
	require.Equal(t, 17, out.numTuples)
	require.Equal(t, 3, out.nextFreePage)
	require.Equal(t, schema.Attrs, out.schema.Attrs)
	require.Equal(t, []int{0, 2}, out.schema.Keys)
}

func TestMeta_EncodeFormat(t *testing.T) {
	schema := &record.Schema{
		Attrs: []record.Attribute{
			{Name: "a", Type: record.TypeInt},
			{Name: "b", Type: record.TypeString, Length: 4},
		},
		Keys: []int{0},
	}
	buf := make([]byte, pagefile.PageSize)
	require.NoError(t, encodeMeta(buf, tableMeta{numTuples: 2, nextFreePage: -1, schema: schema}))

	text := string(buf[:strings.Index(string(buf), "\x00")])
	require.Equal(t, "2 -1\n2\n0 0 a\n1 4 b\n1 0\n", text)
}

func TestMeta_DecodeWithoutKeyLine(t *testing.T) {
	// Tables written before keys were persisted end after the attributes.
	buf := make([]byte, pagefile.PageSize)
	copy(buf, "5 -1\n1\n0 0 a\n")

	m, err := decodeMeta(buf)
	require.NoError(t, err)
	require.Equal(t, 5, m.numTuples)
	require.Equal(t, -1, m.nextFreePage)
	require.Len(t, m.schema.Attrs, 1)
	require.Empty(t, m.schema.Keys)
}

func TestMeta_EncodeTooLarge(t *testing.T) {
	schema := &record.Schema{}
	for range 300 {
		schema.Attrs = append(schema.Attrs, record.Attribute{
			Name: strings.Repeat("x", 40),
			Type: record.TypeInt,
		})
	}

	buf := make([]byte, pagefile.PageSize)
	err := encodeMeta(buf, tableMeta{schema: schema})
	require.ErrorIs(t, err, ErrSchemaTooLarge)
}

func TestMeta_DecodeMalformed(t *testing.T) {
	cases := []string{
		"",
		"1\n",
		"1 -1\nbogus\n",
		"1 -1\n2\n0 0 a\n",
	}
	for _, c := range cases {
		buf := make([]byte, pagefile.PageSize)
		copy(buf, c)
		_, err := decodeMeta(buf)
		require.ErrorIs(t, err, ErrBadMetadata, "input %q", c)
	}
}

func TestPageCapacity(t *testing.T) {
	// (4096 - 4) / (R + 1)
	require.Equal(t, 818, pageCapacity(4))
	require.Equal(t, 3, pageCapacity(1023))
	require.Equal(t, 0, pageCapacity(pagefile.PageSize))
}
