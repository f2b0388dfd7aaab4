package record

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// testSchema is the three-column shape several tests here share:
// (id INT, name STRING[10], salary FLOAT).
func testSchema() *Schema {
	return &Schema{
		Attrs: []Attribute{
			{Name: "id", Type: TypeInt},
			{Name: "name", Type: TypeString, Length: 10},
			{Name: "salary", Type: TypeFloat},
		},
		Keys: []int{0},
	}
}

func TestSchema_RecordSizeAndOffsets(t *testing.T) {
	s := testSchema()

	require.Equal(t, 18, s.RecordSize())
	require.Equal(t, 0, s.Offset(0))
	require.Equal(t, 4, s.Offset(1))
	require.Equal(t, 14, s.Offset(2))
}

func TestSchema_BoolWidth(t *testing.T) {
	s := &Schema{Attrs: []Attribute{
		{Name: "a", Type: TypeInt},
		{Name: "b", Type: TypeBool},
		{Name: "c", Type: TypeBool},
	}}
	require.Equal(t, 6, s.RecordSize())
	require.Equal(t, 5, s.Offset(2))
}

func TestAttr_RoundTripAllTypes(t *testing.T) {
	s := &Schema{Attrs: []Attribute{
		{Name: "i", Type: TypeInt},
		{Name: "s", Type: TypeString, Length: 8},
		{Name: "f", Type: TypeFloat},
		{Name: "b", Type: TypeBool},
	}}
	r := New(s)

	require.NoError(t, r.SetAttr(s, 0, IntValue(-12345)))
	require.NoError(t, r.SetAttr(s, 1, StringValue("abc")))
	require.NoError(t, r.SetAttr(s, 2, FloatValue(3.25)))
	require.NoError(t, r.SetAttr(s, 3, BoolValue(true)))

	v, err := r.GetAttr(s, 0)
	require.NoError(t, err)
	require.Equal(t, int32(-12345), v.Int)

	v, err = r.GetAttr(s, 1)
	require.NoError(t, err)
	require.Equal(t, "abc", v.Str)

	v, err = r.GetAttr(s, 2)
	require.NoError(t, err)
	require.Equal(t, float32(3.25), v.Float)

	v, err = r.GetAttr(s, 3)
	require.NoError(t, err)
	require.True(t, v.Bool)
}

func TestSetAttr_StringZeroPadded(t *testing.T) {
	s := &Schema{Attrs: []Attribute{{Name: "s", Type: TypeString, Length: 6}}}
	r := New(s)
	for i := range r.Data {
		r.Data[i] = 0xff
	}

	require.NoError(t, r.SetAttr(s, 0, StringValue("hi")))
	require.Equal(t, []byte{'h', 'i', 0, 0, 0, 0}, r.Data)
}

func TestSetAttr_StringFillsWindow(t *testing.T) {
	s := &Schema{Attrs: []Attribute{{Name: "s", Type: TypeString, Length: 4}}}
	r := New(s)

	require.NoError(t, r.SetAttr(s, 0, StringValue("longervalue")))

	v, err := r.GetAttr(s, 0)
	require.NoError(t, err)
	require.Equal(t, "long", v.Str)
}

func TestSetAttr_TypeMismatch(t *testing.T) {
	s := testSchema()
	r := New(s)

	err := r.SetAttr(s, 0, FloatValue(1.0))
	require.ErrorIs(t, err, ErrTypeMismatch)
}

func TestAttr_IndexOutOfRange(t *testing.T) {
	s := testSchema()
	r := New(s)

	_, err := r.GetAttr(s, 3)
	require.ErrorIs(t, err, ErrBadAttrIndex)
	require.ErrorIs(t, r.SetAttr(s, -1, IntValue(0)), ErrBadAttrIndex)
}

func TestAttr_WrongBufferSize(t *testing.T) {
	s := testSchema()
	r := &Record{Data: make([]byte, 3)}

	_, err := r.GetAttr(s, 0)
	require.ErrorIs(t, err, ErrBadBuffer)
}

func TestValue_EqualAndLess(t *testing.T) {
	require.True(t, IntValue(5).Equal(IntValue(5)))
	require.False(t, IntValue(5).Equal(FloatValue(5)))

	less, err := FloatValue(1.5).Less(FloatValue(2.0))
	require.NoError(t, err)
	require.True(t, less)

	less, err = StringValue("abc").Less(StringValue("abd"))
	require.NoError(t, err)
	require.True(t, less)

	_, err = IntValue(1).Less(StringValue("x"))
	require.ErrorIs(t, err, ErrTypeMismatch)

	_, err = BoolValue(true).Less(BoolValue(false))
	require.ErrorIs(t, err, ErrTypeMismatch)
}

func TestRID_String(t *testing.T) {
	require.Equal(t, "(3,7)", RID{Page: 3, Slot: 7}.String())
}
