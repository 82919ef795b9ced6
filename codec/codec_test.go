package codec

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	assert "github.com/stretchr/testify/require"
)

func TestObjectKeepsInsertionOrder(t *testing.T) {
	o := NewObject()
	o.SetString("c", "1")
	o.SetString("a", "2")
	o.SetString("b", "3")

	assert.Equal(t, []string{"c", "a", "b"}, o.Keys())

	// Overwriting keeps the original position.
	o.SetString("a", "4")
	assert.Equal(t, []string{"c", "a", "b"}, o.Keys())
	assert.Equal(t, 3, o.Len())

	a, err := o.String("a")
	assert.NoError(t, err)
	assert.Equal(t, "4", a)
}

func TestMarshalWritesTagFirst(t *testing.T) {
	o := NewObject()
	o.SetString(TagField, "file")
	o.SetString("name", "report.txt")
	o.SetUInt64("size", 42)

	data, err := json.Marshal(o)
	assert.NoError(t, err)
	assert.Equal(t, `{".tag":"file","name":"report.txt","size":42}`, string(data))
}

func TestJSONRoundTrip(t *testing.T) {
	ts := time.Date(2015, 5, 12, 15, 50, 38, 0, time.UTC)

	nested := NewObject()
	nested.SetString("id", "a1b2")

	o := NewObject()
	o.SetString("name", "metadata")
	o.SetBool("read_only", true)
	o.SetInt32("rank", -7)
	o.SetUInt64("size", 1<<40)
	o.SetFloat64("ratio", 0.25)
	o.SetTime("modified", ts)
	o.SetBytes("digest", []byte{0xde, 0xad, 0xbe, 0xef})
	o.SetObject("owner", nested)
	SetList(o, "tags", []string{"a", "b"})

	data, err := json.Marshal(o)
	assert.NoError(t, err)

	back := NewObject()
	assert.NoError(t, json.Unmarshal(data, back))
	assert.Equal(t, o.Keys(), back.Keys())

	name, err := back.String("name")
	assert.NoError(t, err)
	assert.Equal(t, "metadata", name)

	readOnly, err := back.Bool("read_only")
	assert.NoError(t, err)
	assert.True(t, readOnly)

	rank, err := back.Int32("rank")
	assert.NoError(t, err)
	assert.Equal(t, int32(-7), rank)

	size, err := back.UInt64("size")
	assert.NoError(t, err)
	assert.Equal(t, uint64(1<<40), size)

	ratio, err := back.Float64("ratio")
	assert.NoError(t, err)
	assert.Equal(t, 0.25, ratio)

	modified, err := back.Time("modified")
	assert.NoError(t, err)
	assert.True(t, modified.Equal(ts))

	digest, err := back.Bytes("digest")
	assert.NoError(t, err)
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, digest)

	owner, err := back.Object("owner")
	assert.NoError(t, err)
	id, err := owner.String("id")
	assert.NoError(t, err)
	assert.Equal(t, "a1b2", id)

	tags, err := ListOf(back, "tags", AsString)
	assert.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, tags)
}

func TestMissingField(t *testing.T) {
	o := NewObject()

	_, err := o.String("nope")
	assert.True(t, errors.Is(err, ErrMissingField))

	_, err = o.Tag()
	assert.True(t, errors.Is(err, ErrMissingField))

	assert.False(t, o.Has("nope"))
}

func TestObjectLists(t *testing.T) {
	a := NewObject()
	a.SetString("id", "1")
	b := NewObject()
	b.SetString("id", "2")

	o := NewObject()
	o.SetObjectList("members", []*Object{a, b})

	data, err := json.Marshal(o)
	assert.NoError(t, err)

	back := NewObject()
	assert.NoError(t, json.Unmarshal(data, back))

	members, err := back.ObjectList("members")
	assert.NoError(t, err)
	assert.Len(t, members, 2)

	id, err := members[1].String("id")
	assert.NoError(t, err)
	assert.Equal(t, "2", id)
}

func TestScalarListNormalization(t *testing.T) {
	ts := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)

	o := NewObject()
	SetList(o, "times", []time.Time{ts})
	SetList(o, "blobs", [][]byte{{0x01}})

	data, err := json.Marshal(o)
	assert.NoError(t, err)
	assert.Equal(t, `{"times":["2020-01-02T03:04:05Z"],"blobs":["AQ=="]}`, string(data))

	back := NewObject()
	assert.NoError(t, json.Unmarshal(data, back))

	times, err := ListOf(back, "times", AsTime)
	assert.NoError(t, err)
	assert.True(t, times[0].Equal(ts))

	blobs, err := ListOf(back, "blobs", AsBytes)
	assert.NoError(t, err)
	assert.Equal(t, [][]byte{{0x01}}, blobs)
}

func TestConverterRanges(t *testing.T) {
	_, err := AsInt32(int64(1 << 40))
	assert.ErrorContains(t, err, "overflows int32")

	_, err = AsUInt32(uint64(1 << 40))
	assert.ErrorContains(t, err, "overflows uint32")

	i, err := AsInt32(json.Number("-12"))
	assert.NoError(t, err)
	assert.Equal(t, int32(-12), i)

	u, err := AsUInt64(json.Number("18446744073709551615"))
	assert.NoError(t, err)
	assert.Equal(t, uint64(1<<64-1), u)

	_, err = AsString(42)
	assert.ErrorContains(t, err, "expected a string")
}

func TestInvalidStateSentinel(t *testing.T) {
	err := InvalidState("unrecognized tag %q", "bogus")
	assert.True(t, errors.Is(err, ErrInvalidState))
	assert.ErrorContains(t, err, `unrecognized tag "bogus"`)
}
