package seed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sevalka/internal/dsl"
	"sevalka/internal/reference"
)

func field(name, typ string, opts map[string]string) dsl.Field {
	if opts == nil {
		opts = map[string]string{}
	}
	return dsl.Field{Name: name, Type: typ, Options: opts}
}

func TestValueTextDeterministic(t *testing.T) {
	syn := NewSynthesizer(nil)
	f := field("title", "string", map[string]string{"required": "true"})

	first, ok := syn.Value(f)
	require.True(t, ok)
	for i := 0; i < 5; i++ {
		v, ok := syn.Value(f)
		require.True(t, ok)
		assert.Equal(t, first, v)
	}
	assert.Equal(t, "title_demo", first)
}

func TestValueTextUnique(t *testing.T) {
	syn := NewSynthesizer(nil)
	f := field("email", "string", map[string]string{"unique": "true"})

	a, ok := syn.Value(f)
	require.True(t, ok)
	b, ok := syn.Value(f)
	require.True(t, ok)
	assert.NotEqual(t, a, b)
	assert.Len(t, a, 26) // ulid
}

func TestValueIdentifierUnset(t *testing.T) {
	syn := NewSynthesizer(nil)
	_, ok := syn.Value(field("code", "string", map[string]string{"pk": "true"}))
	assert.False(t, ok)
}

func TestValueScalars(t *testing.T) {
	syn := NewSynthesizer(nil)

	v, ok := syn.Value(field("age", "int", nil))
	require.True(t, ok)
	assert.Equal(t, int64(1), v)

	v, ok = syn.Value(field("rate", "float", nil))
	require.True(t, ok)
	assert.Equal(t, 1.5, v)

	v, ok = syn.Value(field("active", "bool", nil))
	require.True(t, ok)
	assert.Equal(t, false, v)

	v, ok = syn.Value(field("meta", "json", nil))
	require.True(t, ok)
	assert.Equal(t, map[string]any{"demo": true}, v)
}

func TestValueEnum(t *testing.T) {
	syn := NewSynthesizer(nil)
	f := dsl.Field{Name: "status", Type: "enum", Enum: []string{"draft", "done"}, Options: map[string]string{}}

	v, ok := syn.Value(f)
	require.True(t, ok)
	assert.Equal(t, "draft", v)
}

func TestValueEnumCatalog(t *testing.T) {
	enums := map[string]reference.EnumDirectory{
		"currency": {Name: "currency", Items: []reference.EnumItem{{Code: "USD"}, {Code: "EUR"}}},
	}
	syn := NewSynthesizer(enums)
	f := field("currency", "enum", map[string]string{"catalog": "currency"})

	v, ok := syn.Value(f)
	require.True(t, ok)
	assert.Equal(t, "USD", v)
}

func TestValueList(t *testing.T) {
	syn := NewSynthesizer(nil)
	f := dsl.Field{Name: "tags", Type: "array", ElemType: "string", Options: map[string]string{}}

	v, ok := syn.Value(f)
	require.True(t, ok)
	assert.Equal(t, []any{}, v)
}

func TestValueUnknownType(t *testing.T) {
	syn := NewSynthesizer(nil)

	v, ok := syn.Value(field("blob", "geometry", map[string]string{"required": "true"}))
	require.True(t, ok)
	assert.Equal(t, "blob_demo", v)

	_, ok = syn.Value(field("blob", "geometry", nil))
	assert.False(t, ok)
}
