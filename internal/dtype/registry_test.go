package dtype

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.ngs.io/ncmodel/internal/domain"
)

func TestArrayDType_Aliases(t *testing.T) {
	r := MustRegistry()
	cases := map[string]domain.DType{
		"byte":    domain.Int8,
		"i1":      domain.Int8,
		"short":   domain.Int16,
		"UInt16":  domain.Uint16,
		"int":     domain.Int32,
		"integer": domain.Int32,
		"u4":      domain.Uint32,
		"long":    domain.Int64,
		"UInt64":  domain.Uint64,
		"float":   domain.Float32,
		"f4":      domain.Float32,
		"double":  domain.Float64,
		"Float64": domain.Float64,
	}
	for tag, want := range cases {
		got, err := r.ArrayDType(tag)
		require.NoError(t, err, tag)
		assert.Equal(t, want, got, tag)
	}
}

func TestArrayDType_UnknownListsLegalTags(t *testing.T) {
	r := MustRegistry()
	_, err := r.ArrayDType("quad")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnknownType))

	var ute *UnknownTypeError
	require.True(t, errors.As(err, &ute))
	assert.Equal(t, TargetArrayDType, ute.Target)
	assert.Contains(t, ute.Legal, "float")
	assert.NotContains(t, ute.Legal, "char")
	assert.NotContains(t, ute.Legal, "bool")

	// Known group without an array mapping.
	_, err = r.ArrayDType("string")
	assert.True(t, errors.Is(err, domain.ErrUnknownType))
}

func TestFileCode_LongCollapsesToI4(t *testing.T) {
	r := MustRegistry()
	for tag, want := range map[string]string{"byte": "i1", "short": "i2", "int": "i4", "long": "i4", "float": "f4", "double": "f8", "char": "S1"} {
		got, err := r.FileCode(tag)
		require.NoError(t, err, tag)
		assert.Equal(t, want, got, tag)
	}
	_, err := r.FileCode("ushort")
	assert.True(t, errors.Is(err, domain.ErrUnknownType))
}

func TestRasterCode_LiteralByteAlwaysAccepted(t *testing.T) {
	r := MustRegistry()
	got, err := r.RasterCode("Byte")
	require.NoError(t, err)
	assert.Equal(t, "GDT_Byte", got)

	got, err = r.RasterCode("uint32")
	require.NoError(t, err)
	assert.Equal(t, "GDT_UInt32", got)

	_, err = r.RasterCode("long")
	var ute *UnknownTypeError
	require.True(t, errors.As(err, &ute))
	assert.Contains(t, ute.Legal, "Byte")
}

func TestLegacyByteAlias_OffByDefault(t *testing.T) {
	_, err := MustRegistry().ArrayDType("Byte")
	assert.Error(t, err)

	r, err := NewRegistry(WithLegacyByteAlias())
	require.NoError(t, err)
	got, err := r.ArrayDType("Byte")
	require.NoError(t, err)
	assert.Equal(t, domain.Int8, got)
}

func TestNewRegistry_AmbiguousAliasFails(t *testing.T) {
	_, err := NewRegistry(WithAlias("char", Byte))
	assert.Error(t, err)

	_, err = NewRegistry(WithLegacyByteAlias(), WithAlias("Byte", String))
	assert.Error(t, err)

	r, err := NewRegistry(WithAlias("real", Float))
	require.NoError(t, err)
	assert.True(t, r.IsFloat("real"))
}

func TestPredicatesAndTagForDType(t *testing.T) {
	r := MustRegistry()
	assert.True(t, r.IsFloat("double"))
	assert.False(t, r.IsFloat("int"))
	assert.True(t, r.IsInteger("u2"))
	assert.False(t, r.IsInteger("char"))

	tag, err := TagForDType(domain.Float32)
	require.NoError(t, err)
	assert.Equal(t, "float", tag)
	assert.Equal(t, "int16", DTypeName(domain.Int16))
}
