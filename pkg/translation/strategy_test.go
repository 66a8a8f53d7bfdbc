package translation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveSupportedPairs(t *testing.T) {
	tests := []struct {
		kernel KernelType
		target FieldType
		want   Strategy
	}{
		{KernelTypeUint8, FieldTypeUint32, StrategyUint8ToUint32},
		{KernelTypeUint16, FieldTypeUint32, StrategyUint16ToUint32},
		{KernelTypeUint32, FieldTypeUint32, StrategyUint32ToUint32},
		{KernelTypeUint8, FieldTypeUint64, StrategyUint8ToUint64},
		{KernelTypeUint16, FieldTypeUint64, StrategyUint16ToUint64},
		{KernelTypeUint32, FieldTypeUint64, StrategyUint32ToUint64},
		{KernelTypeUint64, FieldTypeUint64, StrategyUint64ToUint64},
		{KernelTypeInt8, FieldTypeInt32, StrategyInt8ToInt32},
		{KernelTypeInt16, FieldTypeInt32, StrategyInt16ToInt32},
		{KernelTypeInt32, FieldTypeInt32, StrategyInt32ToInt32},
		{KernelTypeInt8, FieldTypeInt64, StrategyInt8ToInt64},
		{KernelTypeInt16, FieldTypeInt64, StrategyInt16ToInt64},
		{KernelTypeInt32, FieldTypeInt64, StrategyInt32ToInt64},
		{KernelTypeInt64, FieldTypeInt64, StrategyInt64ToInt64},
		{KernelTypeFixedCString, FieldTypeString, StrategyFixedCStringToString},
	}
	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			got, ok := Resolve(tt.kernel, tt.target)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveUnsupportedPairs(t *testing.T) {
	tests := []struct {
		name   string
		kernel KernelType
		target FieldType
	}{
		{"narrowing u64 to uint32", KernelTypeUint64, FieldTypeUint32},
		{"narrowing i64 to int32", KernelTypeInt64, FieldTypeInt32},
		{"sign mismatch signed to uint", KernelTypeInt32, FieldTypeUint32},
		{"sign mismatch unsigned to int", KernelTypeUint32, FieldTypeInt64},
		{"int to string", KernelTypeInt32, FieldTypeString},
		{"cstring to int", KernelTypeFixedCString, FieldTypeInt64},
		{"invalid kernel type", KernelTypeInvalid, FieldTypeUint32},
		{"invalid target type", KernelTypeUint32, FieldTypeInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Resolve(tt.kernel, tt.target)
			assert.False(t, ok)
			assert.Equal(t, StrategyInvalid, got)
		})
	}
}

func TestInferKernelType(t *testing.T) {
	tests := []struct {
		ctype  string
		size   uint16
		signed bool
		want   KernelType
	}{
		{"unsigned short", 2, false, KernelTypeUint16},
		{"unsigned char", 1, false, KernelTypeUint8},
		{"unsigned int", 4, false, KernelTypeUint32},
		{"unsigned long", 8, false, KernelTypeUint64},
		{"u64", 8, false, KernelTypeUint64},
		{"int", 4, true, KernelTypeInt32},
		{"pid_t", 4, true, KernelTypeInt32},
		{"short", 2, true, KernelTypeInt16},
		{"long", 8, true, KernelTypeInt64},
		{"char", 16, true, KernelTypeFixedCString},
		{"char", 16, false, KernelTypeFixedCString},
		// One-byte chars are flag bytes, not text.
		{"char", 1, true, KernelTypeInt8},
		{"char", 1, false, KernelTypeUint8},
		// Dynamic arrays and pointers have no fixed layout to copy.
		{"__data_loc char[]", 4, true, KernelTypeInvalid},
		{"const char *", 8, false, KernelTypeInvalid},
		// Word-boundary match: "charlie_t" is not a char array.
		{"charlie_t", 16, false, KernelTypeInvalid},
		{"struct foo", 3, false, KernelTypeInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.ctype, func(t *testing.T) {
			assert.Equal(t, tt.want, InferKernelType(tt.ctype, tt.size, tt.signed))
		})
	}
}
