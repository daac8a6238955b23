package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoveBefore(t *testing.T) {
	tests := []struct {
		name   string
		ids    []uint
		moved  uint
		target uint
		want   []uint
	}{
		{"last to front", []uint{1, 2, 3}, 3, 1, []uint{3, 1, 2}},
		{"first before last", []uint{1, 2, 3}, 1, 3, []uint{2, 1, 3}},
		{"adjacent forward", []uint{1, 2, 3, 4}, 2, 3, []uint{1, 2, 3, 4}},
		{"adjacent backward", []uint{1, 2, 3, 4}, 3, 2, []uint{1, 3, 2, 4}},
		{"self", []uint{1, 2, 3}, 2, 2, []uint{1, 2, 3}},
		{"two items", []uint{7, 9}, 9, 7, []uint{9, 7}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := append([]uint(nil), tt.ids...)
			got, err := MoveBefore(input, tt.moved, tt.target)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ids, input, "input must not be modified")
		})
	}
}

func TestMoveBefore_UnknownIDs(t *testing.T) {
	_, err := MoveBefore([]uint{1, 2}, 5, 1)
	assert.Error(t, err)

	_, err = MoveBefore([]uint{1, 2}, 1, 5)
	assert.Error(t, err)
}
