package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeList(t *testing.T) {
	cases := []struct {
		name string
		in   []string
		want []string
	}{
		{"nil passes through", nil, nil},
		{"trims and drops empties", []string{" a ", "", "  ", "b"}, []string{"a", "b"}},
		{"dedupes preserving order", []string{"b", "a", "b", "a"}, []string{"b", "a"}},
		{"dedupes after trimming", []string{"kafka:9092", " kafka:9092 "}, []string{"kafka:9092"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NormalizeList(tc.in))
		})
	}
}
