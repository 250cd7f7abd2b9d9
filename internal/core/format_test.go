package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatSize(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{0, "0.0 B"},
		{512, "512.0 B"},
		{1024, "1.0 KB"},
		{4396, "4.3 KB"},
		{1536 * 1024, "1.5 MB"},
		{5 * 1024 * 1024 * 1024, "5.0 GB"},
		{2 * 1024 * 1024 * 1024 * 1024, "2.0 TB"},
		{3 * 1024 * 1024 * 1024 * 1024 * 1024, "3.0 PB"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, FormatSize(tc.in), "FormatSize(%d)", tc.in)
	}
}
