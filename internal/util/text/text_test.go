package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCommify(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{7, "7"},
		{999, "999"},
		{1000, "1,000"},
		{1001, "1,001"},
		{1234567, "1,234,567"},
		{-1234, "-1,234"},
		{1000000000, "1,000,000,000"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, Commify64(tc.in), "Commify64(%d)", tc.in)
	}

	assert.Equal(t, "12,345", Commify(12345))
}

func TestAvailableMapKeys(t *testing.T) {
	assert.Equal(t,
		"'bar', 'baz', 'foo'",
		AvailableMapKeys(map[string]int{"foo": 1, "baz": 2, "bar": 3}),
	)
	assert.Equal(t, "", AvailableMapKeys(map[string]int{}))
}
