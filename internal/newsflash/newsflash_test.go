package newsflash

import (
	"context"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeadline(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		author string
		opts   Options
		want   string
	}{
		{
			name:   "collapses whitespace and capitalises",
			raw:    "  the   river\nflooded ",
			author: "Ann",
			want:   "BREAKING: Ann reports: The river flooded",
		},
		{
			name:   "anonymous author",
			raw:    "cats",
			author: "  ",
			want:   "BREAKING: Someone reports: Cats",
		},
		{
			name:   "truncates with ellipsis",
			raw:    "hello world",
			author: "Ann",
			opts:   Options{MaxLength: 20},
			want:   "BREAKING: Ann repor…",
		},
		{
			name:   "unicode first letter",
			raw:    "élan vital",
			author: "Zoë",
			want:   "BREAKING: Zoë reports: Élan vital",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Headline(tt.raw, tt.author, tt.opts)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHeadlineRespectsDefaultLimit(t *testing.T) {
	long := make([]byte, 1000)
	for i := range long {
		long[i] = 'a'
	}
	got := Headline(string(long), "Ann", Options{})
	assert.Equal(t, DefaultMaxLength, utf8.RuneCountInString(got))
}

func TestFallbackIsDeterministic(t *testing.T) {
	ctx := context.Background()
	a, err := Fallback{}.Generate(ctx, "same text", "Bo", Options{})
	require.NoError(t, err)
	b, err := Fallback{}.Generate(ctx, "same text", "Bo", Options{})
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
