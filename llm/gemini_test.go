package llm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "python fence",
			in:   "```python\nfrom manim import *\n```",
			want: "from manim import *",
		},
		{
			name: "python fence with prose around it",
			in:   "Here is the code:\n```python\nx = 1\n```\nEnjoy!",
			want: "x = 1",
		},
		{
			name: "anonymous fence",
			in:   "```\nx = 1\n```",
			want: "x = 1",
		},
		{
			name: "no fence passes through",
			in:   "from manim import *\nx = 1",
			want: "from manim import *\nx = 1",
		},
		{
			name: "surrounding whitespace trimmed",
			in:   "  \n```python\n  x = 1\n```\n  ",
			want: "x = 1",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, StripCodeFence(tc.in))
		})
	}
}

func TestIsRateLimit(t *testing.T) {
	assert.True(t, isRateLimit(errors.New("googleapi: Error 429: quota exceeded")))
	assert.True(t, isRateLimit(errors.New("rpc error: code = ResourceExhausted desc = Resource exhausted")))
	assert.True(t, isRateLimit(errors.New("RESOURCE_EXHAUSTED: try again later")))
	assert.False(t, isRateLimit(errors.New("invalid API key")))
	assert.False(t, isRateLimit(errors.New("connection refused")))
}
