package card

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	assert.Equal(t, 'C', Classify(nil))
	assert.Equal(t, 'C', Classify([]rune{}))
	assert.Equal(t, 'U', Classify([]rune{'U'}))
	assert.Equal(t, 'G', Classify([]rune{'G'}))
	assert.Equal(t, 'M', Classify([]rune{'W', 'U'}))
	assert.Equal(t, 'M', Classify([]rune{'W', 'U', 'B', 'R', 'G'}))
}

func TestNew(t *testing.T) {
	t.Run("uses first character of each color", func(t *testing.T) {
		c, err := New("Foo", []string{"Blue"})
		require.NoError(t, err)
		assert.Equal(t, Card{Name: "Foo", Color: 'B'}, c)
	})

	t.Run("empty colors are colorless", func(t *testing.T) {
		c, err := New("Bar", nil)
		require.NoError(t, err)
		assert.Equal(t, 'C', c.Color)
	})

	t.Run("rejects empty color entry", func(t *testing.T) {
		_, err := New("Baz", []string{"U", ""})
		assert.Error(t, err)
	})
}

func TestLineRoundTrip(t *testing.T) {
	cards := []Card{
		{Name: "Foo", Color: 'U'},
		{Name: "Jin-Gitaxias, Progress Tyrant", Color: 'U'},
		{Name: "Fable of the Mirror-Breaker // Reflection of Kiki-Jiki", Color: 'R'},
		{Name: "Éowyn, Lady of Rohan", Color: 'M'},
		{Name: "The Reality Chip", Color: 'U'},
		{Name: "Mishra's Bauble", Color: 'C'},
	}

	for _, c := range cards {
		got, err := ParseLine(c.Line())
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}

	assert.Equal(t, "Foo;U", Card{Name: "Foo", Color: 'U'}.Line())
}

func TestParseLineErrors(t *testing.T) {
	for _, line := range []string{"", "Foo", ";U", "Foo;", "Foo;UB"} {
		_, err := ParseLine(line)
		assert.ErrorIs(t, err, ErrInvalidInput, "line %q", line)
	}
}

func TestKnownColor(t *testing.T) {
	for _, r := range "WUBRGCM" {
		assert.True(t, KnownColor(r))
	}
	assert.False(t, KnownColor('X'))
}
