package memo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	key, err := Key()
	require.NoError(t, err)
	assert.Equal(t, StaticKey, key)

	key, err = Key(1, 2)
	require.NoError(t, err)
	assert.Equal(t, "[1,2]", key)

	again, err := Key(1, 2)
	require.NoError(t, err)
	assert.Equal(t, key, again)

	ab, err := Key("a", "b")
	require.NoError(t, err)
	joined, err := Key("ab")
	require.NoError(t, err)
	assert.NotEqual(t, ab, joined)

	type point struct{ X, Y int }
	key, err = Key(point{1, 2}, []string{"x"})
	require.NoError(t, err)
	assert.Equal(t, `[{"X":1,"Y":2},["x"]]`, key)
}

func TestKeyRejectsUnencodable(t *testing.T) {
	_, err := Key(make(chan int))
	assert.Error(t, err)

	_, err = Key(func() {})
	assert.Error(t, err)
}
