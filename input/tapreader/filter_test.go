package tapreader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamFilterAcceptAll(t *testing.T) {
	filter, err := NewStreamFilter(nil, nil)
	require.NoError(t, err)
	assert.True(t, filter.Accept("cats"))
	assert.True(t, filter.Accept("_internal"))
}

func TestStreamFilterInclude(t *testing.T) {
	filter, err := NewStreamFilter([]string{"cat*", "dogs"}, nil)
	require.NoError(t, err)
	assert.True(t, filter.Accept("cats"))
	assert.True(t, filter.Accept("cat_facts"))
	assert.True(t, filter.Accept("dogs"))
	assert.False(t, filter.Accept("mice"))
}

func TestStreamFilterExcludeWins(t *testing.T) {
	filter, err := NewStreamFilter([]string{"*"}, []string{"_*", "cats_archive"})
	require.NoError(t, err)
	assert.True(t, filter.Accept("cats"))
	assert.False(t, filter.Accept("_internal"))
	assert.False(t, filter.Accept("cats_archive"))
}

func TestStreamFilterBadPattern(t *testing.T) {
	_, err := NewStreamFilter([]string{"[unclosed"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "include")

	_, err = NewStreamFilter(nil, []string{"[unclosed"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exclude")
}
