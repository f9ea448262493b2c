package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildIndex_FirstSeenWins(t *testing.T) {
	idx := BuildIndex([]Entry{
		{Key: "ORD-1", Status: "SUCCESS"},
		{Key: " ord-1 ", Status: "FAILED"},
		{Key: "ORD-2", Status: "PENDING"},
	}, true)

	assert.Equal(t, 2, idx.Len())
	status, ok := idx.LookupStatus("ord-1")
	assert.True(t, ok)
	assert.Equal(t, "SUCCESS", status)
}

func TestBuildIndex_BlankKeysShareOneSlot(t *testing.T) {
	idx := BuildIndex([]Entry{
		{Key: "", Status: "SUCCESS"},
		{Key: "   ", Status: "FAILED"},
	}, true)

	assert.Equal(t, 1, idx.Len())
	assert.True(t, idx.Contains(""))
	status, ok := idx.LookupStatus("")
	assert.True(t, ok)
	assert.Equal(t, "SUCCESS", status)
}

func TestIndex_LookupStatus(t *testing.T) {
	t.Run("blank status is absent", func(t *testing.T) {
		idx := BuildIndex([]Entry{{Key: "a", Status: "  "}}, true)
		assert.True(t, idx.Contains("a"))
		_, ok := idx.LookupStatus("a")
		assert.False(t, ok)
	})

	t.Run("unknown key is absent", func(t *testing.T) {
		idx := BuildIndex([]Entry{{Key: "a", Status: "SUCCESS"}}, true)
		_, ok := idx.LookupStatus("b")
		assert.False(t, ok)
	})

	t.Run("no status column is always absent", func(t *testing.T) {
		idx := BuildIndex([]Entry{{Key: "a", Status: "SUCCESS"}}, false)
		assert.False(t, idx.HasStatus())
		assert.True(t, idx.Contains("a"))
		_, ok := idx.LookupStatus("a")
		assert.False(t, ok)
	})
}

func TestBuildIndex_Empty(t *testing.T) {
	idx := BuildIndex(nil, true)
	assert.Equal(t, 0, idx.Len())
	assert.False(t, idx.Contains(""))
}
