package ds

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSet_AddKeepsInsertionOrder(t *testing.T) {
	s := NewStringSet()
	s.Add("registry")
	s.Add("space")
	s.Add("protocol")
	s.Add("space") // duplicate, keeps its original slot

	require.Equal(t, 3, s.Len())
	require.Equal(t, []string{"registry", "space", "protocol"}, s.Values())
}

func TestSet_SeedCollapsesDuplicates(t *testing.T) {
	s := NewSet(2, 7, 2, 1, 7)
	require.Equal(t, []int{2, 7, 1}, s.Values())
}

func TestSet_RemovePreservesOrderOfRest(t *testing.T) {
	s := NewStringSet("a", "b", "c", "d")

	s.Remove("b")
	require.Equal(t, []string{"a", "c", "d"}, s.Values())
	require.False(t, s.Contains("b"))

	// removing an absent element is a no-op
	s.Remove("b")
	require.Equal(t, []string{"a", "c", "d"}, s.Values())
}

func TestSet_ReAddAfterRemoveGoesToTheEnd(t *testing.T) {
	s := NewStringSet("a", "b", "c")
	s.Remove("a")
	s.Add("a")
	require.Equal(t, []string{"b", "c", "a"}, s.Values())
}

func TestSet_ValuesIsACopy(t *testing.T) {
	s := NewStringSet("x", "y")

	vals := s.Values()
	vals[0] = "mutated"

	require.Equal(t, []string{"x", "y"}, s.Values())
}
