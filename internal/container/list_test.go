package container

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestList_FIFOOrder(t *testing.T) {
	l := NewList[int]()
	l.PushBack(1)
	l.PushBack(2)
	l.PushBack(3)

	for _, want := range []int{1, 2, 3} {
		got, ok := l.PopFront()
		require.True(t, ok)
		require.Equal(t, want, got)
	}
	_, ok := l.PopFront()
	require.False(t, ok)
}

func TestList_Remove(t *testing.T) {
	l := NewList[string]()
	l.PushBack("a")
	l.PushBack("b")
	l.PushBack("c")

	require.True(t, l.Remove(func(s string) bool { return s == "b" }))
	require.Equal(t, 2, l.Len())
	require.False(t, l.Remove(func(s string) bool { return s == "z" }))
}

func TestList_Drain(t *testing.T) {
	l := NewList[int]()
	l.PushBack(1)
	l.PushBack(2)

	got := l.Drain()
	require.Equal(t, []int{1, 2}, got)
	require.Equal(t, 0, l.Len())
}
