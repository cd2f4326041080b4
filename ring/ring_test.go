package ring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuffer_PushPopBasic(t *testing.T) {
	b := New[int](4)
	assert.Equal(t, 0, b.Len())

	for i := 0; i < 10; i++ {
		b.PushBack(i)
	}
	assert.Equal(t, 10, b.Len())
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, b.Slice())

	assert.Equal(t, 0, b.PopFront())
	assert.Equal(t, 1, b.PopFront())
	assert.Equal(t, 8, b.Len())
	assert.Equal(t, 2, b.At(0))
}

func TestBuffer_DropFront(t *testing.T) {
	b := New[int](4)
	for i := 0; i < 5; i++ {
		b.PushBack(i)
	}
	b.DropFront(3)
	assert.Equal(t, []int{3, 4}, b.Slice())
}

func TestBuffer_WrapAround(t *testing.T) {
	b := New[int](4)
	for i := 0; i < 8; i++ {
		b.PushBack(i)
	}
	b.PopFront()
	b.PopFront()
	b.PushBack(8)
	b.PushBack(9)
	assert.Equal(t, []int{2, 3, 4, 5, 6, 7, 8, 9}, b.Slice())
}

func TestBuffer_EmptyPanics(t *testing.T) {
	b := New[int](4)
	assert.Panics(t, func() { b.PopFront() })
	assert.Panics(t, func() { b.At(0) })
}
