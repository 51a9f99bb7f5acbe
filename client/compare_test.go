package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompareListCap(t *testing.T) {
	list := NewCompareList(newMemStorage())

	assert.True(t, list.Add(CompareProduct{ID: 1, Title: "A"}))
	assert.True(t, list.Add(CompareProduct{ID: 2, Title: "B"}))
	assert.True(t, list.Add(CompareProduct{ID: 3, Title: "C"}))

	assert.False(t, list.Add(CompareProduct{ID: 4, Title: "D"}))
	assert.Len(t, list.Products(), MaxCompare)
}

func TestCompareListDuplicateIsNoOp(t *testing.T) {
	list := NewCompareList(newMemStorage())

	assert.True(t, list.Add(CompareProduct{ID: 1}))
	assert.False(t, list.Add(CompareProduct{ID: 1}))
	assert.Len(t, list.Products(), 1)
}

func TestCompareListRemoveFreesASlot(t *testing.T) {
	list := NewCompareList(newMemStorage())
	list.Add(CompareProduct{ID: 1})
	list.Add(CompareProduct{ID: 2})
	list.Add(CompareProduct{ID: 3})

	list.Remove(2)
	assert.False(t, list.Contains(2))
	assert.True(t, list.Add(CompareProduct{ID: 4}))
}

func TestCompareListPersistsAndClears(t *testing.T) {
	storage := newMemStorage()

	list := NewCompareList(storage)
	list.Add(CompareProduct{ID: 1, Title: "A"})

	reloaded := NewCompareList(storage)
	require.Len(t, reloaded.Products(), 1)
	assert.True(t, reloaded.Contains(1))

	reloaded.Clear()
	_, ok := storage.data[compareStorageKey]
	assert.False(t, ok, "clear drops the storage key")
	assert.Empty(t, NewCompareList(storage).Products())
}
