package client

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFavoriteAPI struct {
	ids     []int
	loadErr error
	addErr  error
}

func (s *stubFavoriteAPI) FavoriteIDs(ctx context.Context) ([]int, error) {
	return s.ids, s.loadErr
}

func (s *stubFavoriteAPI) AddFavorite(ctx context.Context, productID int) error {
	return s.addErr
}

func (s *stubFavoriteAPI) RemoveFavorite(ctx context.Context, productID int) error {
	return nil
}

func TestFavoriteSetLoad(t *testing.T) {
	set := NewFavoriteSet(&stubFavoriteAPI{ids: []int{3, 1, 2}})

	require.NoError(t, set.Load(context.Background()))
	assert.True(t, set.Has(1))
	assert.False(t, set.Has(4))
	assert.Equal(t, []int{1, 2, 3}, set.IDs())
}

func TestFavoriteSetLoadFailureLeavesEmptySet(t *testing.T) {
	set := NewFavoriteSet(&stubFavoriteAPI{ids: []int{1}, loadErr: errors.New("unreachable")})

	require.Error(t, set.Load(context.Background()))
	assert.Empty(t, set.IDs())
}

func TestFavoriteSetToggle(t *testing.T) {
	set := NewFavoriteSet(&stubFavoriteAPI{})
	ctx := context.Background()

	on, err := set.Toggle(ctx, 5)
	require.NoError(t, err)
	assert.True(t, on)
	assert.True(t, set.Has(5))

	on, err = set.Toggle(ctx, 5)
	require.NoError(t, err)
	assert.False(t, on)
	assert.False(t, set.Has(5))
}

func TestFavoriteSetAddFailureKeepsLocalStateUnchanged(t *testing.T) {
	set := NewFavoriteSet(&stubFavoriteAPI{addErr: errors.New("conflict")})

	require.Error(t, set.Add(context.Background(), 5))
	assert.False(t, set.Has(5))
}
