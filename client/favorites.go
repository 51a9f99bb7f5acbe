package client

import (
	"context"
	"sort"
)

// FavoriteAPI is the backend surface the favorite set syncs through.
type FavoriteAPI interface {
	FavoriteIDs(ctx context.Context) ([]int, error)
	AddFavorite(ctx context.Context, productID int) error
	RemoveFavorite(ctx context.Context, productID int) error
}

// FavoriteSet mirrors the user's favorited product ids. It is hydrated
// from the backend and kept in sync as favorites are toggled. Not safe
// for concurrent use.
type FavoriteSet struct {
	api FavoriteAPI
	ids map[int]struct{}
}

func NewFavoriteSet(api FavoriteAPI) *FavoriteSet {
	return &FavoriteSet{
		api: api,
		ids: map[int]struct{}{},
	}
}

// Load hydrates the set from the backend. On failure the set is left
// empty.
func (f *FavoriteSet) Load(ctx context.Context) error {
	f.ids = map[int]struct{}{}
	ids, err := f.api.FavoriteIDs(ctx)
	if err != nil {
		return err
	}
	for _, id := range ids {
		f.ids[id] = struct{}{}
	}
	return nil
}

func (f *FavoriteSet) Add(ctx context.Context, productID int) error {
	if err := f.api.AddFavorite(ctx, productID); err != nil {
		return err
	}
	f.ids[productID] = struct{}{}
	return nil
}

func (f *FavoriteSet) Remove(ctx context.Context, productID int) error {
	if err := f.api.RemoveFavorite(ctx, productID); err != nil {
		return err
	}
	delete(f.ids, productID)
	return nil
}

// Toggle flips the favorite state and reports the resulting state.
func (f *FavoriteSet) Toggle(ctx context.Context, productID int) (bool, error) {
	if f.Has(productID) {
		if err := f.Remove(ctx, productID); err != nil {
			return true, err
		}
		return false, nil
	}
	if err := f.Add(ctx, productID); err != nil {
		return false, err
	}
	return true, nil
}

func (f *FavoriteSet) Has(productID int) bool {
	_, ok := f.ids[productID]
	return ok
}

func (f *FavoriteSet) Clear() {
	f.ids = map[int]struct{}{}
}

func (f *FavoriteSet) IDs() []int {
	ids := make([]int, 0, len(f.ids))
	for id := range f.ids {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
