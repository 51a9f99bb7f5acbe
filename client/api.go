package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// API is a minimal bearer-token JSON client for the backend.
type API struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

func NewAPI(baseURL string) *API {
	return &API{
		BaseURL: baseURL,
		HTTP:    http.DefaultClient,
	}
}

func (a *API) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reqBody *bytes.Buffer
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(raw)
	} else {
		reqBody = &bytes.Buffer{}
	}

	req, err := http.NewRequestWithContext(ctx, method, a.BaseURL+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if a.Token != "" {
		req.Header.Set("Authorization", "Bearer "+a.Token)
	}

	resp, err := a.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error != "" {
			return fmt.Errorf("%s %s: %s", method, path, apiErr.Error)
		}
		return fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

// ProductSummary is the slice of a product listing the client state
// needs: enough to resolve a product's seller.
type ProductSummary struct {
	ID       int `json:"id"`
	SellerID int `json:"seller_id"`
}

func (a *API) ListProducts(ctx context.Context) ([]ProductSummary, error) {
	var products []ProductSummary
	if err := a.do(ctx, http.MethodGet, "/api/products", nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (a *API) FavoriteIDs(ctx context.Context) ([]int, error) {
	var out struct {
		FavoriteIDs []int `json:"favoriteIds"`
	}
	if err := a.do(ctx, http.MethodGet, "/api/favorites/ids", nil, &out); err != nil {
		return nil, err
	}
	return out.FavoriteIDs, nil
}

func (a *API) AddFavorite(ctx context.Context, productID int) error {
	body := map[string]int{"product_id": productID}
	return a.do(ctx, http.MethodPost, "/api/favorites", body, nil)
}

func (a *API) RemoveFavorite(ctx context.Context, productID int) error {
	return a.do(ctx, http.MethodDelete, fmt.Sprintf("/api/favorites/%d", productID), nil, nil)
}
