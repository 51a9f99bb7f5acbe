package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"pazar/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddFavorite(t *testing.T) {
	mock := newMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM products WHERE id = $1")).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))

	mock.ExpectQuery("INSERT INTO favorites").
		WithArgs(7, 5).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "product_id", "created_at"}).
			AddRow(3, 7, 5, time.Now()))

	w := httptest.NewRecorder()
	AddFavorite(w, newRequest(http.MethodPost, "/api/favorites", `{"product_id":5}`, buyer()))

	require.Equal(t, http.StatusCreated, w.Code)

	var favorite models.Favorite
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &favorite))
	assert.Equal(t, 7, favorite.UserID)
	assert.Equal(t, 5, favorite.ProductID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddFavoriteTwiceIsConflict(t *testing.T) {
	mock := newMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM products WHERE id = $1")).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))

	mock.ExpectQuery("INSERT INTO favorites").
		WillReturnError(&pq.Error{Code: "23505"})

	w := httptest.NewRecorder()
	AddFavorite(w, newRequest(http.MethodPost, "/api/favorites", `{"product_id":5}`, buyer()))

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "already in favorites")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddFavoriteUnknownProduct(t *testing.T) {
	mock := newMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM products WHERE id = $1")).
		WithArgs(99).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	w := httptest.NewRecorder()
	AddFavorite(w, newRequest(http.MethodPost, "/api/favorites", `{"product_id":99}`, buyer()))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAddFavoriteRequiresProductID(t *testing.T) {
	newMockDB(t)

	w := httptest.NewRecorder()
	AddFavorite(w, newRequest(http.MethodPost, "/api/favorites", `{}`, buyer()))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRemoveFavoriteScopedToCaller(t *testing.T) {
	mock := newMockDB(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM favorites WHERE product_id = $1 AND user_id = $2")).
		WithArgs("5", 7).
		WillReturnResult(sqlmock.NewResult(0, 1))

	r := newRequest(http.MethodDelete, "/api/favorites/5", "", buyer())
	r.SetPathValue("product_id", "5")

	w := httptest.NewRecorder()
	RemoveFavorite(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRemoveFavoriteMissing(t *testing.T) {
	mock := newMockDB(t)

	mock.ExpectExec("DELETE FROM favorites").
		WillReturnResult(sqlmock.NewResult(0, 0))

	r := newRequest(http.MethodDelete, "/api/favorites/5", "", buyer())
	r.SetPathValue("product_id", "5")

	w := httptest.NewRecorder()
	RemoveFavorite(w, r)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCheckFavoriteWithoutIdentityIsFalse(t *testing.T) {
	newMockDB(t)

	r := newRequest(http.MethodGet, "/api/favorites/check/5", "", nil)
	r.SetPathValue("product_id", "5")

	w := httptest.NewRecorder()
	CheckFavorite(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"isFavorite":false}`, w.Body.String())
}

func TestCheckFavoriteFound(t *testing.T) {
	mock := newMockDB(t)

	mock.ExpectQuery("SELECT id FROM favorites").
		WithArgs("5", 7).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))

	r := newRequest(http.MethodGet, "/api/favorites/check/5", "", buyer())
	r.SetPathValue("product_id", "5")

	w := httptest.NewRecorder()
	CheckFavorite(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"isFavorite":true}`, w.Body.String())
}

func TestGetFavoriteIDsWithoutIdentityIsEmpty(t *testing.T) {
	newMockDB(t)

	w := httptest.NewRecorder()
	GetFavoriteIDs(w, newRequest(http.MethodGet, "/api/favorites/ids", "", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"favoriteIds":[]}`, w.Body.String())
}

func TestGetFavoriteIDs(t *testing.T) {
	mock := newMockDB(t)

	mock.ExpectQuery("SELECT product_id FROM favorites").
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"product_id"}).AddRow(5).AddRow(8))

	w := httptest.NewRecorder()
	GetFavoriteIDs(w, newRequest(http.MethodGet, "/api/favorites/ids", "", buyer()))

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"favoriteIds":[5,8]}`, w.Body.String())
}
