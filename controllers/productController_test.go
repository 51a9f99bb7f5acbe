package controllers

import (
	"database/sql"
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

var productRowColumns = []string{
	"id", "title", "description", "price", "category_id",
	"seller_id", "image_url", "images", "features", "created_at",
}

func TestDeleteProductWithOrdersIsConflict(t *testing.T) {
	mock := newMockDB(t)

	mock.ExpectExec("DELETE FROM products").
		WillReturnError(&pq.Error{Code: "23503"})

	r := newRequest(http.MethodDelete, "/api/products/9", "", buyer())
	r.SetPathValue("id", "9")

	w := httptest.NewRecorder()
	DeleteProduct(w, r)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "related orders")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteProductFiltersOnSellerForNonAdmins(t *testing.T) {
	mock := newMockDB(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM products WHERE id = $1 AND seller_id = $2")).
		WithArgs("9", 7).
		WillReturnResult(sqlmock.NewResult(0, 0))

	r := newRequest(http.MethodDelete, "/api/products/9", "", buyer())
	r.SetPathValue("id", "9")

	w := httptest.NewRecorder()
	DeleteProduct(w, r)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "not found or unauthorized")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteProductAdminSkipsOwnershipFilter(t *testing.T) {
	mock := newMockDB(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM products WHERE id = $1")).
		WithArgs("9").
		WillReturnResult(sqlmock.NewResult(0, 1))

	r := newRequest(http.MethodDelete, "/api/products/9", "", admin())
	r.SetPathValue("id", "9")

	w := httptest.NewRecorder()
	DeleteProduct(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateProductRequiresTitleAndPrice(t *testing.T) {
	newMockDB(t)

	for _, body := range []string{`{}`, `{"title":"Shirt"}`, `{"price":10}`} {
		w := httptest.NewRecorder()
		CreateProduct(w, newRequest(http.MethodPost, "/api/products", body, buyer()))
		assert.Equal(t, http.StatusBadRequest, w.Code, "body %s", body)
	}
}

func TestCreateProductMergesSizesIntoFeatures(t *testing.T) {
	mock := newMockDB(t)

	mock.ExpectQuery("INSERT INTO products").
		WithArgs("Shirt", nil, 49.9, nil, 7, nil, nil, `{"sizes":["S","M"]}`).
		WillReturnRows(sqlmock.NewRows(productRowColumns).
			AddRow(11, "Shirt", nil, 49.9, nil, 7, nil, nil, `{"sizes":["S","M"]}`, time.Now()))

	w := httptest.NewRecorder()
	CreateProduct(w, newRequest(http.MethodPost, "/api/products",
		`{"title":"Shirt","price":49.9,"sizes":["S","M"]}`, buyer()))

	require.Equal(t, http.StatusCreated, w.Code)

	var product models.Product
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &product))
	assert.Equal(t, 7, product.SellerID)
	require.NotNil(t, product.Features)
	assert.JSONEq(t, `{"sizes":["S","M"]}`, *product.Features)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateProductStoresEmptyFeaturesAsNull(t *testing.T) {
	mock := newMockDB(t)

	mock.ExpectQuery("INSERT INTO products").
		WithArgs("Mug", nil, 5.0, nil, 7, nil, nil, nil).
		WillReturnRows(sqlmock.NewRows(productRowColumns).
			AddRow(12, "Mug", nil, 5.0, nil, 7, nil, nil, nil, time.Now()))

	w := httptest.NewRecorder()
	CreateProduct(w, newRequest(http.MethodPost, "/api/products",
		`{"title":"Mug","price":5,"features":{}}`, buyer()))

	require.Equal(t, http.StatusCreated, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetProductByIDNotFound(t *testing.T) {
	mock := newMockDB(t)

	mock.ExpectQuery("FROM products p").
		WithArgs("99").
		WillReturnError(sql.ErrNoRows)

	r := newRequest(http.MethodGet, "/api/products/99", "", nil)
	r.SetPathValue("id", "99")

	w := httptest.NewRecorder()
	GetProductByID(w, r)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetProductsFiltersByCategorySlug(t *testing.T) {
	mock := newMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta("c.slug = $1")).
		WithArgs("shoes").
		WillReturnRows(sqlmock.NewRows(append([]string{}, append(productRowColumns,
			"category_name", "category_slug", "seller_email", "seller_name")...)))

	w := httptest.NewRecorder()
	GetProducts(w, newRequest(http.MethodGet, "/api/products?category=shoes", "", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPopularProductsExcludesCancelledAndBreaksTiesByID(t *testing.T) {
	mock := newMockDB(t)

	pattern := regexp.QuoteMeta("o.status <> 'cancelled'") + ".*" +
		regexp.QuoteMeta("ORDER BY total_ordered DESC, p.id DESC") + ".*" +
		regexp.QuoteMeta("LIMIT 5")

	columns := append([]string{}, append(productRowColumns,
		"category_name", "category_slug", "seller_email", "seller_name", "total_ordered")...)

	mock.ExpectQuery(pattern).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(2, "P2", nil, 10.0, nil, 9, nil, nil, nil, time.Now(), nil, nil, nil, nil, 10).
			AddRow(1, "P1", nil, 10.0, nil, 9, nil, nil, nil, time.Now(), nil, nil, nil, nil, 10).
			AddRow(3, "P3", nil, 10.0, nil, 9, nil, nil, nil, time.Now(), nil, nil, nil, nil, 0))

	w := httptest.NewRecorder()
	GetPopularProducts(w, newRequest(http.MethodGet, "/api/products/popular", "", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var products []models.PopularProduct
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &products))
	require.Len(t, products, 3)
	assert.Equal(t, 2, products[0].ID)
	assert.Equal(t, 0, products[2].TotalOrdered, "zero-order products still rank")

	assert.NoError(t, mock.ExpectationsWereMet())
}
