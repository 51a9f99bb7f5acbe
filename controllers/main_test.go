package controllers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"pazar/utils"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) sqlmock.Sqlmock {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	SetDB(sqlx.NewDb(mockDB, "sqlmock"))
	t.Cleanup(func() { mockDB.Close() })
	return mock
}

func newRequest(method, target, body string, claims *utils.Claims) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	r := httptest.NewRequest(method, target, reader)
	if claims != nil {
		r = r.WithContext(context.WithValue(r.Context(), identityKey, claims))
	}
	return r
}

func buyer() *utils.Claims {
	return &utils.Claims{UserID: 7, Email: "buyer@example.com", Role: "customer"}
}

func admin() *utils.Claims {
	return &utils.Claims{UserID: 1, Email: "admin@example.com", Role: "admin"}
}
