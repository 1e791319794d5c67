package http

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mylibrary-rental/internal/repository/sqlstore"
	"mylibrary-rental/internal/service"
	"mylibrary-rental/internal/testutil"
)

func newSQLiteRouter(t *testing.T) http.Handler {
	t.Helper()
	store, err := sqlstore.NewStore(testutil.OpenInMemoryDB(t))
	require.NoError(t, err)
	doc, err := LoadOpenAPI(context.Background())
	require.NoError(t, err)
	router, err := NewRouter(service.NewRentalService(store), store, doc)
	require.NoError(t, err)
	return router
}

func TestRentalAPI_RoundTrip(t *testing.T) {
	router := newSQLiteRouter(t)

	rec := serve(router, http.MethodGet, "/mylibrary/rentals/1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(router, http.MethodPost, "/mylibrary/rentals", `{
		"rentalId": 77,
		"userId": 2,
		"bookId": "32322",
		"issueTime": "2020-03-12T14:35:34Z",
		"returnTime": "2020-03-12T14:35:34Z",
		"returnDuration": 1,
		"lateFee": 0.0
	}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeBody(t, rec)
	assert.Equal(t, float64(1), created["rentalId"])
	location := rec.Header().Get("Location")
	assert.Equal(t, "http://example.com/mylibrary/rentals/1", location)

	rec = serve(router, http.MethodGet, "/mylibrary/rentals/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody(t, rec)
	assert.Equal(t, float64(2), got["userId"])
	assert.Equal(t, "32322", got["bookId"])
	assert.Equal(t, float64(1), got["returnDuration"])
	assert.Equal(t, "2020-03-12T14:35:34Z", got["issueTime"])

	rec = serve(router, http.MethodPut, "/mylibrary/rentals", `{
		"rentalId": 1,
		"userId": 99,
		"bookId": "changed",
		"issueTime": "2021-01-01T00:00:00Z",
		"returnTime": "2020-03-20T09:00:00Z",
		"returnDuration": 5,
		"lateFee": 3.5
	}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = serve(router, http.MethodGet, "/mylibrary/rentals/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	got = decodeBody(t, rec)
	assert.Equal(t, float64(2), got["userId"])
	assert.Equal(t, "32322", got["bookId"])
	assert.Equal(t, "2020-03-12T14:35:34Z", got["issueTime"])
	assert.Equal(t, float64(1), got["returnDuration"])
	assert.Equal(t, "2020-03-20T09:00:00Z", got["returnTime"])
	assert.Equal(t, 3.5, got["lateFee"])

	rec = serve(router, http.MethodPut, "/mylibrary/rentals", `{
		"rentalId": 42,
		"userId": 2,
		"bookId": "32322",
		"issueTime": "2020-03-12T14:35:34Z",
		"returnDuration": 1
	}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(router, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRentalAPI_Listing(t *testing.T) {
	router := newSQLiteRouter(t)

	rec := serve(router, http.MethodGet, "/mylibrary/rentals?userId=7&bookId=X", "")
	require.Equal(t, http.StatusOK, rec.Code)
	empty := decodeBody(t, rec)
	assert.Empty(t, empty["_embedded"].(map[string]any)["rentals"])
	assert.Equal(t, float64(0), empty["page"].(map[string]any)["totalPages"])

	for i, rt := range []struct {
		userID int
		bookID string
	}{{7, "X"}, {7, "Y"}, {8, "X"}, {7, "X"}, {9, "Z"}} {
		body := fmt.Sprintf(`{"userId":%d,"bookId":%q,"issueTime":"2024-06-%02dT12:00:00Z","returnDuration":2}`, rt.userID, rt.bookID, i+1)
		rec := serve(router, http.MethodPost, "/mylibrary/rentals", body)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec = serve(router, http.MethodGet, "/mylibrary/rentals?userId=7&bookId=X", "")
	require.Equal(t, http.StatusOK, rec.Code)
	both := decodeBody(t, rec)
	rentals := both["_embedded"].(map[string]any)["rentals"].([]any)
	require.Len(t, rentals, 2)
	// issueTime descending by default
	assert.Equal(t, float64(4), rentals[0].(map[string]any)["rentalId"])
	assert.Equal(t, float64(1), rentals[1].(map[string]any)["rentalId"])

	rec = serve(router, http.MethodGet, "/mylibrary/rentals?size=2&sort=rentalId,asc", "")
	require.Equal(t, http.StatusOK, rec.Code)
	paged := decodeBody(t, rec)
	meta := paged["page"].(map[string]any)
	assert.Equal(t, float64(5), meta["totalElements"])
	assert.Equal(t, float64(3), meta["totalPages"])
	rentals = paged["_embedded"].(map[string]any)["rentals"].([]any)
	require.Len(t, rentals, 2)
	assert.Equal(t, float64(1), rentals[0].(map[string]any)["rentalId"])
	assert.Equal(t, float64(2), rentals[1].(map[string]any)["rentalId"])

	rec = serve(router, http.MethodGet, "/mylibrary/rentals?bookId=Z", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), decodeBody(t, rec)["page"].(map[string]any)["totalElements"])
}

func TestRentalAPI_EdgeInputs(t *testing.T) {
	router := newSQLiteRouter(t)

	rec := serve(router, http.MethodPost, "/mylibrary/rentals",
		`{"userId":2,"bookId":"32322","issueTime":"2020-03-12T14:35:34Z","returnDuration":1}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	t.Run("Huge Page", func(t *testing.T) {
		rec := serve(router, http.MethodGet, "/mylibrary/rentals?page=922337203685477580&size=20", "")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		body := decodeBody(t, rec)
		assert.Empty(t, body["_embedded"].(map[string]any)["rentals"])
		meta := body["page"].(map[string]any)
		assert.Equal(t, float64(1), meta["totalElements"])
		assert.NotContains(t, body["_links"], "next")
	})

	for _, field := range []string{"issueTime", "returnTime"} {
		t.Run("Empty "+field, func(t *testing.T) {
			body := `{"userId":2,"bookId":"x","issueTime":"2020-03-12T14:35:34Z","returnDuration":1}`
			body = body[:len(body)-1] + fmt.Sprintf(`,%q:""}`, field)
			rec := serve(router, http.MethodPost, "/mylibrary/rentals", body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			assert.Equal(t, contentTypeProblemJSON, rec.Header().Get("Content-Type"))
		})
	}

	rec = serve(router, http.MethodGet, "/mylibrary/rentals", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), decodeBody(t, rec)["page"].(map[string]any)["totalElements"])
}
