package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nikbrunner/tcm/internal/api"
	"github.com/nikbrunner/tcm/internal/api/apitest"
	"github.com/nikbrunner/tcm/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededServer(t *testing.T) (*apitest.Server, *api.Client) {
	t.Helper()
	srv := apitest.NewServer(t)
	srv.Seed("auth/login.json",
		model.TestCase{ID: "tc_login", Title: "Login works", Author: "qa", Tags: []string{"auth"},
			Actions: []model.Step{{Step: "A", ExpectedRes: "a"}, {Step: "B", ExpectedRes: "b"}, {Step: "C", ExpectedRes: "c"}}},
		model.TestCase{ID: "tc_logout", Title: "Logout", Author: "qa"},
	)
	srv.Seed("cart.json", model.TestCase{ID: "tc_cart", Title: "Cart total", Author: "dev", Tags: []string{"LOGIN-flow"}})

	client, err := api.NewClient(srv.URL)
	require.NoError(t, err)
	return srv, client
}

func TestNewClient(t *testing.T) {
	t.Run("rejects empty URL", func(t *testing.T) {
		_, err := api.NewClient("  ")
		assert.ErrorIs(t, err, api.ErrNoBaseURL)
	})

	t.Run("trims trailing slash", func(t *testing.T) {
		c, err := api.NewClient("http://localhost:5001/", api.WithTimeout(time.Second))
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:5001", c.BaseURL())
	})
}

func TestClient_List(t *testing.T) {
	_, client := seededServer(t)

	snap, err := client.List(context.Background())
	require.NoError(t, err)

	assert.Len(t, snap.Entries, 3)
	assert.Empty(t, snap.Problems())

	auth, ok := snap.Structure["auth"]
	require.True(t, ok)
	assert.True(t, auth.IsFolder())
	assert.Equal(t, []string{"tc_login", "tc_logout"}, auth.Children["login.json"].TestCases)
}

func TestClient_Search(t *testing.T) {
	_, client := seededServer(t)

	results, err := client.Search(context.Background(), "login")
	require.NoError(t, err)
	assert.Len(t, results, 2) // title match + tag match

	empty, err := client.Search(context.Background(), "")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestClient_Get(t *testing.T) {
	_, client := seededServer(t)

	entry, err := client.Get(context.Background(), "tc_cart")
	require.NoError(t, err)
	assert.Equal(t, "cart.json", entry.FilePath)
	assert.Equal(t, "Cart total", entry.TestCase.Title)

	_, err = client.Get(context.Background(), "nope")
	var se *api.ServerError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusNotFound, se.StatusCode)
}

func TestClient_CreateRoundTrip(t *testing.T) {
	_, client := seededServer(t)
	ctx := context.Background()

	created, err := client.Create(ctx, model.TestCase{
		ID:      "ignored",
		Title:   "Checkout",
		Author:  "qa",
		Actions: []model.Step{{Step: "pay", ExpectedRes: "paid"}, {Step: "receipt", ExpectedRes: "shown"}},
	})
	require.NoError(t, err)
	assert.NotEqual(t, "ignored", created.ID)
	assert.Equal(t, model.StatusDraft, created.Status)

	snap, err := client.List(ctx)
	require.NoError(t, err)
	entry := snap.EntryByID(created.ID)
	require.NotNil(t, entry)
	assert.Equal(t, "Checkout", entry.TestCase.Title)
	assert.Equal(t, "qa", entry.TestCase.Author)
	assert.Equal(t, created.Actions, entry.TestCase.Actions)
	assert.Equal(t, apitest.DefaultFile, entry.FilePath)
}

func TestClient_CreateIn(t *testing.T) {
	srv, client := seededServer(t)

	created, err := client.CreateIn(context.Background(), model.TestCase{Title: "Refund", Author: "qa"}, "payments/refunds")
	require.NoError(t, err)

	_, file, ok := srv.TestCase(created.ID)
	require.True(t, ok)
	assert.Equal(t, "payments/refunds.json", file)
}

func TestClient_Update(t *testing.T) {
	srv, client := seededServer(t)

	updated, err := client.Update(context.Background(), "tc_logout", model.TestCase{Title: "Logout v2", Author: "qa"})
	require.NoError(t, err)
	assert.Equal(t, "tc_logout", updated.ID)

	stored, _, ok := srv.TestCase("tc_logout")
	require.True(t, ok)
	assert.Equal(t, "Logout v2", stored.Title)
}

func TestClient_Delete(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		srv, client := seededServer(t)
		require.NoError(t, client.Delete(context.Background(), "tc_cart"))
		_, _, ok := srv.TestCase("tc_cart")
		assert.False(t, ok)
	})

	t.Run("server error message is verbatim", func(t *testing.T) {
		srv, client := seededServer(t)
		srv.Fail(http.MethodDelete, "/api/test-case/{id}", http.StatusNotFound, "not found")

		err := client.Delete(context.Background(), "tc_cart")
		require.Error(t, err)
		assert.Equal(t, "not found", err.Error())
		assert.True(t, api.IsServerError(err))
		assert.False(t, api.IsNetworkError(err))
	})
}

func TestClient_Duplicate(t *testing.T) {
	_, client := seededServer(t)

	dup, err := client.Duplicate(context.Background(), "tc_login")
	require.NoError(t, err)
	assert.NotEqual(t, "tc_login", dup.ID)
	assert.Equal(t, "Login works (copy)", dup.Title)
}

func TestClient_Move(t *testing.T) {
	srv, client := seededServer(t)

	require.NoError(t, client.Move(context.Background(), "tc_cart", "auth/test_cases.json"))

	_, file, ok := srv.TestCase("tc_cart")
	require.True(t, ok)
	assert.Equal(t, "auth/test_cases.json", file)
}

func TestClient_ReorderSteps(t *testing.T) {
	_, client := seededServer(t)

	steps := []model.Step{{Step: "C", ExpectedRes: "c"}, {Step: "A", ExpectedRes: "a"}, {Step: "B", ExpectedRes: "b"}}
	tc, err := client.ReorderSteps(context.Background(), "tc_login", steps)
	require.NoError(t, err)
	assert.Equal(t, steps, tc.Actions)
}

func TestClient_CreateDirectory(t *testing.T) {
	_, client := seededServer(t)
	ctx := context.Background()

	require.NoError(t, client.CreateDirectory(ctx, "payments"))

	err := client.CreateDirectory(ctx, "payments")
	require.Error(t, err)
	assert.Equal(t, "directory already exists", err.Error())

	snap, err := client.List(ctx)
	require.NoError(t, err)
	assert.True(t, snap.Structure["payments"].IsFolder())
}

func TestClient_SendsRequestHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/test-case/tc%201/move", r.URL.EscapedPath())
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "a/b.json", body["file_path"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success": true}`))
	}))
	defer server.Close()

	client, err := api.NewClient(server.URL)
	require.NoError(t, err)
	require.NoError(t, client.Move(context.Background(), "tc 1", "a/b.json"))
}

func TestClient_Errors(t *testing.T) {
	t.Run("non-JSON error status is a server error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte("<html>bad gateway</html>"))
		}))
		defer server.Close()

		client, _ := api.NewClient(server.URL)
		_, err := client.List(context.Background())

		var se *api.ServerError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, http.StatusBadGateway, se.StatusCode)
	})

	t.Run("garbage body on 200 is a network error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("not json"))
		}))
		defer server.Close()

		client, _ := api.NewClient(server.URL)
		_, err := client.List(context.Background())
		assert.True(t, api.IsNetworkError(err))
	})

	t.Run("success false on 200 is a server error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"success": false, "error": "disk full"}`))
		}))
		defer server.Close()

		client, _ := api.NewClient(server.URL)
		_, err := client.Duplicate(context.Background(), "tc_1")
		require.Error(t, err)
		assert.Equal(t, "disk full", err.Error())
	})

	t.Run("unreachable server is a network error", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		url := server.URL
		server.Close()

		client, _ := api.NewClient(url)
		err := client.Delete(context.Background(), "tc_1")

		var ne *api.NetworkError
		require.ErrorAs(t, err, &ne)
		assert.Contains(t, err.Error(), "network error")
	})

	t.Run("cancelled context is a network error", func(t *testing.T) {
		_, client := seededServer(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := client.List(ctx)
		assert.True(t, api.IsNetworkError(err))
		assert.True(t, errors.Is(err, context.Canceled))
	})
}
