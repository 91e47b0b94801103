package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hesham-Youssef/StockManager/internal/api/handlers"
	"github.com/Hesham-Youssef/StockManager/internal/api/middleware"
	"github.com/Hesham-Youssef/StockManager/internal/api/routes"
	"github.com/Hesham-Youssef/StockManager/internal/infra/database/memory"
	"github.com/Hesham-Youssef/StockManager/internal/notify"
	authservice "github.com/Hesham-Youssef/StockManager/internal/service/auth"
	exchangeservice "github.com/Hesham-Youssef/StockManager/internal/service/exchange"
	stockservice "github.com/Hesham-Youssef/StockManager/internal/service/stock"
)

type testAPI struct {
	router *mux.Router
	store  *memory.Store
	token  string
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	store := memory.NewStore()
	stockSvc := stockservice.NewService(store, 10)
	exchangeSvc := exchangeservice.NewService(store, 10)
	authSvc := authservice.NewService(store, "test-secret", time.Hour, false)

	router := mux.NewRouter()
	router.Use(middleware.RequestID)
	routes.RegisterAuthRoutes(router, handlers.NewAuthHandler(authSvc))
	routes.RegisterStocksRoutes(router, handlers.NewStocksHandler(stockSvc, notify.Discard{}), authSvc)
	routes.RegisterExchangesRoutes(router, handlers.NewExchangesHandler(exchangeSvc, notify.Discard{}), authSvc)

	api := &testAPI{router: router, store: store}
	api.do(t, "POST", "/api/auth/register", "", map[string]string{"username": "tester", "password": "secret"})
	resp := api.do(t, "POST", "/api/auth/login", "", map[string]string{"username": "tester", "password": "secret"})
	var body map[string]string
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	api.token = body["token"]
	require.NotEmpty(t, api.token)
	return api
}

func (a *testAPI) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestStocksAPI(t *testing.T) {
	api := newTestAPI(t)

	var stockID float64
	t.Run("create", func(t *testing.T) {
		rec := api.do(t, "POST", "/api/stocks", api.token, map[string]interface{}{
			"name":         "Samsung Electronics",
			"description":  "KRX listed",
			"currentPrice": "70000",
		})
		require.Equal(t, http.StatusCreated, rec.Code)

		body := decode(t, rec)
		assert.Equal(t, "Samsung Electronics", body["name"])
		assert.NotZero(t, body["id"])
		assert.NotContains(t, body, "version")
		stockID = body["id"].(float64)
	})

	t.Run("create requires a token", func(t *testing.T) {
		rec := api.do(t, "POST", "/api/stocks", "", map[string]interface{}{"name": "X", "currentPrice": "1"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("create rejects a non-positive price", func(t *testing.T) {
		rec := api.do(t, "POST", "/api/stocks", api.token, map[string]interface{}{"name": "Zero", "currentPrice": "0"})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		body := decode(t, rec)
		assert.Equal(t, "Validation Error", body["error"])
		assert.Equal(t, "/api/stocks", body["path"])
	})

	t.Run("get and list are public", func(t *testing.T) {
		rec := api.do(t, "GET", fmt.Sprintf("/api/stocks/%.0f", stockID), "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Samsung Electronics", decode(t, rec)["name"])

		rec = api.do(t, "GET", "/api/stocks", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("unknown stock yields the error shape", func(t *testing.T) {
		rec := api.do(t, "GET", "/api/stocks/9999", "", nil)
		require.Equal(t, http.StatusNotFound, rec.Code)
		body := decode(t, rec)
		assert.Equal(t, "Not Found", body["error"])
		assert.Equal(t, float64(http.StatusNotFound), body["status"])
		assert.Equal(t, "/api/stocks/9999", body["path"])
		assert.NotEmpty(t, body["timestamp"])
	})

	t.Run("price update grows the ledger", func(t *testing.T) {
		rec := api.do(t, "PUT", fmt.Sprintf("/api/stocks/%.0f/price", stockID), api.token,
			map[string]interface{}{"currentPrice": "71000"})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "71000", decode(t, rec)["currentPrice"])

		rec = api.do(t, "GET", fmt.Sprintf("/api/stocks/%.0f/history", stockID), "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var entries []map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
		require.Len(t, entries, 2)
		assert.Equal(t, "70000", entries[0]["price"])
		assert.Equal(t, "71000", entries[1]["price"])

		rec = api.do(t, "GET", fmt.Sprintf("/api/stocks/%.0f/history?order=desc", stockID), "", nil)
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
		assert.Equal(t, "71000", entries[0]["price"])
	})

	t.Run("delete", func(t *testing.T) {
		rec := api.do(t, "DELETE", fmt.Sprintf("/api/stocks/%.0f", stockID), api.token, nil)
		require.Equal(t, http.StatusNoContent, rec.Code)

		rec = api.do(t, "GET", fmt.Sprintf("/api/stocks/%.0f", stockID), "", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("non-numeric id", func(t *testing.T) {
		rec := api.do(t, "GET", "/api/stocks/abc", "", nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Validation Error", decode(t, rec)["error"])
	})
}

func TestExchangesAPI(t *testing.T) {
	api := newTestAPI(t)

	createStock := func(t *testing.T, name string) float64 {
		rec := api.do(t, "POST", "/api/stocks", api.token, map[string]interface{}{"name": name, "currentPrice": "10"})
		require.Equal(t, http.StatusCreated, rec.Code)
		return decode(t, rec)["id"].(float64)
	}

	var exchangeID float64
	t.Run("create", func(t *testing.T) {
		rec := api.do(t, "POST", "/api/exchanges", api.token, map[string]interface{}{
			"name": "KOSPI", "description": "Korea Exchange",
		})
		require.Equal(t, http.StatusCreated, rec.Code)
		body := decode(t, rec)
		assert.Equal(t, false, body["liveInMarket"])
		exchangeID = body["id"].(float64)
	})

	t.Run("create live is a rule violation", func(t *testing.T) {
		rec := api.do(t, "POST", "/api/exchanges", api.token, map[string]interface{}{
			"name": "NASDAQ", "liveInMarket": true,
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		body := decode(t, rec)
		assert.Equal(t, "Business Rule Violation", body["error"])
		assert.Equal(t, "Exchange must have at least 10 stocks to be live", body["message"])
	})

	stockID := createStock(t, "Member Stock")

	t.Run("add stock", func(t *testing.T) {
		rec := api.do(t, "POST", fmt.Sprintf("/api/exchanges/%.0f/stocks", exchangeID), api.token,
			map[string]interface{}{"stockId": stockID})
		require.Equal(t, http.StatusOK, rec.Code)
		body := decode(t, rec)
		members := body["stockIds"].([]interface{})
		require.Len(t, members, 1)
		assert.Equal(t, stockID, members[0])
	})

	t.Run("duplicate member is a conflict", func(t *testing.T) {
		rec := api.do(t, "POST", fmt.Sprintf("/api/exchanges/%.0f/stocks", exchangeID), api.token,
			map[string]interface{}{"stockId": stockID})
		require.Equal(t, http.StatusConflict, rec.Code)
		body := decode(t, rec)
		assert.Equal(t, "Conflict", body["error"])
		assert.Equal(t, "Stock already exists in this exchange", body["message"])
	})

	t.Run("unknown stock is a rule violation", func(t *testing.T) {
		rec := api.do(t, "POST", fmt.Sprintf("/api/exchanges/%.0f/stocks", exchangeID), api.token,
			map[string]interface{}{"stockId": 9999})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		body := decode(t, rec)
		assert.Equal(t, "Business Rule Violation", body["error"])
		assert.Equal(t, "Stock not found", body["message"])
	})

	t.Run("unknown exchange is a rule violation", func(t *testing.T) {
		rec := api.do(t, "POST", "/api/exchanges/9999/stocks", api.token,
			map[string]interface{}{"stockId": stockID})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Exchange not found", decode(t, rec)["message"])
	})

	t.Run("remove unlinked stock", func(t *testing.T) {
		other := createStock(t, "Unlinked Stock")
		rec := api.do(t, "DELETE", fmt.Sprintf("/api/exchanges/%.0f/stocks/%.0f", exchangeID, other), api.token, nil)
		require.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Stock not linked to exchange", decode(t, rec)["message"])
	})

	t.Run("remove stock", func(t *testing.T) {
		rec := api.do(t, "DELETE", fmt.Sprintf("/api/exchanges/%.0f/stocks/%.0f", exchangeID, stockID), api.token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, decode(t, rec)["stockIds"])
	})

	t.Run("partial update", func(t *testing.T) {
		rec := api.do(t, "PUT", fmt.Sprintf("/api/exchanges/%.0f", exchangeID), api.token,
			map[string]interface{}{"description": "renamed"})
		require.Equal(t, http.StatusOK, rec.Code)
		body := decode(t, rec)
		assert.Equal(t, "KOSPI", body["name"])
		assert.Equal(t, "renamed", body["description"])
	})

	t.Run("delete", func(t *testing.T) {
		rec := api.do(t, "DELETE", fmt.Sprintf("/api/exchanges/%.0f", exchangeID), api.token, nil)
		require.Equal(t, http.StatusNoContent, rec.Code)

		rec = api.do(t, "GET", fmt.Sprintf("/api/exchanges/%.0f", exchangeID), "", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestAuthAPI(t *testing.T) {
	api := newTestAPI(t)

	t.Run("register", func(t *testing.T) {
		rec := api.do(t, "POST", "/api/auth/register", "", map[string]string{"username": "alice", "password": "pw"})
		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "User created", decode(t, rec)["message"])
	})

	t.Run("duplicate username", func(t *testing.T) {
		rec := api.do(t, "POST", "/api/auth/register", "", map[string]string{"username": "alice", "password": "pw"})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		body := decode(t, rec)
		assert.Equal(t, "Validation Error", body["error"])
		assert.Equal(t, "Username taken", body["message"])
	})

	t.Run("login with wrong password", func(t *testing.T) {
		rec := api.do(t, "POST", "/api/auth/login", "", map[string]string{"username": "alice", "password": "nope"})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Unauthorized", decode(t, rec)["error"])
	})

	t.Run("mutation with a garbage token", func(t *testing.T) {
		rec := api.do(t, "POST", "/api/stocks", "garbage", map[string]interface{}{"name": "Y", "currentPrice": "1"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
