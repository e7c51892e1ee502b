package controller

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cartOf(resp map[string]interface{}) map[string]interface{} {
	return resp["cart"].(map[string]interface{})
}

func (env *testEnv) addToCart(t *testing.T, body gin.H) map[string]interface{} {
	t.Helper()
	w, resp := env.do(t, request{method: http.MethodPost, path: "/cart", body: body, shopper: testShopper})
	require.Equal(t, http.StatusOK, w.Code)
	return cartOf(resp)
}

func TestCartController_RequiresShopper(t *testing.T) {
	env := setupControllerTest(t)

	w, resp := env.do(t, request{method: http.MethodGet, path: "/cart"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_INVALID_ID", resp["error"])

	w, _ = env.do(t, request{method: http.MethodGet, path: "/cart", shopper: "not-a-uuid"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCartController_GetCart_Empty(t *testing.T) {
	env := setupControllerTest(t)

	w, resp := env.do(t, request{method: http.MethodGet, path: "/cart", shopper: testShopper})

	require.Equal(t, http.StatusOK, w.Code)
	cart := cartOf(resp)
	assert.Equal(t, float64(0), cart["quantity"])
	assert.Equal(t, float64(0), cart["total"])
}

func TestCartController_AddToCart_MergesVariants(t *testing.T) {
	env := setupControllerTest(t)

	env.addToCart(t, gin.H{"product_id": "P1", "quantity": 1, "selected_color": "Black", "selected_size": "S"})
	env.addToCart(t, gin.H{"product_id": "P1", "quantity": 2, "selected_color": "Black", "selected_size": "S"})
	cart := env.addToCart(t, gin.H{"product_id": "P1", "selected_color": "Black", "selected_size": "M"})

	items := cart["items"].([]interface{})
	require.Len(t, items, 2)
	assert.Equal(t, float64(3), items[0].(map[string]interface{})["quantity"])
	assert.Equal(t, float64(1), items[1].(map[string]interface{})["quantity"])
	assert.Equal(t, float64(4), cart["quantity"])
	assert.Equal(t, float64(4000), cart["total"])
}

func TestCartController_AddToCart_Errors(t *testing.T) {
	env := setupControllerTest(t)

	tests := []struct {
		name       string
		body       gin.H
		wantStatus int
		wantCode   string
	}{
		{"unknown product", gin.H{"product_id": "NOPE"}, http.StatusNotFound, "PRODUCT_NOT_FOUND"},
		{"missing product", gin.H{"quantity": 1}, http.StatusBadRequest, "VALIDATION_INVALID_INPUT"},
		{"negative quantity", gin.H{"product_id": "P1", "quantity": -1}, http.StatusBadRequest, "VALIDATION_INVALID_INPUT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, resp := env.do(t, request{method: http.MethodPost, path: "/cart", body: tt.body, shopper: testShopper})
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantCode, resp["error"])
		})
	}
}

func TestCartController_AddToCart_ListsInvalidFields(t *testing.T) {
	env := setupControllerTest(t)

	w, resp := env.do(t, request{method: http.MethodPost, path: "/cart", body: gin.H{"quantity": -2}, shopper: testShopper})
	require.Equal(t, http.StatusBadRequest, w.Code)
	fields, ok := resp["fields"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "is required", fields["ProductID"])
	assert.Equal(t, "must be greater than 0", fields["Quantity"])
}

func TestCartController_UpdateAndRemoveLines(t *testing.T) {
	env := setupControllerTest(t)
	env.addToCart(t, gin.H{"product_id": "P1", "selected_color": "Black", "selected_size": "S"})
	env.addToCart(t, gin.H{"product_id": "P1", "selected_color": "Black", "selected_size": "M"})
	env.addToCart(t, gin.H{"product_id": "P2"})

	line := gin.H{"product_id": "P1", "selected_color": "Black", "selected_size": "S", "quantity": 5}
	w, resp := env.do(t, request{method: http.MethodPut, path: "/cart/lines", body: line, shopper: testShopper})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(7), cartOf(resp)["quantity"])

	w, resp = env.do(t, request{method: http.MethodDelete, path: "/cart/lines", body: line, shopper: testShopper})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, cartOf(resp)["items"], 2)

	w, resp = env.do(t, request{method: http.MethodDelete, path: "/cart/products/P1", shopper: testShopper})
	require.Equal(t, http.StatusOK, w.Code)
	items := cartOf(resp)["items"].([]interface{})
	require.Len(t, items, 1)
	assert.Equal(t, "P2", items[0].(map[string]interface{})["id"])

	w, _ = env.do(t, request{method: http.MethodDelete, path: "/cart", shopper: testShopper})
	require.Equal(t, http.StatusOK, w.Code)

	_, resp = env.do(t, request{method: http.MethodGet, path: "/cart", shopper: testShopper})
	assert.Equal(t, float64(0), cartOf(resp)["quantity"])
}

func TestCartController_PersistFailureWarns(t *testing.T) {
	env := setupControllerTest(t)
	env.store.failing.Store(true)

	w, resp := env.do(t, request{method: http.MethodPost, path: "/cart", body: gin.H{"product_id": "P2"}, shopper: testShopper})

	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, resp["warning"])
	assert.Equal(t, float64(1), cartOf(resp)["quantity"])
}

func TestCartController_ShoppersAreIsolated(t *testing.T) {
	env := setupControllerTest(t)
	env.addToCart(t, gin.H{"product_id": "P2"})

	other := "8d3e9f10-2b7c-4a65-b1d2-0c9e8f7a6b54"
	_, resp := env.do(t, request{method: http.MethodGet, path: "/cart", shopper: other})
	assert.Equal(t, float64(0), cartOf(resp)["quantity"])
}
