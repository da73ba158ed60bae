package analytics

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	httperr "github.com/salesboard-lab/project-salesboard/internal/core/errors"
	"github.com/stretchr/testify/require"
)

func analyticsRouter(t *testing.T) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewService(twoOrderStore(t)).RegisterRoutes(r)
	return r
}

func getJSON(t *testing.T, r *gin.Engine, url string, into interface{}) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, url, nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if into != nil {
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), into))
	}
	return resp.Code
}

func TestHandleRevenue_Ungrouped(t *testing.T) {
	r := analyticsRouter(t)

	var body map[string]string
	code := getJSON(t, r, "/v1/analytics/revenue?startDate=2024-01-01&endDate=2024-02-28", &body)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "25.00", body["totalRevenue"])
}

func TestHandleRevenue_Grouped(t *testing.T) {
	r := analyticsRouter(t)

	var body []map[string]string
	code := getJSON(t, r, "/v1/analytics/revenue?startDate=2024-01-01&endDate=2024-02-28&groupBy=region", &body)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, body, 2)
	require.Equal(t, "North", body[0]["name"])
	require.Equal(t, "South", body[1]["name"])
}

func TestHandleRevenue_UnknownGroupByRejected(t *testing.T) {
	r := analyticsRouter(t)

	var errResp httperr.ErrorResponse
	code := getJSON(t, r, "/v1/analytics/revenue?startDate=2024-01-01&endDate=2024-02-28&groupBy=customer", &errResp)
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, httperr.HttpInvalidRequestError, errResp.ErrorType)
}

func TestHandleRevenue_MissingDatesRejected(t *testing.T) {
	r := analyticsRouter(t)

	code := getJSON(t, r, "/v1/analytics/revenue", nil)
	require.Equal(t, http.StatusBadRequest, code)
}

func TestHandleRevenue_InvalidRange(t *testing.T) {
	r := analyticsRouter(t)

	var errResp httperr.ErrorResponse
	code := getJSON(t, r, "/v1/analytics/revenue?startDate=2024-02-01&endDate=2024-01-01", &errResp)
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, httperr.HttpInvalidRangeError, errResp.ErrorType)
}

func TestHandleTopProducts_ReturnsOrderedRows(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewService(topProductsStore(t)).RegisterRoutes(r)

	var body []map[string]interface{}
	code := getJSON(t, r, "/v1/analytics/top-products?startDate=2024-01-01&endDate=2024-01-31&limit=2", &body)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, body, 2)
	require.Equal(t, "B", body[0]["name"])
	require.EqualValues(t, 9, body[0]["totalQuantity"])
}

func TestHandleTopProducts_EmptyRangeIsEmptyList(t *testing.T) {
	r := analyticsRouter(t)

	var body []map[string]interface{}
	code := getJSON(t, r, "/v1/analytics/top-products?startDate=2030-01-01&endDate=2030-12-31", &body)
	require.Equal(t, http.StatusOK, code)
	require.NotNil(t, body)
	require.Empty(t, body)
}

func TestHandleCustomerAnalysis(t *testing.T) {
	r := analyticsRouter(t)

	var body map[string]interface{}
	code := getJSON(t, r, "/v1/analytics/customer-analysis?startDate=2024-01-01&endDate=2024-02-28", &body)
	require.Equal(t, http.StatusOK, code)
	require.EqualValues(t, 2, body["totalCustomers"])
	require.EqualValues(t, 2, body["totalOrders"])
	require.Equal(t, "12.5", body["avgOrderValue"])
}
