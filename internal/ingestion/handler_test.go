package ingestion

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	httperr "github.com/salesboard-lab/project-salesboard/internal/core/errors"
	"github.com/salesboard-lab/project-salesboard/internal/core/storage"
	"github.com/stretchr/testify/require"
)

func multipartCSV(t *testing.T, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("file", "sales.csv")
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func uploadRouter(store *storage.MemoryStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewService(store, 1, ModeAtomic).RegisterRoutes(r)
	return r
}

func TestUploadHandler_Success(t *testing.T) {
	store := storage.NewMemoryStore()
	r := uploadRouter(store)

	body, contentType := multipartCSV(t, csvHeader+"\n"+
		"1001,P1,C1,Widget,Gadgets,North,2024-01-05,2,10.00,0.00,1.50,Credit Card,Alice,alice@example.com,1 Main St\n")

	req := httptest.NewRequest(http.MethodPost, "/v1/sales/upload", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	require.Equal(t, http.StatusCreated, resp.Code)

	var result map[string]interface{}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &result))
	require.Equal(t, "Data loaded successfully", result["message"])
	require.EqualValues(t, 1, result["records"])
	require.Equal(t, 1, store.Count().Orders)
}

func TestUploadHandler_MissingFile(t *testing.T) {
	r := uploadRouter(storage.NewMemoryStore())

	req := httptest.NewRequest(http.MethodPost, "/v1/sales/upload", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	require.Equal(t, http.StatusBadRequest, resp.Code)

	var errResp httperr.ErrorResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &errResp))
	require.Equal(t, httperr.HttpInvalidRequestError, errResp.ErrorType)
}

func TestUploadHandler_InvalidMode(t *testing.T) {
	r := uploadRouter(storage.NewMemoryStore())

	body, contentType := multipartCSV(t, csvHeader+"\n")
	req := httptest.NewRequest(http.MethodPost, "/v1/sales/upload?mode=yolo", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	require.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestUploadHandler_FieldParseErrorIdentifiesField(t *testing.T) {
	store := storage.NewMemoryStore()
	r := uploadRouter(store)

	body, contentType := multipartCSV(t, csvHeader+"\n"+
		"1001,P1,C1,Widget,Gadgets,North,2024-01-05,not-a-number,10.00,0.00,1.50,Credit Card,Alice,alice@example.com,1 Main St\n")

	req := httptest.NewRequest(http.MethodPost, "/v1/sales/upload", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	require.Equal(t, http.StatusBadRequest, resp.Code)

	var errResp httperr.ErrorResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &errResp))
	require.Equal(t, httperr.HttpParseError, errResp.ErrorType)

	details := errResp.Details.(map[string]interface{})
	require.Equal(t, "QuantitySold", details["field"])
	require.EqualValues(t, 1, details["row"])

	// Batch aborted: nothing committed.
	require.Equal(t, 0, store.Count().Orders)
}

func TestUploadHandler_MissingHeaderColumn(t *testing.T) {
	r := uploadRouter(storage.NewMemoryStore())

	body, contentType := multipartCSV(t, "OrderID,ProductID\n1001,P1\n")
	req := httptest.NewRequest(http.MethodPost, "/v1/sales/upload", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	require.Equal(t, http.StatusBadRequest, resp.Code)
}
