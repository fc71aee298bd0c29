package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pcfg "github.com/ling0322/pcfgparser"
)

func setupTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	grammar, err := pcfg.LoadGrammar("../../testdata/toy.grammar")
	require.NoError(t, err)
	return New(pcfg.NewParser(grammar), nil)
}

func post(router *gin.Engine, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/parse", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	router := setupTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "cky", body["algorithm"])
	assert.EqualValues(t, 10, body["nonterminals"])
}

func TestParseHandler(t *testing.T) {
	router := setupTestRouter(t)

	for _, algorithm := range []string{"", "cky", "earley"} {
		t.Run("algorithm "+algorithm, func(t *testing.T) {
			body, _ := json.Marshal(ParseRequest{Sentence: "the man saw a dog", Algorithm: algorithm})
			w := post(router, string(body), nil)
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())

			var resp struct {
				Tree        json.RawMessage `json:"tree"`
				Probability float64         `json:"probability"`
				Algorithm   string          `json:"algorithm"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.JSONEq(t, `["S",["NP",["DT","the"],["NN","man"]],`+
				`["VP",["V","saw"],["NP",["DT","a"],["NN","dog"]]]]`, string(resp.Tree))
			assert.Greater(t, resp.Probability, 0.0)
			if algorithm == "" {
				assert.Equal(t, "cky", resp.Algorithm)
			} else {
				assert.Equal(t, algorithm, resp.Algorithm)
			}
		})
	}
}

func TestParseHandlerErrors(t *testing.T) {
	router := setupTestRouter(t)

	tests := []struct {
		name           string
		body           string
		expectedStatus int
		expectedCode   ErrorCode
	}{
		{"invalid json", `{"sentence":`, http.StatusBadRequest, ErrorCodeInvalidJSON},
		{"empty sentence", `{"sentence":"  "}`, http.StatusBadRequest, ErrorCodeInvalidRequest},
		{"unknown algorithm", `{"sentence":"the dog","algorithm":"lr"}`, http.StatusBadRequest, ErrorCodeInvalidRequest},
		{"no cky parse", `{"sentence":"dog the"}`, http.StatusUnprocessableEntity, ErrorCodeParseFailure},
		{"no earley parse", `{"sentence":"saw the dog","algorithm":"earley"}`, http.StatusUnprocessableEntity, ErrorCodeParseFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := post(router, tt.body, map[string]string{"X-Request-ID": "req-42"})
			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, "req-42", w.Header().Get("X-Request-ID"))

			var apiErr APIError
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &apiErr))
			assert.Equal(t, tt.expectedCode, apiErr.Code)
			assert.Equal(t, "req-42", apiErr.RequestID)
			assert.NotEmpty(t, apiErr.Message)
		})
	}
}

func TestParseHandlerReportsPosition(t *testing.T) {
	router := setupTestRouter(t)

	// Earley stops at "saw", the first token no state accepts
	w := post(router, `{"sentence":"saw the dog","algorithm":"earley"}`, nil)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var apiErr APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &apiErr))
	require.NotNil(t, apiErr.Position)
	assert.Equal(t, 0, *apiErr.Position)

	// CKY accepts a verb phrase as the root of "saw the dog", and fills the
	// whole table before failing, so there is no position
	w = post(router, `{"sentence":"saw the dog"}`, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = post(router, `{"sentence":"dog the"}`, nil)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	apiErr = APIError{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &apiErr))
	assert.Nil(t, apiErr.Position)
}
