package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erp/stockcore/internal/interfaces/http/dto"
	"github.com/erp/stockcore/internal/interfaces/http/middleware"
)

// Envelope is the response wrapper with a typed data payload.
type Envelope[T any] struct {
	Success bool           `json:"success"`
	Data    T              `json:"data"`
	Error   *dto.ErrorInfo `json:"error"`
	Meta    *dto.Meta      `json:"meta"`
}

// APIClient sends requests straight into a gin engine.
type APIClient struct {
	T      *testing.T
	Engine *gin.Engine
	// Prefix is prepended to every path, e.g. /api/v1
	Prefix string
	// Actor is sent as X-User-ID when a request asks for it
	Actor uuid.UUID
}

// NewAPIClient creates a client acting as TestUserID.
func NewAPIClient(t *testing.T, engine *gin.Engine, prefix string) *APIClient {
	return &APIClient{T: t, Engine: engine, Prefix: prefix, Actor: TestUserID()}
}

// Send performs a request. body is encoded as JSON when not nil.
func (c *APIClient) Send(method, path string, body any, withActor bool) *httptest.ResponseRecorder {
	c.T.Helper()

	var reader io.Reader = http.NoBody
	if body != nil {
		reader = toJSONReader(c.T, body)
	}
	req := httptest.NewRequest(method, c.Prefix+path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if withActor {
		req.Header.Set(middleware.HeaderUserID, c.Actor.String())
	}

	w := httptest.NewRecorder()
	c.Engine.ServeHTTP(w, req)
	return w
}

// APICase is one request and the status and error code it must produce.
// An empty ErrorCode means the call must succeed.
type APICase struct {
	Name           string
	Method         string
	Path           string
	Body           any
	WithActor      bool
	ExpectedStatus int
	ErrorCode      string
	Validate       func(t *testing.T, w *httptest.ResponseRecorder)
}

// RunAPICases runs each case as a subtest.
func (c *APIClient) RunAPICases(cases []APICase) {
	c.T.Helper()

	parent := c.T
	for _, tc := range cases {
		parent.Run(tc.Name, func(t *testing.T) {
			c.T = t
			defer func() { c.T = parent }()

			method := tc.Method
			if method == "" {
				method = http.MethodGet
			}
			w := c.Send(method, tc.Path, tc.Body, tc.WithActor)
			if tc.ErrorCode != "" {
				ExpectErrorCode(t, w, tc.ExpectedStatus, tc.ErrorCode)
			} else if tc.ExpectedStatus != 0 {
				assert.Equal(t, tc.ExpectedStatus, w.Code, w.Body.String())
			}
			if tc.Validate != nil {
				tc.Validate(t, w)
			}
		})
	}
}

// DecodeEnvelope parses the response body.
func DecodeEnvelope[T any](t *testing.T, w *httptest.ResponseRecorder) Envelope[T] {
	t.Helper()

	var env Envelope[T]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

// ExpectData checks the status and returns the decoded data payload.
func ExpectData[T any](t *testing.T, w *httptest.ResponseRecorder, status int) T {
	t.Helper()

	require.Equal(t, status, w.Code, w.Body.String())
	env := DecodeEnvelope[T](t, w)
	assert.True(t, env.Success, "Expected success to be true")
	return env.Data
}

// ExpectErrorCode checks the status and the envelope's error code.
func ExpectErrorCode(t *testing.T, w *httptest.ResponseRecorder, status int, code string) *dto.ErrorInfo {
	t.Helper()

	require.Equal(t, status, w.Code, w.Body.String())
	env := DecodeEnvelope[any](t, w)
	assert.False(t, env.Success, "Expected success to be false")
	require.NotNil(t, env.Error, "Expected error object in response")
	assert.Equal(t, code, env.Error.Code, "Unexpected error code")
	return env.Error
}

// toJSONReader encodes v as a JSON body.
func toJSONReader(t *testing.T, v any) io.Reader {
	t.Helper()

	data, err := json.Marshal(v)
	require.NoError(t, err, "Failed to marshal to JSON")
	return bytes.NewReader(data)
}
