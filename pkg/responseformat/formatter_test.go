package responseformat

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

type payload struct {
	LocationName string `json:"location_name"`
	Layers       int    `json:"layers"`
}

func TestWriteResponse(t *testing.T) {
	f := NewFormatter()

	t.Run("json by default", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/profiles", nil)
		require.NoError(t, f.WriteResponse(rec, req, http.StatusOK, payload{"Col de Porte", 3}))
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.JSONEq(t, `{"location_name":"Col de Porte","layers":3}`, rec.Body.String())
	})

	t.Run("msgpack uses json names", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/profiles?format=msgpack", nil)
		require.NoError(t, f.WriteResponse(rec, req, http.StatusCreated, payload{"Col de Porte", 3}))
		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "application/x-msgpack", rec.Header().Get("Content-Type"))

		var got map[string]any
		require.NoError(t, msgpack.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, "Col de Porte", got["location_name"])
	})
}

func TestWriteRawJSON(t *testing.T) {
	f := NewFormatter()
	raw := []byte(`{"id":"pit","layers":[1,2]}`)

	rec := httptest.NewRecorder()
	require.NoError(t, f.WriteRawJSON(rec, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusOK, raw))
	assert.Equal(t, string(raw), rec.Body.String())

	rec = httptest.NewRecorder()
	require.NoError(t, f.WriteRawJSON(rec, httptest.NewRequest(http.MethodGet, "/?format=msgpack", nil), http.StatusOK, raw))
	var got map[string]any
	require.NoError(t, msgpack.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "pit", got["id"])

	rec = httptest.NewRecorder()
	assert.Error(t, f.WriteRawJSON(rec, httptest.NewRequest(http.MethodGet, "/?format=msgpack", nil), http.StatusOK, []byte("{")))
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	require.NoError(t, NewFormatter().WriteError(rec, req, http.StatusNotFound, errors.New("profile not found")))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"profile not found"}`, rec.Body.String())
}
