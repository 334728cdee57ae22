package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/chrissnell/snowprofile/internal/archive"
	"github.com/chrissnell/snowprofile/pkg/caaml"
	"github.com/chrissnell/snowprofile/pkg/config"
)

func fixture(t *testing.T, name string) []byte {
	t.Helper()
	b, err := os.ReadFile(filepath.Join("../../pkg/caaml/testdata", name))
	require.NoError(t, err)
	return b
}

func newController(t *testing.T, withStore bool) *Controller {
	t.Helper()
	var store *archive.Store
	if withStore {
		var err error
		store, err = archive.Open("sqlite", filepath.Join(t.TempDir(), "archive.db"))
		require.NoError(t, err)
		t.Cleanup(func() { _ = store.Close() })
	}
	ctrl, err := NewController(context.Background(), &sync.WaitGroup{},
		config.ServerData{EnableMetrics: true},
		config.CAAMLData{DefaultVersion: "6.0.5", Application: "pit-service", ApplicationVersion: "test"},
		store)
	require.NoError(t, err)
	return ctrl
}

func serve(t *testing.T, c *Controller, method, target string, body []byte, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	c.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func TestNewControllerDefaults(t *testing.T) {
	c := newController(t, false)
	assert.Equal(t, "0.0.0.0:8080", c.Server.Addr)

	_, err := NewController(context.Background(), &sync.WaitGroup{}, config.ServerData{}, config.CAAMLData{DefaultVersion: "7"}, nil)
	assert.Error(t, err)
}

func TestConvert(t *testing.T) {
	c := newController(t, false)

	rec := serve(t, c, http.MethodPost, "/convert?version=6.0.6", fixture(t, "profile_v605.xml"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/xml", rec.Header().Get("Content-Type"))
	_, v, err := caaml.DecodeVersion(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, caaml.V606, v)

	rec = serve(t, c, http.MethodPost, "/convert?to=json", fixture(t, "profile_v606.xml"))
	require.Equal(t, http.StatusOK, rec.Code)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, "col-de-porte-2024", doc["id"])

	// Documents without an application get the configured one.
	rec = serve(t, c, http.MethodPost, "/convert", fixture(t, "profile_v605.xml"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<caaml:application>pit-service</caaml:application>")

	// Others keep theirs.
	rec = serve(t, c, http.MethodPost, "/convert", fixture(t, "profile_v606.xml"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<caaml:application>snowtools</caaml:application>")
}

func TestConvertErrors(t *testing.T) {
	c := newController(t, false)
	tests := []struct {
		name   string
		target string
		body   string
		header []string
		want   int
	}{
		{"not xml", "/convert", "not xml", nil, http.StatusBadRequest},
		{"bad version", "/convert?version=6.0.1", "", nil, http.StatusBadRequest},
		{"bad target format", "/convert?to=yaml", "", nil, http.StatusBadRequest},
		{"bad json", "/convert", "{", []string{"Content-Type", "application/json"}, http.StatusBadRequest},
		{
			"invalid json profile", "/convert?from=json",
			`{"density_profiles":[{"data":{"top_depth":[1.0],"bottom_depth":[0.5],"density":[1000]}}]}`,
			nil, http.StatusUnprocessableEntity,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, c, http.MethodPost, tt.target, []byte(tt.body), tt.header...)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
			assert.Contains(t, rec.Body.String(), `"error"`)
		})
	}
}

func TestConvertBodyLimit(t *testing.T) {
	c := newController(t, false)
	c.serverConfig.MaxBodyBytes = 64
	rec := serve(t, c, http.MethodPost, "/convert?from=json", []byte(`{"id":"`+strings.Repeat("x", 100)+`"}`))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestValidate(t *testing.T) {
	c := newController(t, false)

	rec := serve(t, c, http.MethodPost, "/validate", fixture(t, "profile_v606.xml"))
	require.Equal(t, http.StatusOK, rec.Code)
	var res ValidationResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.True(t, res.Valid, res.Error)
	assert.Equal(t, "6.0.6", res.Version)
	assert.Equal(t, 3, res.Summary.Layers)

	rec = serve(t, c, http.MethodPost, "/validate", []byte(
		`{"density_profiles":[{"data":{"top_depth":[1.0],"bottom_depth":[0.5],"density":[1000]}}]}`),
		"Content-Type", "application/json")
	require.Equal(t, http.StatusOK, rec.Code)
	res = ValidationResult{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.False(t, res.Valid)
	assert.NotEmpty(t, res.Error)
}

func TestProfileLifecycle(t *testing.T) {
	c := newController(t, true)

	rec := serve(t, c, http.MethodPost, "/profiles?source=test", fixture(t, "profile_v606.xml"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created archive.Record
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "test", created.Source)
	assert.Equal(t, "/profiles/"+created.ID, rec.Header().Get("Location"))

	rec = serve(t, c, http.MethodGet, "/profiles?location=porte", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []archive.Record
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)

	rec = serve(t, c, http.MethodGet, "/profiles/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id": "col-de-porte-2024"`)

	rec = serve(t, c, http.MethodGet, "/profiles/"+created.ID+"?format=msgpack", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var doc map[string]any
	require.NoError(t, msgpack.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, "col-de-porte-2024", doc["id"])

	rec = serve(t, c, http.MethodGet, "/profiles/"+created.ID+"/caaml?version=6.0.6", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), caaml.V606.Namespace())

	rec = serve(t, c, http.MethodGet, "/profiles/"+created.ID+"/summary", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"layers":3`)

	rec = serve(t, c, http.MethodDelete, "/profiles/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = serve(t, c, http.MethodGet, "/profiles/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = serve(t, c, http.MethodDelete, "/profiles/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(t, c, http.MethodGet, "/metrics", nil)
	assert.Contains(t, rec.Body.String(), "snowprofile_profiles_archived_total 1")
}

func TestListProfilesBadParameters(t *testing.T) {
	c := newController(t, true)
	for _, target := range []string{"/profiles?from=yesterday", "/profiles?limit=-1", "/profiles?limit=x"} {
		rec := serve(t, c, http.MethodGet, target, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}
	rec := serve(t, c, http.MethodGet, "/profiles", nil)
	assert.Equal(t, "[]\n", rec.Body.String())
}

func TestArchiveRoutesNeedStore(t *testing.T) {
	c := newController(t, false)
	rec := serve(t, c, http.MethodGet, "/profiles", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	c := newController(t, false)
	serve(t, c, http.MethodPost, "/convert", fixture(t, "profile_v605.xml"))

	rec := serve(t, c, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `snowprofile_documents_decoded_total{format="caaml",result="ok"} 1`)
	assert.Contains(t, body, `snowprofile_documents_encoded_total{format="caaml"} 1`)
	assert.Contains(t, body, `route="/convert"`)
}
