package server

import (
	"bytes"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/chrissnell/snowprofile/internal/archive"
	"github.com/chrissnell/snowprofile/internal/log"
	"github.com/chrissnell/snowprofile/pkg/caaml"
	"github.com/chrissnell/snowprofile/pkg/codec"
	"github.com/chrissnell/snowprofile/pkg/snowprofile"
	"github.com/chrissnell/snowprofile/pkg/table"
)

// ValidationResult is the response of /validate
type ValidationResult struct {
	Valid   bool                `json:"valid"`
	Error   string              `json:"error,omitempty"`
	Version string              `json:"version,omitempty"`
	Summary snowprofile.Summary `json:"summary"`
}

// badRequest marks errors caused by the request itself
type badRequest struct{ err error }

func (e badRequest) Error() string { return e.err.Error() }
func (e badRequest) Unwrap() error { return e.err }

// statusOf maps an error to the HTTP status reported to the client
func statusOf(err error) int {
	var (
		br  badRequest
		pe  *caaml.ParseError
		uv  *caaml.UnsupportedVersionError
		ve  *snowprofile.ValidationError
		se  *table.SchemaError
		mbe *http.MaxBytesError
	)
	switch {
	case errors.Is(err, archive.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &mbe):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &ve), errors.As(err, &se):
		return http.StatusUnprocessableEntity
	case errors.As(err, &br), errors.As(err, &pe), errors.As(err, &uv):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (c *Controller) fail(w http.ResponseWriter, req *http.Request, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		log.Errorf("%s %s: %v", req.Method, req.URL.Path, err)
	}
	if werr := c.formatter.WriteError(w, req, status, err); werr != nil {
		log.Errorf("writing error response: %v", werr)
	}
}

// inputFormat picks the body format from the "from" parameter, then from the
// Content-Type header. CAAML is the default.
func inputFormat(req *http.Request) (codec.Format, error) {
	if from := req.URL.Query().Get("from"); from != "" {
		f, err := codec.ParseFormat(from)
		if err != nil {
			return "", badRequest{err}
		}
		return f, nil
	}
	mt, _, _ := mime.ParseMediaType(req.Header.Get("Content-Type"))
	switch mt {
	case "application/json":
		return codec.JSON, nil
	case "application/x-msgpack", "application/msgpack":
		return codec.Msgpack, nil
	}
	return codec.CAAML, nil
}

// decodeBody reads the observation in the request body
func (c *Controller) decodeBody(w http.ResponseWriter, req *http.Request) (*snowprofile.SnowProfile, codec.Format, error) {
	f, err := inputFormat(req)
	if err != nil {
		return nil, "", err
	}
	body := http.MaxBytesReader(w, req.Body, c.serverConfig.MaxBodyBytes)
	defer body.Close()

	sp, err := codec.Decode(body, f)
	if err != nil {
		result := "error"
		if statusOf(err) == http.StatusUnprocessableEntity {
			result = "invalid"
		}
		c.metrics.documentsDecoded.WithLabelValues(string(f), result).Inc()
		if statusOf(err) == http.StatusInternalServerError {
			err = badRequest{fmt.Errorf("decoding %s document: %w", f, err)}
		}
		return nil, f, err
	}
	c.metrics.documentsDecoded.WithLabelValues(string(f), "ok").Inc()
	return sp, f, nil
}

// version reads the "version" parameter, falling back to the configured
// default
func (c *Controller) version(req *http.Request) (caaml.Version, error) {
	s := req.URL.Query().Get("version")
	if s == "" {
		return c.defaultVersion, nil
	}
	v, err := caaml.ParseVersion(s)
	if err != nil {
		return 0, badRequest{err}
	}
	return v, nil
}

// stamp sets the configured producing application on documents that do
// not name another one
func (c *Controller) stamp(sp *snowprofile.SnowProfile) {
	if c.caamlConfig.Application == "" {
		return
	}
	if sp.Application == "" || sp.Application == snowprofile.DefaultApplication {
		sp.Application = c.caamlConfig.Application
		sp.ApplicationVersion = c.caamlConfig.ApplicationVersion
	}
}

// writeDocument encodes sp in format f to the response
func (c *Controller) writeDocument(w http.ResponseWriter, req *http.Request, sp *snowprofile.SnowProfile, f codec.Format, v caaml.Version) {
	var buf bytes.Buffer
	if err := codec.Encode(&buf, sp, f, v); err != nil {
		c.fail(w, req, err)
		return
	}
	c.metrics.documentsEncoded.WithLabelValues(string(f)).Inc()
	w.Header().Set("Content-Type", f.ContentType())
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		log.Errorf("writing document: %v", err)
	}
}

func (c *Controller) health(w http.ResponseWriter, req *http.Request) {
	_ = c.formatter.WriteResponse(w, req, http.StatusOK, map[string]string{"status": "ok"})
}

// convert reads a document and writes it back in the format given by "to"
// (CAAML by default) and the CAAML "version"
func (c *Controller) convert(w http.ResponseWriter, req *http.Request) {
	to := codec.CAAML
	if s := req.URL.Query().Get("to"); s != "" {
		f, err := codec.ParseFormat(s)
		if err != nil {
			c.fail(w, req, badRequest{err})
			return
		}
		to = f
	}
	v, err := c.version(req)
	if err != nil {
		c.fail(w, req, err)
		return
	}
	sp, _, err := c.decodeBody(w, req)
	if err != nil {
		c.fail(w, req, err)
		return
	}
	c.stamp(sp)
	c.writeDocument(w, req, sp, to, v)
}

// validate reads a document and reports whether the whole observation is
// valid, with its summary
func (c *Controller) validate(w http.ResponseWriter, req *http.Request) {
	f, err := inputFormat(req)
	if err != nil {
		c.fail(w, req, err)
		return
	}

	var res ValidationResult
	var sp *snowprofile.SnowProfile
	if f == codec.CAAML {
		body := http.MaxBytesReader(w, req.Body, c.serverConfig.MaxBodyBytes)
		defer body.Close()
		var v caaml.Version
		sp, v, err = caaml.DecodeVersion(body)
		if err == nil {
			res.Version = v.String()
		}
	} else {
		sp, _, err = c.decodeBody(w, req)
	}

	switch {
	case err == nil:
		if verr := sp.Validate(); verr != nil {
			res.Error = verr.Error()
		} else {
			res.Valid = true
		}
		res.Summary = snowprofile.Summarize(sp)
	case statusOf(err) == http.StatusUnprocessableEntity:
		res.Error = err.Error()
	default:
		c.fail(w, req, err)
		return
	}
	_ = c.formatter.WriteResponse(w, req, http.StatusOK, res)
}

func (c *Controller) createProfile(w http.ResponseWriter, req *http.Request) {
	sp, f, err := c.decodeBody(w, req)
	if err != nil {
		c.fail(w, req, err)
		return
	}
	source := req.URL.Query().Get("source")
	if source == "" {
		source = "http:" + string(f)
	}
	rec, err := c.store.Save(req.Context(), sp, source)
	if err != nil {
		c.fail(w, req, err)
		return
	}
	c.metrics.profilesArchived.Inc()
	w.Header().Set("Location", "/profiles/"+rec.ID)
	_ = c.formatter.WriteResponse(w, req, http.StatusCreated, rec)
}

// listProfiles accepts location, from, to (RFC 3339) and limit parameters
func (c *Controller) listProfiles(w http.ResponseWriter, req *http.Request) {
	q := req.URL.Query()
	filter := archive.Filter{Location: q.Get("location")}
	for name, dst := range map[string]**time.Time{"from": &filter.From, "to": &filter.To} {
		if s := q.Get(name); s != "" {
			t, err := time.Parse(time.RFC3339, s)
			if err != nil {
				c.fail(w, req, badRequest{fmt.Errorf("invalid %s: %w", name, err)})
				return
			}
			*dst = &t
		}
	}
	if s := q.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			c.fail(w, req, badRequest{fmt.Errorf("invalid limit %q", s)})
			return
		}
		filter.Limit = n
	}

	recs, err := c.store.List(req.Context(), filter)
	if err != nil {
		c.fail(w, req, err)
		return
	}
	if recs == nil {
		recs = []archive.Record{}
	}
	_ = c.formatter.WriteResponse(w, req, http.StatusOK, recs)
}

func (c *Controller) getProfile(w http.ResponseWriter, req *http.Request) {
	sp, _, err := c.store.Load(req.Context(), mux.Vars(req)["id"])
	if err != nil {
		c.fail(w, req, err)
		return
	}
	doc, err := snowprofile.ToJSON(sp)
	if err != nil {
		c.fail(w, req, err)
		return
	}
	if err := c.formatter.WriteRawJSON(w, req, http.StatusOK, doc); err != nil {
		log.Errorf("writing profile: %v", err)
	}
}

func (c *Controller) getProfileCAAML(w http.ResponseWriter, req *http.Request) {
	v, err := c.version(req)
	if err != nil {
		c.fail(w, req, err)
		return
	}
	sp, _, err := c.store.Load(req.Context(), mux.Vars(req)["id"])
	if err != nil {
		c.fail(w, req, err)
		return
	}
	c.stamp(sp)
	c.writeDocument(w, req, sp, codec.CAAML, v)
}

func (c *Controller) getProfileSummary(w http.ResponseWriter, req *http.Request) {
	sp, _, err := c.store.Load(req.Context(), mux.Vars(req)["id"])
	if err != nil {
		c.fail(w, req, err)
		return
	}
	_ = c.formatter.WriteResponse(w, req, http.StatusOK, snowprofile.Summarize(sp))
}

func (c *Controller) deleteProfile(w http.ResponseWriter, req *http.Request) {
	if err := c.store.Delete(req.Context(), mux.Vars(req)["id"]); err != nil {
		c.fail(w, req, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
