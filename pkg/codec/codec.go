// Package codec converts snow profiles between their document encodings:
// CAAML XML, JSON and MessagePack.
package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/chrissnell/snowprofile/pkg/caaml"
	"github.com/chrissnell/snowprofile/pkg/snowprofile"
)

// Format names a document encoding.
type Format string

const (
	CAAML   Format = "caaml"
	JSON    Format = "json"
	Msgpack Format = "msgpack"
)

// ParseFormat accepts a format name, case-insensitively. "xml" is an alias
// of CAAML and "mpk" of Msgpack.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "caaml", "xml":
		return CAAML, nil
	case "json":
		return JSON, nil
	case "msgpack", "mpk":
		return Msgpack, nil
	}
	return "", fmt.Errorf("unknown document format %q", s)
}

// FormatFromPath guesses the format from a file extension. Anything that is
// not JSON or MessagePack is treated as CAAML.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return JSON
	case ".msgpack", ".mpk":
		return Msgpack
	}
	return CAAML
}

// ContentType is the MIME type of documents in f.
func (f Format) ContentType() string {
	switch f {
	case JSON:
		return "application/json"
	case Msgpack:
		return "application/x-msgpack"
	}
	return "application/xml"
}

// Encode writes sp to w in format f. The CAAML version is only used for
// CAAML output.
func Encode(w io.Writer, sp *snowprofile.SnowProfile, f Format, v caaml.Version) error {
	switch f {
	case CAAML:
		return caaml.Encode(sp, w, v)
	case JSON:
		b, err := snowprofile.ToJSON(sp)
		if err != nil {
			return err
		}
		_, err = w.Write(b)
		return err
	case Msgpack:
		b, err := MarshalMsgpack(sp)
		if err != nil {
			return err
		}
		_, err = w.Write(b)
		return err
	}
	return fmt.Errorf("unknown document format %q", f)
}

// Decode reads a document in format f from r.
func Decode(r io.Reader, f Format) (*snowprofile.SnowProfile, error) {
	switch f {
	case CAAML:
		return caaml.Decode(r)
	case JSON, Msgpack:
		b, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}
		if f == JSON {
			return snowprofile.FromJSON(b)
		}
		return UnmarshalMsgpack(b)
	}
	return nil, fmt.Errorf("unknown document format %q", f)
}

// MarshalMsgpack encodes sp as MessagePack. The document has the same shape
// as its JSON encoding so both decode through the same validating path.
func MarshalMsgpack(sp *snowprofile.SnowProfile) ([]byte, error) {
	b, err := snowprofile.ToJSON(sp)
	if err != nil {
		return nil, err
	}
	return JSONToMsgpack(b)
}

// UnmarshalMsgpack decodes a document written by MarshalMsgpack and
// validates it.
func UnmarshalMsgpack(b []byte) (*snowprofile.SnowProfile, error) {
	var doc map[string]any
	if err := msgpack.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("decoding msgpack document: %w", err)
	}
	j, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	return snowprofile.FromJSON(j)
}

// JSONToMsgpack re-encodes a JSON value as MessagePack, using the json
// field names.
func JSONToMsgpack(b []byte) ([]byte, error) {
	var data any
	if err := json.Unmarshal(b, &data); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	enc.SetSortMapKeys(true)
	if err := enc.Encode(data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
