package snapshot

import (
	"bytes"
	"encoding/json"
	"io"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Encoding is a snapshot file format.
type Encoding string

// Encodings.
const (
	YAML Encoding = "yaml"
	JSON Encoding = "json"
)

// EncodingFromFilename picks the encoding from a file extension.
func EncodingFromFilename(name string) (Encoding, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return YAML, nil
	case ".json":
		return JSON, nil
	default:
		return "", errors.Errorf("unsupported snapshot extension %q", filepath.Ext(name))
	}
}

// Decode reads a snapshot. Fields missing from the document keep the values
// of Default, unknown fields are rejected, and the result is normalized and
// validated.
//
// Arguments:
// - r: The document.
// - enc: YAML or JSON.
//
// Returns:
// - The snapshot.
// - A decode error, or ErrInvalid from validation.
//
// @example
// s, err := snapshot.Decode(strings.NewReader("filter: paris\nrotation: 90\n"), snapshot.YAML)
func Decode(r io.Reader, enc Encoding) (Snapshot, error) {
	s := Default()
	switch enc {
	case YAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
			return Snapshot{}, errors.Wrap(err, "decode yaml snapshot")
		}
	case JSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
			return Snapshot{}, errors.Wrap(err, "decode json snapshot")
		}
	default:
		return Snapshot{}, errors.Errorf("unsupported snapshot encoding %q", enc)
	}

	s = s.Normalized()
	if err := s.Validate(); err != nil {
		return Snapshot{}, err
	}
	return s, nil
}

// DecodeBytes is Decode over an in-memory document.
func DecodeBytes(data []byte, enc Encoding) (Snapshot, error) {
	return Decode(bytes.NewReader(data), enc)
}

// Encode writes s in the given encoding. The background raster is not
// written; only its RasterRef is.
func Encode(w io.Writer, s Snapshot, enc Encoding) error {
	switch enc {
	case YAML:
		e := yaml.NewEncoder(w)
		e.SetIndent(2)
		if err := e.Encode(s); err != nil {
			return errors.Wrap(err, "encode yaml snapshot")
		}
		return errors.Wrap(e.Close(), "encode yaml snapshot")
	case JSON:
		e := json.NewEncoder(w)
		e.SetIndent("", "  ")
		return errors.Wrap(e.Encode(s), "encode json snapshot")
	default:
		return errors.Errorf("unsupported snapshot encoding %q", enc)
	}
}

// EncodeBytes is Encode into a fresh buffer.
func EncodeBytes(s Snapshot, enc Encoding) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, s, enc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
