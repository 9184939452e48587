package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// StreamID is the upstream identifier of a stream. The API sends it as a
// JSON number, but quoted values are accepted as well.
type StreamID string

// IsZero reports whether the identifier is absent.
func (id StreamID) IsZero() bool {
	return id == "" || id == "0"
}

// String returns the identifier as used for Detail-URL cache keys.
func (id StreamID) String() string {
	return string(id)
}

// UnmarshalJSON implements json.Unmarshaler.
func (id *StreamID) UnmarshalJSON(data []byte) error {
	s, err := decodeToken(data)
	if err != nil {
		return fmt.Errorf("decoding stream id: %w", err)
	}
	*id = StreamID(s)
	return nil
}

// MarshalJSON implements json.Marshaler.
func (id StreamID) MarshalJSON() ([]byte, error) {
	return encodeToken(string(id))
}

// Epoch is an optional epoch-seconds timestamp kept as the raw upstream
// token, so unparseable values survive a persist/load round trip.
type Epoch string

// EpochFromUnix returns the Epoch for the given seconds.
func EpochFromUnix(sec int64) Epoch {
	return Epoch(strconv.FormatInt(sec, 10))
}

// IsZero reports whether the timestamp is missing or zero.
func (e Epoch) IsZero() bool {
	return e == "" || e == "0"
}

// Unix parses the timestamp as whole seconds. Fractional values are
// truncated towards zero.
func (e Epoch) Unix() (int64, error) {
	if e.IsZero() {
		return 0, ErrMissingTimestamp
	}
	if n, err := strconv.ParseInt(string(e), 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(string(e), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimestamp, string(e))
	}
	return int64(f), nil
}

// Key returns the textual form used when hashing channel identities.
// A missing timestamp hashes as "0".
func (e Epoch) Key() string {
	if e.IsZero() {
		return "0"
	}
	return string(e)
}

// UnmarshalJSON implements json.Unmarshaler.
func (e *Epoch) UnmarshalJSON(data []byte) error {
	s, err := decodeToken(data)
	if err != nil {
		return fmt.Errorf("decoding timestamp: %w", err)
	}
	*e = Epoch(s)
	return nil
}

// MarshalJSON implements json.Marshaler.
func (e Epoch) MarshalJSON() ([]byte, error) {
	return encodeToken(string(e))
}

// decodeToken turns a scalar JSON value into its textual form. null becomes
// the empty string; numbers and booleans keep their literal text.
func decodeToken(data []byte) (string, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return "", nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	return string(data), nil
}

func encodeToken(s string) ([]byte, error) {
	if s == "" {
		return []byte("null"), nil
	}
	if _, err := strconv.ParseFloat(s, 64); err == nil && json.Valid([]byte(s)) {
		return []byte(s), nil
	}
	return json.Marshal(s)
}
