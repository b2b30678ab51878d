package shared

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ID is a backend-assigned record identifier.
// Some resources use numeric ids and others string ids, so both decode into ID.
type ID string

// String returns the id as a string
func (id ID) String() string {
	return string(id)
}

// IsZero reports whether the id is unset
func (id ID) IsZero() bool {
	return id == ""
}

// UnmarshalJSON accepts JSON strings, numbers and null
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid id %s: %w", string(data), err)
	}
	*id = ID(n.String())
	return nil
}

// MarshalJSON writes canonical integer ids as JSON numbers and everything
// else, including "007" and "+5", as strings
func (id ID) MarshalJSON() ([]byte, error) {
	if id == "" {
		return []byte("null"), nil
	}
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil && strconv.FormatInt(n, 10) == string(id) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}
