package model

import (
	"bytes"
	"strings"
)

// TriState is a three-valued flag decoded from the reputation oracle's
// nullable "1"/"0" string fields. Unknown means the oracle gave no signal,
// which is never treated as malicious.
type TriState int

const (
	TriStateUnknown TriState = iota
	TriStateYes
	TriStateNo
)

func (t TriState) String() string {
	switch t {
	case TriStateYes:
		return "yes"
	case TriStateNo:
		return "no"
	}
	return "unknown"
}

func (t *TriState) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*t = TriStateUnknown
		return nil
	}
	switch strings.Trim(string(data), `"`) {
	case "1":
		*t = TriStateYes
	case "0":
		*t = TriStateNo
	default:
		*t = TriStateUnknown
	}
	return nil
}

func (t TriState) MarshalJSON() ([]byte, error) {
	switch t {
	case TriStateYes:
		return []byte(`"1"`), nil
	case TriStateNo:
		return []byte(`"0"`), nil
	}
	return []byte("null"), nil
}
