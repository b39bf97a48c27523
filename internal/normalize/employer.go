package normalize

import (
	"encoding/json"
	"strings"
)

// Employer is one extracted employer with its current-role flag
type Employer struct {
	Name    string `json:"name"`
	Current bool   `json:"current"`
}

// SplitEmployers partitions employers into comma-joined current and past
// strings. Order within each string follows the input list.
func SplitEmployers(employers []Employer) (string, string) {
	var current, past []string
	for _, e := range employers {
		if e.Name == "" {
			continue
		}
		if e.Current {
			current = append(current, e.Name)
		} else {
			past = append(past, e.Name)
		}
	}
	return strings.Join(current, ", "), strings.Join(past, ", ")
}

// SplitEmployerJSON splits a stored employer list. Absent or unparseable
// input yields two empty strings, never an error.
func SplitEmployerJSON(raw []byte) (string, string) {
	if len(raw) == 0 {
		return "", ""
	}
	var employers []Employer
	if err := json.Unmarshal(raw, &employers); err != nil {
		return "", ""
	}
	return SplitEmployers(employers)
}
