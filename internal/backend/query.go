package backend

import (
	"net/url"
	"strings"
)

// Criteria maps filter-field names to raw values entered on a screen.
// Empty fields are never sent to the backend.
type Criteria map[string]string

// Values builds the outgoing query, omitting blank fields.
func (c Criteria) Values() url.Values {
	values := url.Values{}
	for field, value := range c {
		value = strings.TrimSpace(value)
		if field == "" || value == "" {
			continue
		}
		values.Set(field, value)
	}
	return values
}

// Clone returns an independent copy.
func (c Criteria) Clone() Criteria {
	if c == nil {
		return Criteria{}
	}
	out := make(Criteria, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// IsEmpty reports whether no non-blank field is set.
func (c Criteria) IsEmpty() bool {
	for _, v := range c {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
