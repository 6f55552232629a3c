// Package departments mounts the department master-data screen.
package departments

// Department is a backend-owned department record.
type Department struct {
	ID       int64  `json:"id"`
	Code     string `json:"code"`
	Name     string `json:"name"`
	Location string `json:"location"`
}

// RecordID implements listing.Record.
func (d Department) RecordID() int64 { return d.ID }
