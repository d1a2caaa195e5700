// Package feedback describes reports about query words the index does not know.
package feedback

import (
	"sort"
	"strings"
	"time"
)

// Report lists the unknown tokens of one query.
type Report struct {
	Tokens     []string  `json:"tokens"`
	Query      string    `json:"query"`
	ReportedAt time.Time `json:"reportedAt"`
}

// Key identifies a report by its token set, independent of order and query wording.
func (r Report) Key() string {
	toks := append([]string(nil), r.Tokens...)
	sort.Strings(toks)
	return strings.Join(toks, " ")
}
