package supabase

import (
	"fmt"
	"net/url"
	"strings"
)

// All is the sentinel filter value meaning "no constraint". Screens pass
// it for untouched dropdowns; the builder must drop it entirely instead
// of encoding it as a literal predicate.
const All = "all"

// Query builds a PostgREST request path for one table: column projection
// (including joined label columns via resource embedding), conjunctive
// filter predicates, ordering and pagination. Predicates whose value is
// empty or the All sentinel are omitted.
type Query struct {
	table  string
	sel    string
	conds  []string
	order  []string
	limit  int
	offset int
}

// NewQuery starts a query against a table.
func NewQuery(table string) *Query {
	return &Query{table: table}
}

// Select sets the column projection, e.g. "*,clients(name)".
func (q *Query) Select(columns string) *Query {
	q.sel = columns
	return q
}

// Eq adds an equality predicate unless the value is unset or All.
func (q *Query) Eq(column, value string) *Query {
	if skip(value) {
		return q
	}
	q.conds = append(q.conds, fmt.Sprintf("%s=eq.%s", column, url.QueryEscape(value)))
	return q
}

// Neq adds an inequality predicate unless the value is unset or All.
func (q *Query) Neq(column, value string) *Query {
	if skip(value) {
		return q
	}
	q.conds = append(q.conds, fmt.Sprintf("%s=neq.%s", column, url.QueryEscape(value)))
	return q
}

// Gte adds a lower-bound predicate unless the value is unset.
func (q *Query) Gte(column, value string) *Query {
	if skip(value) {
		return q
	}
	q.conds = append(q.conds, fmt.Sprintf("%s=gte.%s", column, url.QueryEscape(value)))
	return q
}

// Lte adds an upper-bound predicate unless the value is unset.
func (q *Query) Lte(column, value string) *Query {
	if skip(value) {
		return q
	}
	q.conds = append(q.conds, fmt.Sprintf("%s=lte.%s", column, url.QueryEscape(value)))
	return q
}

// Range adds both bounds of a closed interval; either side may be unset.
func (q *Query) Range(column, from, to string) *Query {
	return q.Gte(column, from).Lte(column, to)
}

// In adds a membership predicate; empty slices impose no constraint.
func (q *Query) In(column string, values []string) *Query {
	if len(values) == 0 {
		return q
	}
	escaped := make([]string, 0, len(values))
	for _, v := range values {
		if skip(v) {
			continue
		}
		escaped = append(escaped, url.QueryEscape(v))
	}
	if len(escaped) == 0 {
		return q
	}
	q.conds = append(q.conds, fmt.Sprintf("%s=in.(%s)", column, strings.Join(escaped, ",")))
	return q
}

// Ilike adds a case-insensitive substring match unless the term is unset.
func (q *Query) Ilike(column, term string) *Query {
	if skip(term) {
		return q
	}
	q.conds = append(q.conds, fmt.Sprintf("%s=ilike.%s", column, url.QueryEscape("*"+term+"*")))
	return q
}

// OrderBy appends a sort key. Multiple calls compose in declaration order.
func (q *Query) OrderBy(column string, desc bool) *Query {
	dir := "asc"
	if desc {
		dir = "desc"
	}
	q.order = append(q.order, fmt.Sprintf("%s.%s", column, dir))
	return q
}

// Limit caps the row count; zero means no cap.
func (q *Query) Limit(n int) *Query {
	q.limit = n
	return q
}

// Page applies limit/offset pagination. Pages are 1-based; zero or
// negative values impose no constraint.
func (q *Query) Page(page, pageSize int) *Query {
	if page > 0 && pageSize > 0 {
		q.limit = pageSize
		q.offset = (page - 1) * pageSize
	}
	return q
}

// Encode renders the PostgREST path (table + query string). With no
// predicates, ordering or pagination it encodes just the table, which
// PostgREST treats as an unconstrained select.
func (q *Query) Encode() string {
	params := make([]string, 0, len(q.conds)+4)
	if q.sel != "" {
		params = append(params, "select="+url.QueryEscape(q.sel))
	}
	params = append(params, q.conds...)
	if len(q.order) > 0 {
		params = append(params, "order="+strings.Join(q.order, ","))
	}
	if q.limit > 0 {
		params = append(params, fmt.Sprintf("limit=%d", q.limit))
	}
	if q.offset > 0 {
		params = append(params, fmt.Sprintf("offset=%d", q.offset))
	}
	if len(params) == 0 {
		return q.table
	}
	return q.table + "?" + strings.Join(params, "&")
}

func skip(value string) bool {
	return value == "" || value == All
}
