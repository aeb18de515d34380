package query

// Options are the find options recognized by the driver facade.
type Options struct {
	Fields    []string
	Relations []Relation
	OrderBy   []Order
	Limit     int
	Page      int
	Offset    int
}

// Apply copies the options onto q. Zero-valued options leave q unchanged.
func (o *Options) Apply(q *Query) *Query {
	if o == nil {
		return q
	}
	q.Select(o.Fields...)
	q.Relations = append(q.Relations, o.Relations...)
	q.OrderBy = append(q.OrderBy, o.OrderBy...)
	if o.Limit > 0 {
		q.Limit = o.Limit
	}
	if o.Page > 0 {
		q.Page = o.Page
	}
	if o.Offset > 0 {
		q.Offset = o.Offset
	}
	return q
}
