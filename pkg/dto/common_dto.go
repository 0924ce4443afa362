package dto

const (
	DefaultLimit = 50
	MaxLimit     = 1000
)

// PageQuery is the limit/offset pair shared by every listing endpoint.
type PageQuery struct {
	Limit  int `form:"limit" binding:"omitempty,min=1,max=1000"`
	Offset int `form:"offset" binding:"omitempty,min=0"`
}

// Normalize fills in the defaults for parameters the caller left out.
func (q PageQuery) Normalize() PageQuery {
	if q.Limit == 0 {
		q.Limit = DefaultLimit
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	return q
}

type PaginationMeta struct {
	Total   int64 `json:"total"`
	Limit   int   `json:"limit"`
	Offset  int   `json:"offset"`
	HasMore bool  `json:"hasMore"`
}

// NewPaginationMeta reports whether rows remain past the returned page.
func NewPaginationMeta(total int64, q PageQuery, returned int) PaginationMeta {
	return PaginationMeta{
		Total:   total,
		Limit:   q.Limit,
		Offset:  q.Offset,
		HasMore: total > int64(q.Offset+returned),
	}
}
