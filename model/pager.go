package model

type Pager struct {
	Total   int            `json:"total"`
	Current int            `json:"current"`
	Limit   int            `json:"limit"`
	List    []SearchResult `json:"list"`
}

// NewPager wraps a single page of results
func NewPager(list []SearchResult) Pager {
	if list == nil {
		list = []SearchResult{}
	}
	return Pager{Total: len(list), Current: 1, Limit: len(list), List: list}
}
