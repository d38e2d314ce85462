package report

// PaginatedResult represents a paginated response with data and metadata
type PaginatedResult struct {
	Data     []*Run `json:"data"`
	Page     int    `json:"page"`
	PageSize int    `json:"pageSize"`
	Count    int    `json:"count"`
}

// NewPaginatedResult wraps one page of runs
func NewPaginatedResult(data []*Run, page, pageSize int) PaginatedResult {
	return PaginatedResult{Data: data, Page: page, PageSize: pageSize, Count: len(data)}
}
