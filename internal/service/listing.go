package service

// ListPage — страница справочного списка.
type ListPage[T any] struct {
	Items    []T  `json:"items"`
	Page     int  `json:"page"`
	PageSize int  `json:"page_size"`
	Total    int  `json:"total"`
	HasNext  bool `json:"has_next"`
}

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// window нормализует номер (с 1) и размер страницы.
func (r ListRequest) window() (page, size int) {
	page, size = r.Page, r.PageSize
	if page < 1 {
		page = 1
	}
	switch {
	case size <= 0:
		size = defaultPageSize
	case size > maxPageSize:
		size = maxPageSize
	}
	return page, size
}

// pageOf вырезает страницу из уже отсортированного списка.
func pageOf[T any](items []T, req ListRequest) ListPage[T] {
	page, size := req.window()
	from := min((page-1)*size, len(items))
	to := min(from+size, len(items))

	out := make([]T, to-from)
	copy(out, items[from:to])
	return ListPage[T]{
		Items:    out,
		Page:     page,
		PageSize: size,
		Total:    len(items),
		HasNext:  to < len(items),
	}
}
