package util

import "strconv"

const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type PageMeta struct {
	Page       int   `json:"page"`
	Size       int   `json:"size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasPrev    bool  `json:"has_prev"`
	HasNext    bool  `json:"has_next"`
}

func Calculate(page, size int) (from, limit int) {
	page, size = Normalize(page, size)
	return (page - 1) * size, size
}

func Normalize(page, size int) (int, int) {
	if page < 1 {
		page = DefaultPage
	}
	if size <= 0 || size > MaxPageSize {
		size = DefaultPageSize
	}
	return page, size
}

// ParsePage reads page/size query values, falling back to defaults on garbage.
func ParsePage(pageStr, sizeStr string) (int, int) {
	page, err := strconv.Atoi(pageStr)
	if err != nil {
		page = DefaultPage
	}
	size, err := strconv.Atoi(sizeStr)
	if err != nil {
		size = DefaultPageSize
	}
	return Normalize(page, size)
}

func Meta(page, size int, total int64) PageMeta {
	page, size = Normalize(page, size)
	pages := int((total + int64(size) - 1) / int64(size))
	return PageMeta{
		Page:       page,
		Size:       size,
		Total:      total,
		TotalPages: pages,
		HasPrev:    page > 1,
		HasNext:    page < pages,
	}
}
