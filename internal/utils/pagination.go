package utils

import (
	"Foodgram-Backend/domain"
	"net/url"
	"strconv"
)

// ParsePagination reads page-number pagination. limit overrides the
// configured page size and is capped at domain.MaxPageSize; page is capped
// at domain.MaxPage so offsets stay in range.
func ParsePagination(rawPage, rawLimit string, pageSize int) domain.PaginationRequest {
	if pageSize < 1 {
		pageSize = domain.DefaultPageSize
	}

	page, err := strconv.Atoi(rawPage)
	if err != nil || page < 1 {
		page = 1
	}
	if page > domain.MaxPage {
		page = domain.MaxPage
	}

	limit, err := strconv.Atoi(rawLimit)
	if err != nil || limit < 1 {
		limit = pageSize
	}
	if limit > domain.MaxPageSize {
		limit = domain.MaxPageSize
	}

	return domain.PaginationRequest{Page: page, Limit: limit}
}

// Offset is the number of rows to skip for p.
func Offset(p domain.PaginationRequest) int {
	return (p.Page - 1) * p.Limit
}

// Paginate wraps results with count and next/previous links built from
// requestURL by replacing its page parameter.
func Paginate(requestURL string, p domain.PaginationRequest, count int64, results any) domain.PaginatedResponse {
	res := domain.PaginatedResponse{Count: count, Results: results}

	if int64(p.Page*p.Limit) < count {
		next := pageURL(requestURL, p.Page+1)
		res.Next = &next
	}
	if p.Page > 1 {
		prev := pageURL(requestURL, p.Page-1)
		res.Previous = &prev
	}
	return res
}

func pageURL(requestURL string, page int) string {
	u, err := url.Parse(requestURL)
	if err != nil {
		return requestURL
	}
	q := u.Query()
	if page <= 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}
	u.RawQuery = q.Encode()
	return u.String()
}
