package helper

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

type Paging struct {
	Limit  int
	Offset int
}

// ResolvePaging reads ?limit= & ?offset= (or ?page= with ?per_page=) and normalises them.
// maxLimit = 0 means unbounded.
func ResolvePaging(c *fiber.Ctx, defaultLimit, maxLimit int) Paging {
	limitStr := strings.TrimSpace(c.Query("limit"))
	if limitStr == "" {
		limitStr = strings.TrimSpace(c.Query("per_page", strconv.Itoa(defaultLimit)))
	}
	limit, _ := strconv.Atoi(limitStr)
	if limit <= 0 {
		limit = defaultLimit
	}
	if maxLimit > 0 && limit > maxLimit {
		limit = maxLimit
	}

	offset, err := strconv.Atoi(strings.TrimSpace(c.Query("offset")))
	if err != nil || offset < 0 {
		page, _ := strconv.Atoi(strings.TrimSpace(c.Query("page", "1")))
		if page < 1 {
			page = 1
		}
		offset = (page - 1) * limit
	}

	return Paging{Limit: limit, Offset: offset}
}

// BuildPagination describes a page of n items fetched with p.
func BuildPagination(p Paging, n int) Pagination {
	return Pagination{
		Limit:   p.Limit,
		Offset:  p.Offset,
		Count:   n,
		HasNext: n == p.Limit,
	}
}
