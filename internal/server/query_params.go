package server

import (
	"strconv"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/pausalko/pausalko/pkg/db/pagination"
)

const dateLayout = "2006-01-02"

func parsePagination(c *gin.Context) pagination.Pagination {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))
	return pagination.Pagination{Page: page, PerPage: perPage}.Normalize()
}

func parseID(c *gin.Context, param string) (snowflake.ID, error) {
	raw := c.Param(param)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, ErrInvalidRequest
	}
	return snowflake.ID(id), nil
}

func queryDate(c *gin.Context, name string) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, ErrInvalidRequest
	}
	return &t, nil
}

func queryInt(c *gin.Context, name string) (*int, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, ErrInvalidRequest
	}
	return &v, nil
}

func querySort(c *gin.Context) (string, bool) {
	return c.Query("sort_by"), c.Query("sort_dir") == "desc"
}

func queryID(c *gin.Context, name string) (*snowflake.ID, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v == 0 {
		return nil, ErrInvalidRequest
	}
	id := snowflake.ID(v)
	return &id, nil
}

func snowflakeID(v int64) snowflake.ID {
	return snowflake.ID(v)
}
