package handler

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// boolQuery parses an optional bool query parameter.
func boolQuery(c *gin.Context, name string) *bool {
	value := strings.ToLower(c.Query(name))
	switch value {
	case "true", "1":
		v := true
		return &v
	case "false", "0":
		v := false
		return &v
	}
	return nil
}

// pageQuery parses page/limit with the default page size.
func pageQuery(c *gin.Context) (int, int) {
	page := 1
	size := 20
	if v, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil && v > 0 {
		page = v
	}
	if v, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil && v > 0 {
		size = v
	}
	if size > 100 {
		size = 100
	}
	return page, size
}

// optionalQuery returns a trimmed query value or nil when absent.
func optionalQuery(c *gin.Context, name string) *string {
	value := strings.TrimSpace(c.Query(name))
	if value == "" {
		return nil
	}
	return &value
}
