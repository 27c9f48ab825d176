package util

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// ParamID reads a positive integer path parameter; it answers 400 and returns
// false when the value is missing or malformed.
func ParamID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		BadRequest(c, "invalid "+name)
		return 0, false
	}
	return id, true
}

// QueryInt returns the query value as an int, or def when absent or malformed.
func QueryInt(c *gin.Context, name string, def int) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return def
	}
	return v
}
