package videos

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func mustID(c *gin.Context) uuid.UUID {
	id, _ := uuid.Parse(c.Param("id"))
	return id
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
