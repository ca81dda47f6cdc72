package controllers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cppla/standupbot/services"
)

// idParam reads a positive numeric path parameter and answers 400 when it is not one.
func idParam(ctx *gin.Context, name string) (uint, bool) {
	n, err := strconv.ParseUint(strings.TrimSpace(ctx.Param(name)), 10, 64)
	if err != nil || n == 0 {
		badRequest(ctx, "invalid "+name)
		return 0, false
	}
	return uint(n), true
}

func dateFilter(ctx *gin.Context) services.DateFilter {
	return services.DateFilter{
		StartDate: ctx.Query("start_date"),
		EndDate:   ctx.Query("end_date"),
	}
}
