package api

import (
	"errors"
	"net/http"
	"os"

	"github.com/labstack/echo/v4"
	"github.com/markusressel/tcoracle/internal/persistence"
)

func registerReportEndpoints(rest *echo.Echo, reports persistence.Persistence) {
	group := rest.Group("/report")

	group.GET("/", func(c echo.Context) error {
		if reports == nil {
			return returnUnavailable(c, "report database")
		}
		data, err := reports.ListReports()
		if err != nil {
			return returnError(c, err)
		}
		return c.JSONPretty(http.StatusOK, data, indentationChar)
	})
	group.GET("/:"+urlParamId+"/", func(c echo.Context) error {
		if reports == nil {
			return returnUnavailable(c, "report database")
		}
		id := c.Param(urlParamId)
		data, err := reports.LoadReport(id)
		if errors.Is(err, os.ErrNotExist) {
			return returnNotFound(c, id)
		} else if err != nil {
			return returnError(c, err)
		}
		return c.JSONPretty(http.StatusOK, data, indentationChar)
	})
	group.DELETE("/:"+urlParamId+"/", func(c echo.Context) error {
		if reports == nil {
			return returnUnavailable(c, "report database")
		}
		if err := reports.DeleteReport(c.Param(urlParamId)); err != nil {
			return returnError(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	})
}
