package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/markusressel/tcoracle/internal/session"
	"github.com/qdm12/reprint"
)

// ResultStore provides the results of a running session
type ResultStore interface {
	Results() []session.Result
	Result(id string) (session.Result, bool)
}

func registerResultEndpoints(rest *echo.Echo, store ResultStore) {
	group := rest.Group("/result")

	group.GET("/", func(c echo.Context) error {
		if store == nil {
			return returnUnavailable(c, "session")
		}
		data := reprint.This(store.Results())
		return c.JSONPretty(http.StatusOK, data, indentationChar)
	})
	group.GET("/:"+urlParamId+"/", func(c echo.Context) error {
		if store == nil {
			return returnUnavailable(c, "session")
		}
		id := c.Param(urlParamId)
		data, exists := store.Result(id)
		if !exists {
			return returnNotFound(c, id)
		}
		return c.JSONPretty(http.StatusOK, reprint.This(data), indentationChar)
	})
}
