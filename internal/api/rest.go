package api

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/markusressel/tcoracle/internal/persistence"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	urlParamId      = "id"
	indentationChar = "  "

	EndpointPathAlive   = "/alive/"
	EndpointPathMetrics = "/metrics/"
)

type (
	Result struct {
		Name    string `json:"name"`
		Message string `json:"message"`
	}
)

type Options struct {
	// Results of the running session, may be nil
	Results ResultStore
	// Reports of past sessions, may be nil
	Reports persistence.Persistence
	// Registerer and Gatherer of the request and verification metrics,
	// the prometheus defaults if nil
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

func CreateRestService(options Options) *echo.Echo {
	echoRest := echo.New()
	echoRest.HideBanner = true
	echoRest.HidePort = true

	registerer := options.Registerer
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	gatherer := options.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	// Root level middleware
	echoRest.Pre(middleware.AddTrailingSlash())

	echoRest.Use(middleware.Secure())
	echoRest.Use(middleware.Recover())
	echoRest.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "tcoracle",
		Subsystem:  "api",
		Registerer: registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == EndpointPathMetrics
		},
	}))

	echoRest.GET(EndpointPathAlive, isAlive)
	echoRest.GET(EndpointPathMetrics, echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))

	registerResultEndpoints(echoRest, options.Results)
	registerReportEndpoints(echoRest, options.Reports)

	return echoRest
}

// returns an empty "ok" answer
func isAlive(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

// return a "not found" message
func returnNotFound(c echo.Context, id string) (err error) {
	return c.JSONPretty(http.StatusNotFound, &Result{
		Name:    "Not found",
		Message: "No item with id '" + id + "' found",
	}, indentationChar)
}

func returnUnavailable(c echo.Context, what string) (err error) {
	return c.JSONPretty(http.StatusServiceUnavailable, &Result{
		Name:    "Unavailable",
		Message: what + " not available",
	}, indentationChar)
}

// return the error message of an error
func returnError(c echo.Context, e error) (err error) {
	return c.JSONPretty(http.StatusInternalServerError, &Result{
		Name:    "Unknown Error",
		Message: e.Error(),
	}, indentationChar)
}
