// Package httpapi serves the catalogue over HTTP with echo.
package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"genebank/internal/auth"
	"genebank/internal/core"
	"genebank/internal/metrics"
)

// APIRoot prefixes every catalogue route.
const APIRoot = "/api"

// Options wires the server to its collaborators. Service is required; a nil
// Signer accepts anonymous requests only, a nil Metrics disables /metrics.
type Options struct {
	Service  *core.Service
	Signer   *auth.Signer
	Logger   *zap.Logger
	Metrics  *metrics.Recorder
	LogLevel string
}

type server struct {
	svc    *core.Service
	signer *auth.Signer
	logger *zap.Logger
}

// New builds the echo instance with every route registered.
func New(opts Options) *echo.Echo {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &server{svc: opts.Service, signer: opts.Signer, logger: logger}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	SetLevel(e, opts.LogLevel)
	e.HTTPErrorHandler = errorHandler(logger)
	e.Use(middleware.Recover())
	e.Use(requestLogger(logger))
	if opts.Metrics != nil {
		e.Use(instrument(opts.Metrics))
		e.GET("/metrics", echo.WrapHandler(opts.Metrics.Handler()))
	}

	api := e.Group(APIRoot, s.authenticate)

	api.GET("/accessions", s.listAccessions)
	api.POST("/accessions", s.createAccession)
	api.POST("/accessions/bulk", s.bulkAccessions)
	api.GET("/accessions/:instituteCode/:germplasmNumber", s.getAccession)
	api.PUT("/accessions/:instituteCode/:germplasmNumber", s.updateAccession)
	api.PATCH("/accessions/:instituteCode/:germplasmNumber", s.patchAccession)
	api.DELETE("/accessions/:instituteCode/:germplasmNumber", s.deleteAccession)

	api.GET("/accessionsets", s.listAccessionSets)
	api.POST("/accessionsets", s.createAccessionSet)
	api.POST("/accessionsets/bulk", s.bulkAccessionSets)
	api.GET("/accessionsets/:instituteCode/:accessionsetNumber", s.getAccessionSet)
	api.PUT("/accessionsets/:instituteCode/:accessionsetNumber", s.updateAccessionSet)
	api.PATCH("/accessionsets/:instituteCode/:accessionsetNumber", s.patchAccessionSet)
	api.DELETE("/accessionsets/:instituteCode/:accessionsetNumber", s.deleteAccessionSet)

	api.GET("/institutes", s.listInstitutes)
	api.POST("/institutes", s.createInstitute)
	api.POST("/institutes/bulk", s.bulkInstitutes)
	api.GET("/institutes/:instituteCode", s.getInstitute)
	api.PUT("/institutes/:instituteCode", s.updateInstitute)
	api.DELETE("/institutes/:instituteCode", s.deleteInstitute)

	api.GET("/countries", s.listCountries)
	api.GET("/countries/:code", s.getCountry)
	api.GET("/taxa", s.listTaxa)

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	return e
}
