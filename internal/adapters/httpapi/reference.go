package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"genebank/pkg/domain"
)

func (s *server) listCountries(c echo.Context) error {
	docs, err := s.svc.ListCountries(c.Request().Context(), actorOf(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, docs)
}

func (s *server) getCountry(c echo.Context) error {
	doc, err := s.svc.GetCountry(c.Request().Context(), actorOf(c), c.Param("code"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, doc)
}

func (s *server) listTaxa(c echo.Context) error {
	docs, err := s.svc.ListTaxa(c.Request().Context(), actorOf(c), domain.TaxonRank(c.QueryParam("rank")))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, docs)
}
