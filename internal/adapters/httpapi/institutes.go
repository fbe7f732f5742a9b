package httpapi

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"genebank/internal/catalog"
	"genebank/internal/core"
	"genebank/pkg/domain"
)

func (s *server) listInstitutes(c echo.Context) error {
	fields := fieldsParam(c)
	filter := core.Filter{InstituteCode: c.QueryParam("instituteCode")}
	items, err := s.svc.ListInstitutes(c.Request().Context(), actorOf(c), filter, fields)
	if err != nil {
		return err
	}
	if wantsCSV(c) {
		columns, err := catalog.ColumnsForFields(domain.EntityInstitute, catalog.InstituteColumns, fields)
		if err != nil {
			return err
		}
		return writeCSV(c, "institutes", func(w io.Writer) error {
			return catalog.WriteInstitutes(w, items, columns)
		})
	}
	return c.JSON(http.StatusOK, documents(items))
}

func (s *server) createInstitute(c echo.Context) error {
	doc, err := decodeDocument(c)
	if err != nil {
		return err
	}
	created, err := s.svc.CreateInstitute(c.Request().Context(), actorOf(c), doc)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, created.Document())
}

func (s *server) bulkInstitutes(c echo.Context) error {
	up, err := decodeUpload(c)
	if err != nil {
		return err
	}
	ctx, actor := c.Request().Context(), actorOf(c)
	if up.csv != nil {
		n, err := s.svc.ImportCSV(ctx, actor, domain.EntityInstitute, up.csv, nil)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusCreated, map[string]int{"created": n})
	}
	created, err := s.svc.CreateInstitutes(ctx, actor, up.docs)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, documents(created))
}

func (s *server) getInstitute(c echo.Context) error {
	inst, err := s.svc.GetInstitute(c.Request().Context(), actorOf(c), c.Param("instituteCode"), fieldsParam(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, inst.Document())
}

func (s *server) updateInstitute(c echo.Context) error {
	doc, err := decodeDocument(c)
	if err != nil {
		return err
	}
	inst, err := s.svc.UpdateInstitute(c.Request().Context(), actorOf(c), c.Param("instituteCode"), doc)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, inst.Document())
}

func (s *server) deleteInstitute(c echo.Context) error {
	if err := s.svc.DeleteInstitute(c.Request().Context(), actorOf(c), c.Param("instituteCode")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
