package httpapi

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"genebank/internal/catalog"
	"genebank/pkg/domain"
)

func (s *server) listAccessions(c echo.Context) error {
	filter, err := filterParams(c, string(catalog.FieldGermplasmNumber))
	if err != nil {
		return err
	}
	fields := fieldsParam(c)
	items, err := s.svc.ListAccessions(c.Request().Context(), actorOf(c), filter, fields)
	if err != nil {
		return err
	}
	if wantsCSV(c) {
		columns, err := catalog.ColumnsForFields(domain.EntityAccession, catalog.AccessionColumns, fields)
		if err != nil {
			return err
		}
		return writeCSV(c, "accessions", func(w io.Writer) error {
			return catalog.WriteAccessions(w, items, columns)
		})
	}
	return c.JSON(http.StatusOK, documents(items))
}

func (s *server) createAccession(c echo.Context) error {
	doc, err := decodeDocument(c)
	if err != nil {
		return err
	}
	created, err := s.svc.CreateAccession(c.Request().Context(), actorOf(c), doc)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, created.Document())
}

func (s *server) bulkAccessions(c echo.Context) error {
	up, err := decodeUpload(c)
	if err != nil {
		return err
	}
	ctx, actor := c.Request().Context(), actorOf(c)
	if up.csv != nil {
		n, err := s.svc.ImportCSV(ctx, actor, domain.EntityAccession, up.csv, up.metadata)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusCreated, map[string]int{"created": n})
	}
	created, err := s.svc.CreateAccessions(ctx, actor, up.docs)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, documents(created))
}

func (s *server) getAccession(c echo.Context) error {
	a, err := s.svc.GetAccession(c.Request().Context(), actorOf(c), c.Param("instituteCode"), c.Param("germplasmNumber"), fieldsParam(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, a.Document())
}

func (s *server) updateAccession(c echo.Context) error {
	doc, err := decodeDocument(c)
	if err != nil {
		return err
	}
	a, err := s.svc.UpdateAccession(c.Request().Context(), actorOf(c), c.Param("instituteCode"), c.Param("germplasmNumber"), doc)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, a.Document())
}

func (s *server) patchAccession(c echo.Context) error {
	raw, err := decodeMetadataPatch(c)
	if err != nil {
		return err
	}
	a, err := s.svc.PatchAccessionMetadata(c.Request().Context(), actorOf(c), c.Param("instituteCode"), c.Param("germplasmNumber"), raw)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, a.Document())
}

func (s *server) deleteAccession(c echo.Context) error {
	if err := s.svc.DeleteAccession(c.Request().Context(), actorOf(c), c.Param("instituteCode"), c.Param("germplasmNumber")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
