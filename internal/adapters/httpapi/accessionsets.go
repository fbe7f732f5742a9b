package httpapi

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"genebank/internal/catalog"
	"genebank/pkg/domain"
)

func (s *server) listAccessionSets(c echo.Context) error {
	filter, err := filterParams(c, string(catalog.FieldAccessionSetNumber))
	if err != nil {
		return err
	}
	fields := fieldsParam(c)
	items, err := s.svc.ListAccessionSets(c.Request().Context(), actorOf(c), filter, fields)
	if err != nil {
		return err
	}
	if wantsCSV(c) {
		columns, err := catalog.ColumnsForFields(domain.EntityAccessionSet, catalog.AccessionSetColumns, fields)
		if err != nil {
			return err
		}
		return writeCSV(c, "accessionsets", func(w io.Writer) error {
			return catalog.WriteAccessionSets(w, items, columns)
		})
	}
	return c.JSON(http.StatusOK, documents(items))
}

func (s *server) createAccessionSet(c echo.Context) error {
	doc, err := decodeDocument(c)
	if err != nil {
		return err
	}
	created, err := s.svc.CreateAccessionSet(c.Request().Context(), actorOf(c), doc)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, created.Document())
}

func (s *server) bulkAccessionSets(c echo.Context) error {
	up, err := decodeUpload(c)
	if err != nil {
		return err
	}
	ctx, actor := c.Request().Context(), actorOf(c)
	if up.csv != nil {
		n, err := s.svc.ImportCSV(ctx, actor, domain.EntityAccessionSet, up.csv, nil)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusCreated, map[string]int{"created": n})
	}
	created, err := s.svc.CreateAccessionSets(ctx, actor, up.docs)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, documents(created))
}

func (s *server) getAccessionSet(c echo.Context) error {
	set, err := s.svc.GetAccessionSet(c.Request().Context(), actorOf(c), c.Param("instituteCode"), c.Param("accessionsetNumber"), fieldsParam(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, set.Document())
}

func (s *server) updateAccessionSet(c echo.Context) error {
	doc, err := decodeDocument(c)
	if err != nil {
		return err
	}
	set, err := s.svc.UpdateAccessionSet(c.Request().Context(), actorOf(c), c.Param("instituteCode"), c.Param("accessionsetNumber"), doc)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, set.Document())
}

func (s *server) patchAccessionSet(c echo.Context) error {
	raw, err := decodeMetadataPatch(c)
	if err != nil {
		return err
	}
	set, err := s.svc.PatchAccessionSetMetadata(c.Request().Context(), actorOf(c), c.Param("instituteCode"), c.Param("accessionsetNumber"), raw)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, set.Document())
}

func (s *server) deleteAccessionSet(c echo.Context) error {
	if err := s.svc.DeleteAccessionSet(c.Request().Context(), actorOf(c), c.Param("instituteCode"), c.Param("accessionsetNumber")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
