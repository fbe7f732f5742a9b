package httpapi

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"genebank/internal/catalog"
	"genebank/internal/core"
)

const maxUploadBytes = 32 << 20

// fieldsParam reads the comma separated fields query parameter.
func fieldsParam(c echo.Context) []catalog.Field {
	raw := c.QueryParam("fields")
	if raw == "" {
		return nil
	}
	var out []catalog.Field
	for _, f := range strings.Split(raw, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, catalog.Field(f))
		}
	}
	return out
}

func wantsCSV(c echo.Context) bool {
	return strings.EqualFold(c.QueryParam("format"), "csv")
}

func boolParam(c echo.Context, name string) (*bool, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, badRequest("invalid value for " + name + ": " + raw)
	}
	return &v, nil
}

// filterParams builds a list filter from the query string. number is the
// query key carrying the per-entity number.
func filterParams(c echo.Context, number string) (core.Filter, error) {
	f := core.Filter{
		InstituteCode: c.QueryParam("instituteCode"),
		Genus:         c.QueryParam("genus"),
		Country:       c.QueryParam("country"),
	}
	if number != "" {
		f.Number = c.QueryParam(number)
	}
	var err error
	if f.IsAvailable, err = boolParam(c, "isAvailable"); err != nil {
		return core.Filter{}, err
	}
	if f.IsPublic, err = boolParam(c, "isPublic"); err != nil {
		return core.Filter{}, err
	}
	return f, nil
}

func decodeJSON(c echo.Context, target any) error {
	dec := json.NewDecoder(c.Request().Body)
	if err := dec.Decode(target); err != nil {
		if err == io.EOF {
			return badRequest("request body is empty")
		}
		return badRequest("can not understand the requested json: " + err.Error())
	}
	return nil
}

func decodeDocument(c echo.Context) (catalog.Document, error) {
	var doc catalog.Document
	if err := decodeJSON(c, &doc); err != nil {
		return catalog.Document{}, err
	}
	if doc.Data == nil {
		return catalog.Document{}, badRequest("request body must carry a data object")
	}
	return doc, nil
}

// decodeMetadataPatch accepts either {"metadata": {...}} or the bare metadata object.
func decodeMetadataPatch(c echo.Context) (map[string]any, error) {
	var body map[string]any
	if err := decodeJSON(c, &body); err != nil {
		return nil, err
	}
	if inner, ok := body["metadata"].(map[string]any); ok {
		return inner, nil
	}
	return body, nil
}

// upload is the decoded body of a bulk request: either documents or a CSV file.
type upload struct {
	docs     []catalog.Document
	csv      []byte
	metadata map[string]any
}

func decodeUpload(c echo.Context) (upload, error) {
	ctype := c.Request().Header.Get(echo.HeaderContentType)
	if !strings.HasPrefix(ctype, echo.MIMEMultipartForm) {
		var docs []catalog.Document
		if err := decodeJSON(c, &docs); err != nil {
			return upload{}, err
		}
		return upload{docs: docs}, nil
	}
	fh, err := c.FormFile("csv")
	if err != nil {
		return upload{}, badRequest("multipart upload must carry a csv file")
	}
	if fh.Size > maxUploadBytes {
		return upload{}, echo.NewHTTPError(http.StatusRequestEntityTooLarge, "csv file too large")
	}
	f, err := fh.Open()
	if err != nil {
		return upload{}, err
	}
	defer f.Close()
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, io.LimitReader(f, maxUploadBytes)); err != nil {
		return upload{}, err
	}
	up := upload{csv: buf.Bytes()}
	meta := map[string]any{}
	if g := c.FormValue("group"); g != "" {
		meta[catalog.MetaGroup] = g
	}
	if raw := c.FormValue("is_public"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return upload{}, badRequest("invalid value for is_public: " + raw)
		}
		meta[catalog.MetaIsPublic] = v
	}
	if len(meta) > 0 {
		up.metadata = meta
	}
	return up, nil
}

// writeCSV renders rows produced by write as a text/csv attachment.
func writeCSV(c echo.Context, name string, write func(io.Writer) error) error {
	var buf bytes.Buffer
	if err := write(&buf); err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+name+`.csv"`)
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func documents[T interface{ Document() catalog.Document }](items []T) []catalog.Document {
	out := make([]catalog.Document, len(items))
	for i, item := range items {
		out[i] = item.Document()
	}
	return out
}
