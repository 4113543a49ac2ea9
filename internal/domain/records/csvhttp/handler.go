// Package csvhttp exposes the CSV export/import endpoints. It sits
// between the record store and the codec so neither depends on the
// other.
package csvhttp

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kojo/kojo/internal/domain/records"
	"github.com/kojo/kojo/internal/platform/taxcsv"
)

type Handler struct {
	store *records.Store
}

func NewHandler(store *records.Store) *Handler {
	return &Handler{store: store}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/medical/export.csv", h.ExportMedicalCSV)
	api.POST("/medical/import/preview", h.PreviewMedicalImport)
	api.POST("/medical/import", h.ImportMedicalCSV)
}

func (h *Handler) ExportMedicalCSV(c echo.Context) error {
	items := h.store.Medical()
	if len(items) == 0 {
		// Not an error: the frontend shows a "nothing to export" toast.
		return c.NoContent(http.StatusNoContent)
	}
	// RFC 5987: the filename* value must be percent-encoded.
	name := url.PathEscape(taxcsv.Filename(time.Now().Year()))
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename*=UTF-8''%s", name))
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", taxcsv.Export(items))
}

// PreviewMedicalImport parses the posted CSV without committing it, so
// the frontend can ask the user to confirm the row count first.
func (h *Handler) PreviewMedicalImport(c echo.Context) error {
	result, err := readImport(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"count":    len(result.Records),
		"degraded": result.Degraded,
	})
}

func (h *Handler) ImportMedicalCSV(c echo.Context) error {
	result, err := readImport(c)
	if err != nil {
		return err
	}
	added, err := h.store.ImportMedicalBatch(c.Request().Context(), result.Records)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"added":    added,
		"degraded": result.Degraded,
	})
}

func readImport(c echo.Context) (taxcsv.ImportResult, error) {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return taxcsv.ImportResult{}, echo.NewHTTPError(http.StatusBadRequest, "failed to read request body")
	}
	return taxcsv.Import(string(body)), nil
}
