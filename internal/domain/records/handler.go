package records

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kojo/kojo/pkg/pagination"
)

type Handler struct {
	store *Store
}

func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/medical", h.ListMedical)
	api.POST("/medical", h.UpsertMedical)
	api.DELETE("/medical/:id", h.DeleteMedical)
	api.POST("/medical/:id/restore", h.RestoreMedical)
	api.GET("/medical/trash", h.ListMedicalTrash)
	api.POST("/medical/trash/clear", h.ClearMedicalTrash)
	api.POST("/medical/sort", h.ToggleMedicalSort)

	api.GET("/furusato", h.ListFurusato)
	api.POST("/furusato", h.UpsertFurusato)
	api.DELETE("/furusato/:id", h.DeleteFurusato)
	api.POST("/furusato/:id/restore", h.RestoreFurusato)
	api.POST("/furusato/:id/toggle", h.ToggleFurusatoFlag)
	api.GET("/furusato/trash", h.ListFurusatoTrash)
	api.POST("/furusato/trash/clear", h.ClearFurusatoTrash)
	api.POST("/furusato/sort", h.ToggleFurusatoSort)

	api.GET("/history", h.GetHistory)
}

// -- Medical --

func (h *Handler) ListMedical(c echo.Context) error {
	pg := pagination.FromContext(c)
	items := h.store.Medical()
	start, end := pg.Slice(len(items))
	return c.JSON(http.StatusOK, pagination.NewResponse(items[start:end], len(items), pg.Limit, pg.Offset))
}

func (h *Handler) UpsertMedical(c echo.Context) error {
	var rec MedicalRecord
	if err := c.Bind(&rec); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	stored, err := h.store.UpsertMedical(c.Request().Context(), rec)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, stored)
}

// DeleteMedical soft-deletes a record. The removed record is returned
// so the frontend can offer an undo toast; deleting an id that is
// already gone responds 204 rather than an error.
func (h *Handler) DeleteMedical(c echo.Context) error {
	rec, err := h.store.DeleteMedical(c.Request().Context(), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if rec == nil {
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) RestoreMedical(c echo.Context) error {
	rec, err := h.store.RestoreMedical(c.Request().Context(), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if rec == nil {
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) ListMedicalTrash(c echo.Context) error {
	return c.JSON(http.StatusOK, h.store.DeletedMedical())
}

func (h *Handler) ClearMedicalTrash(c echo.Context) error {
	if err := h.store.ClearMedicalTrash(c.Request().Context()); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ToggleMedicalSort(c echo.Context) error {
	order, err := h.store.ToggleSortOrder(TargetMedical)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]string{"sortOrder": order})
}

// -- Furusato --

func (h *Handler) ListFurusato(c echo.Context) error {
	pg := pagination.FromContext(c)
	items := h.store.Furusato()
	start, end := pg.Slice(len(items))
	return c.JSON(http.StatusOK, pagination.NewResponse(items[start:end], len(items), pg.Limit, pg.Offset))
}

func (h *Handler) UpsertFurusato(c echo.Context) error {
	var rec FurusatoRecord
	if err := c.Bind(&rec); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	stored, err := h.store.UpsertFurusato(c.Request().Context(), rec)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, stored)
}

func (h *Handler) DeleteFurusato(c echo.Context) error {
	rec, err := h.store.DeleteFurusato(c.Request().Context(), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if rec == nil {
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) RestoreFurusato(c echo.Context) error {
	rec, err := h.store.RestoreFurusato(c.Request().Context(), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if rec == nil {
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusOK, rec)
}

// ToggleFurusatoFlag flips isReceived or isOneStop, chosen by the
// "field" query parameter.
func (h *Handler) ToggleFurusatoFlag(c echo.Context) error {
	field := c.QueryParam("field")
	if field == "" {
		field = FlagReceived
	}
	if field != FlagReceived && field != FlagOneStop {
		return echo.NewHTTPError(http.StatusBadRequest, "field must be isReceived or isOneStop")
	}
	rec, err := h.store.ToggleFurusatoFlag(c.Request().Context(), c.Param("id"), field)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if rec == nil {
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) ListFurusatoTrash(c echo.Context) error {
	return c.JSON(http.StatusOK, h.store.DeletedFurusato())
}

func (h *Handler) ClearFurusatoTrash(c echo.Context) error {
	if err := h.store.ClearFurusatoTrash(c.Request().Context()); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ToggleFurusatoSort(c echo.Context) error {
	order, err := h.store.ToggleSortOrder(TargetFurusato)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]string{"sortOrder": order})
}

// -- History --

func (h *Handler) GetHistory(c echo.Context) error {
	return c.JSON(http.StatusOK, h.store.History())
}
