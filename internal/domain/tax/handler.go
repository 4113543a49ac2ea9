package tax

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kojo/kojo/internal/domain/records"
)

// Source is where the handler reads the current collections from.
// *records.Store satisfies it.
type Source interface {
	Medical() []records.MedicalRecord
	Furusato() []records.FurusatoRecord
}

type Handler struct {
	src Source
}

func NewHandler(src Source) *Handler {
	return &Handler{src: src}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/tax/summary", h.GetSummary)
	api.GET("/tax/etax", h.GetEtaxSummary)
}

func (h *Handler) GetSummary(c echo.Context) error {
	return c.JSON(http.StatusOK, Summarize(h.src.Medical(), h.src.Furusato()))
}

func (h *Handler) GetEtaxSummary(c echo.Context) error {
	return c.JSON(http.StatusOK, EtaxSummary(h.src.Medical()))
}
