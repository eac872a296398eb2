package location

import (
	"log/slog"
	"net/http"
	"strconv"

	"librarium/model"
	locationsvc "librarium/service/location"
	"librarium/util/apperr"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc locationsvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// POST /v1/locations
func (h *Controller) Create(c echo.Context) error {
	var req CreateLocationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error"})
	}

	id, added, err := h.Svc.AddLocation(c.Request().Context(), model.BookLocation{Section: req.Section, Shelf: req.Shelf})
	if err != nil {
		return h.fail(c, err, "location create")
	}
	if !added {
		return c.JSON(http.StatusConflict, echo.Map{"message": "location already exists"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": id})
}

// GET /v1/locations
func (h *Controller) List(c echo.Context) error {
	rows, err := h.Svc.GetAllBookLocations(c.Request().Context())
	if err != nil {
		return h.fail(c, err, "location list")
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/locations/exists?section=&shelf=
func (h *Controller) Exists(c echo.Context) error {
	section, shelf, ok := locationQuery(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid section or shelf"})
	}

	id, exists, err := h.Svc.DoesBookLocationExist(c.Request().Context(), section, shelf)
	if err != nil {
		return h.fail(c, err, "location exists")
	}
	if !exists {
		return c.JSON(http.StatusOK, echo.Map{"exists": false})
	}
	return c.JSON(http.StatusOK, echo.Map{"exists": true, "id": id})
}

// DELETE /v1/locations?section=&shelf=
func (h *Controller) Remove(c echo.Context) error {
	section, shelf, ok := locationQuery(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid section or shelf"})
	}

	removed, err := h.Svc.RemoveBookLocation(c.Request().Context(), section, shelf)
	if err != nil {
		return h.fail(c, err, "location remove")
	}
	if !removed {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "not found"})
	}
	return c.JSON(http.StatusOK, echo.Map{"removed": true})
}

func (h *Controller) fail(c echo.Context, err error, op string) error {
	if apperr.IsInvalid(err) {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": err.Error()})
	}
	if locationsvc.Code(err) == locationsvc.ErrLocationInUse {
		return c.JSON(http.StatusConflict, echo.Map{"message": "books are still assigned to this location"})
	}
	h.Log.Error(op+" error", "err", err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
}

func locationQuery(c echo.Context) (string, int, bool) {
	section := c.QueryParam("section")
	shelf, err := strconv.Atoi(c.QueryParam("shelf"))
	if section == "" || err != nil {
		return "", 0, false
	}
	return section, shelf, true
}
