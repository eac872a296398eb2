package reader

import (
	"log/slog"
	"net/http"

	readersvc "librarium/service/reader"
	"librarium/util/apperr"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc readersvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// POST /v1/readers
func (h *Controller) Create(c echo.Context) error {
	var req CreateReaderReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error"})
	}
	dob, ok := parseDate(req.DateOfBirth)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid date_of_birth, want YYYY-MM-DD"})
	}

	id, added, err := h.Svc.AddReader(c.Request().Context(), req.FirstName, req.LastName, dob)
	if err != nil {
		return h.fail(c, err, "reader create")
	}
	if !added {
		return c.JSON(http.StatusConflict, echo.Map{"message": "reader already exists"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": id})
}

// GET /v1/readers[?last_name=]
func (h *Controller) List(c echo.Context) error {
	ctx := c.Request().Context()

	if ln := c.QueryParam("last_name"); ln != "" {
		rows, err := h.Svc.GetReadersByLastName(ctx, ln)
		if err != nil {
			return h.fail(c, err, "reader list")
		}
		return c.JSON(http.StatusOK, echo.Map{"data": rows})
	}

	rows, err := h.Svc.GetAllReaders(ctx)
	if err != nil {
		return h.fail(c, err, "reader list")
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// DELETE /v1/readers?first_name=&last_name=&date_of_birth=
func (h *Controller) Remove(c echo.Context) error {
	firstName := c.QueryParam("first_name")
	lastName := c.QueryParam("last_name")
	dob, ok := parseDate(c.QueryParam("date_of_birth"))
	if firstName == "" || lastName == "" || !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid reader details"})
	}

	removed, err := h.Svc.RemoveReaderByDetails(c.Request().Context(), firstName, lastName, dob)
	if err != nil {
		return h.fail(c, err, "reader remove")
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
	if readersvc.Code(err) == readersvc.ErrReaderHasLoans {
		return c.JSON(http.StatusConflict, echo.Map{"message": "reader still holds borrowed books"})
	}
	h.Log.Error(op+" error", "err", err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
}
