package book

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"librarium/model"
	booksvc "librarium/service/book"
	"librarium/util/apperr"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc booksvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// POST /v1/books
func (h *Controller) Create(c echo.Context) error {
	var req CreateBookReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error"})
	}

	loc := model.BookLocation{Section: req.Section, Shelf: req.Shelf}
	id, added, err := h.Svc.AddBook(c.Request().Context(), req.Title, req.Author, req.YearOfPublication, req.Quantity, loc)
	if err != nil {
		return h.fail(c, err, "book create")
	}
	if !added {
		return c.JSON(http.StatusConflict, echo.Map{"message": "book already exists"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": id})
}

// GET /v1/books[?title=|author=]
func (h *Controller) List(c echo.Context) error {
	ctx := c.Request().Context()

	var (
		rows []model.Book
		err  error
	)
	switch {
	case c.QueryParam("title") != "":
		rows, err = h.Svc.GetBooksByTitle(ctx, c.QueryParam("title"))
	case c.QueryParam("author") != "":
		rows, err = h.Svc.GetBooksByAuthor(ctx, c.QueryParam("author"))
	default:
		rows, err = h.Svc.GetAllBooks(ctx)
	}
	if err != nil {
		return h.fail(c, err, "book list")
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/books/find?title=&author=&year=
func (h *Controller) Find(c echo.Context) error {
	title, author, year, ok := bookQuery(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid title, author or year"})
	}

	row, err := h.Svc.FindBookByDetails(c.Request().Context(), title, author, year)
	if err != nil {
		return h.fail(c, err, "book find")
	}
	if row == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "not found"})
	}
	return c.JSON(http.StatusOK, row)
}

// POST /v1/books/increase
func (h *Controller) Increase(c echo.Context) error {
	return h.adjust(c, "book increase", h.Svc.IncreaseBookQuantity)
}

// POST /v1/books/decrease
func (h *Controller) Decrease(c echo.Context) error {
	return h.adjust(c, "book decrease", h.Svc.DecreaseBookQuantity)
}

func (h *Controller) adjust(c echo.Context, op string, apply func(ctx context.Context, b model.Book, n int) (bool, error)) error {
	var req QuantityReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error"})
	}

	b := model.Book{Title: req.Title, Author: req.Author, YearOfPublication: req.YearOfPublication}
	applied, err := apply(c.Request().Context(), b, req.Amount)
	if err != nil {
		return h.fail(c, err, op)
	}
	if !applied {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
	}
	return c.JSON(http.StatusOK, echo.Map{"applied": true})
}

// DELETE /v1/books?title=&author=&year=
func (h *Controller) Remove(c echo.Context) error {
	title, author, year, ok := bookQuery(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid title, author or year"})
	}

	removed, err := h.Svc.RemoveBookByDetails(c.Request().Context(), title, author, year)
	if err != nil {
		return h.fail(c, err, "book remove")
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
	if booksvc.Code(err) == booksvc.ErrBookBorrowed {
		return c.JSON(http.StatusConflict, echo.Map{"message": "book is currently borrowed"})
	}
	h.Log.Error(op+" error", "err", err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
}

func bookQuery(c echo.Context) (string, string, int, bool) {
	title := c.QueryParam("title")
	author := c.QueryParam("author")
	year, err := strconv.Atoi(c.QueryParam("year"))
	if title == "" || author == "" || err != nil {
		return "", "", 0, false
	}
	return title, author, year, true
}
