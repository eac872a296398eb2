package loan

import (
	"log/slog"
	"net/http"

	"librarium/model"
	loansvc "librarium/service/loan"
	"librarium/util/apperr"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc loansvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// POST /v1/loans
func (h *Controller) Borrow(c echo.Context) error {
	rd, b, ok := h.bindLoanReq(c)
	if !ok {
		return nil
	}

	loan, borrowed, err := h.Svc.BorrowBook(c.Request().Context(), rd, b)
	if err != nil {
		return h.fail(c, err, "loan borrow")
	}
	if !borrowed {
		return c.JSON(http.StatusConflict, echo.Map{"message": "reader already borrowed this book"})
	}
	return c.JSON(http.StatusCreated, loan)
}

// POST /v1/loans/return
func (h *Controller) Return(c echo.Context) error {
	rd, b, ok := h.bindLoanReq(c)
	if !ok {
		return nil
	}

	returned, err := h.Svc.ReturnBook(c.Request().Context(), rd, b)
	if err != nil {
		return h.fail(c, err, "loan return")
	}
	return c.JSON(http.StatusOK, echo.Map{"returned": returned})
}

// GET /v1/loans/reader?first_name=&last_name=&date_of_birth=
func (h *Controller) ByReader(c echo.Context) error {
	rd, ok := readerQuery(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid reader details"})
	}

	rows, err := h.Svc.ListByReaderWithDates(c.Request().Context(), rd)
	if err != nil {
		return h.fail(c, err, "loan list by reader")
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/loans/overdue
func (h *Controller) Overdue(c echo.Context) error {
	rows, err := h.Svc.ListOverdue(c.Request().Context())
	if err != nil {
		return h.fail(c, err, "loan list overdue")
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/loans/overdue/check?first_name=&last_name=&date_of_birth=
func (h *Controller) OverdueCheck(c echo.Context) error {
	rd, ok := readerQuery(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid reader details"})
	}

	overdue, err := h.Svc.HasOverdue(c.Request().Context(), rd)
	if err != nil {
		return h.fail(c, err, "loan overdue check")
	}
	return c.JSON(http.StatusOK, echo.Map{"overdue": overdue})
}

func (h *Controller) bindLoanReq(c echo.Context) (model.Reader, model.Book, bool) {
	var req LoanReq
	if err := c.Bind(&req); err != nil {
		_ = c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
		return model.Reader{}, model.Book{}, false
	}
	if err := h.V.Struct(req); err != nil {
		_ = c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error"})
		return model.Reader{}, model.Book{}, false
	}
	dob, ok := parseDate(req.DateOfBirth)
	if !ok {
		_ = c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid date_of_birth, want YYYY-MM-DD"})
		return model.Reader{}, model.Book{}, false
	}

	rd := model.Reader{FirstName: req.FirstName, LastName: req.LastName, DateOfBirth: dob}
	b := model.Book{Title: req.Title, Author: req.Author, YearOfPublication: req.YearOfPublication}
	return rd, b, true
}

func (h *Controller) fail(c echo.Context, err error, op string) error {
	if apperr.IsInvalid(err) {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": err.Error()})
	}
	switch loansvc.Code(err) {
	case loansvc.ErrBookNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
	case loansvc.ErrReaderNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": "reader not found"})
	case loansvc.ErrLoanNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": "no active loan for this reader and book"})
	case loansvc.ErrNoCopies:
		return c.JSON(http.StatusConflict, echo.Map{"message": "not enough copies available"})
	case loansvc.ErrReaderOverdue:
		return c.JSON(http.StatusConflict, echo.Map{"message": "reader has overdue loans"})
	}
	h.Log.Error(op+" error", "err", err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
}

func readerQuery(c echo.Context) (model.Reader, bool) {
	firstName := c.QueryParam("first_name")
	lastName := c.QueryParam("last_name")
	dob, ok := parseDate(c.QueryParam("date_of_birth"))
	if firstName == "" || lastName == "" || !ok {
		return model.Reader{}, false
	}
	return model.Reader{FirstName: firstName, LastName: lastName, DateOfBirth: dob}, true
}
