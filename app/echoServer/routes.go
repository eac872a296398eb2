package echoServer

import (
	"librarium/app/echoServer/controller/auth"
	"librarium/app/echoServer/controller/book"
	"librarium/app/echoServer/controller/loan"
	"librarium/app/echoServer/controller/location"
	"librarium/app/echoServer/controller/reader"
	jwtutil "librarium/util/jwt"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

type C struct {
	Auth      *auth.Controller
	Location  *location.Controller
	Book      *book.Controller
	Reader    *reader.Controller
	Loan      *loan.Controller
	JWTSecret string
}

func Register(e *echo.Echo, c C) {
	// Public
	pub := e.Group("/v1")
	pub.POST("/auth/register", c.Auth.Register)
	pub.POST("/auth/login", c.Auth.Login)

	// Everything below needs a librarian token
	priv := e.Group("/v1")
	priv.Use(echojwt.WithConfig(echojwt.Config{
		TokenLookup: "header:Authorization",
		ParseTokenFunc: func(_ echo.Context, auth string) (any, error) {
			return jwtutil.ParseAuth(auth, c.JWTSecret)
		},
	}))

	// Shelf locations
	priv.POST("/locations", c.Location.Create)
	priv.GET("/locations", c.Location.List)
	priv.GET("/locations/exists", c.Location.Exists)
	priv.DELETE("/locations", c.Location.Remove)

	// Books
	priv.POST("/books", c.Book.Create)
	priv.GET("/books", c.Book.List)
	priv.GET("/books/find", c.Book.Find)
	priv.POST("/books/increase", c.Book.Increase)
	priv.POST("/books/decrease", c.Book.Decrease)
	priv.DELETE("/books", c.Book.Remove)

	// Readers
	priv.POST("/readers", c.Reader.Create)
	priv.GET("/readers", c.Reader.List)
	priv.DELETE("/readers", c.Reader.Remove)

	// Loans
	priv.POST("/loans", c.Loan.Borrow)
	priv.POST("/loans/return", c.Loan.Return)
	priv.GET("/loans/reader", c.Loan.ByReader)
	priv.GET("/loans/overdue", c.Loan.Overdue)
	priv.GET("/loans/overdue/check", c.Loan.OverdueCheck)
}
