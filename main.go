// Package main librarium API.
//
// @title           Librarium API
// @version         1.0
// @description     Library management service (books, shelf locations, readers, loans).
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description  Use:  Bearer <JWT>
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"librarium/app/echoServer"
	authctrl "librarium/app/echoServer/controller/auth"
	bookctrl "librarium/app/echoServer/controller/book"
	loanctrl "librarium/app/echoServer/controller/loan"
	locationctrl "librarium/app/echoServer/controller/location"
	readerctrl "librarium/app/echoServer/controller/reader"
	"librarium/app/echoServer/validation"
	"librarium/config"
	bookrepo "librarium/repository/book"
	librarianrepo "librarium/repository/librarian"
	loanrepo "librarium/repository/loan"
	locationrepo "librarium/repository/location"
	readerrepo "librarium/repository/reader"
	authsvc "librarium/service/auth"
	booksvc "librarium/service/book"
	loansvc "librarium/service/loan"
	locationsvc "librarium/service/location"
	readersvc "librarium/service/reader"
	"librarium/util/database"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
)

func main() {

	cfg := config.Load()
	ctx := context.Background()

	// logger
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	// repos
	br := bookrepo.New(db)
	lr := locationrepo.New(db)
	rr := readerrepo.New(db)
	bb := loanrepo.New(db)
	ar := librarianrepo.New(db)

	// services
	as := authsvc.New(ar, cfg.JWTSecret)
	ls := locationsvc.New(db, lr)
	bs := booksvc.New(db, br, lr, bb)
	rs := readersvc.New(db, rr, bb)
	lo := loansvc.New(db, br, rr, bb)

	// controllers
	v := validator.New()
	authC := &authctrl.Controller{Svc: as, V: v, Log: log}
	locationC := &locationctrl.Controller{Svc: ls, V: v, Log: log}
	bookC := &bookctrl.Controller{Svc: bs, V: v, Log: log}
	readerC := &readerctrl.Controller{Svc: rs, V: v, Log: log}
	loanC := &loanctrl.Controller{Svc: lo, V: v, Log: log}

	// echo
	e := echo.New()
	echoServer.RegisterMiddlewares(e)
	e.Validator = validation.New()

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]any{
			"status":  "ok",
			"message": "Service is healthy and connected",
		})
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	echoServer.Register(e, echoServer.C{
		Auth:     authC,
		Location: locationC,
		Book:     bookC,
		Reader:   readerC,
		Loan:     loanC,

		JWTSecret: cfg.JWTSecret,
	})

	// periodic overdue report in the background
	monCtx, stopMon := context.WithCancel(ctx)
	defer stopMon()
	go loansvc.NewMonitor(bb, log, time.Hour).Run(monCtx)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}
	if port == "" {
		port = "8080"
	}

	slog.Info("starting server", "chosen_port", port)

	e.Logger.Fatal(e.Start(":" + port))
}
