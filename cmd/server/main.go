package main // Entry point package

import (
	"log" // Logging library

	"github.com/joho/godotenv"    // .env loader for local development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/restaurant-kot/internal/config"
	"github.com/iliyamo/restaurant-kot/internal/database"
	"github.com/iliyamo/restaurant-kot/internal/handler"
	"github.com/iliyamo/restaurant-kot/internal/printer"
	"github.com/iliyamo/restaurant-kot/internal/queue"
	"github.com/iliyamo/restaurant-kot/internal/repository"
	"github.com/iliyamo/restaurant-kot/internal/router"
)

func main() {
	// Load .env when present; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database connect failed: %v", err)
	}
	defer db.Close()

	// Redis is optional: without it the cache and rate limiter are no-ops.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; cache and rate limiting disabled")
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	menu := repository.NewMenuRepo(db)
	tickets := repository.NewTicketRepo(db)

	authHandler := handler.NewAuthHandler(cfg, users, tokens)
	menuHandler := handler.NewMenuHandler(menu)
	ticketHandler := handler.NewTicketHandler(tickets)

	// Receipt pipeline: ticket.created events are rendered and spooled in
	// the background.  The consumer re-reads items so late cancellations
	// drop off the receipt.
	sink := printer.NewFileSink(cfg.ReceiptSpool)
	go queue.StartTicketConsumer(sink, tickets.TicketItems)

	e := echo.New()
	router.Register(e, cfg, rdb, authHandler, menuHandler, ticketHandler)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
