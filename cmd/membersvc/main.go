package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/httprate"

	config "github.com/fielia/club-services/configs"
	"github.com/fielia/club-services/internal/db"
	"github.com/fielia/club-services/internal/membersvc/auth"
	"github.com/fielia/club-services/internal/membersvc/broker"
	"github.com/fielia/club-services/internal/membersvc/handlers"
	"github.com/fielia/club-services/internal/membersvc/service"
	"github.com/fielia/club-services/internal/membersvc/store"
	nats "github.com/fielia/club-services/internal/nats"
	log "github.com/sirupsen/logrus"
)

const SERVICE_NAME = "member"

var instanceId string

func init() {
	instanceId = config.CreateUniqueInstance(SERVICE_NAME)
	config.Logging(SERVICE_NAME + "_service_" + instanceId)
	config.LoadEnv(SERVICE_NAME)
}

func main() {

	// mongo connection
	database, cancelConn, err := db.ConnectToDB()
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer cancelConn()
	log.Printf("mongo connection established successfully")

	// the unique indexes are the only conflict check for email and card uuid
	db.EnsureUniqueIndex(database, "applications", "email")
	db.EnsureUniqueIndex(database, "cards", "uuid")

	// the live feed is optional, the service runs without it
	var events service.EventSink
	n, err := nats.Connect()
	if err != nil {
		log.Warnf("NATS unavailable, member events disabled: %v", err)
	} else {
		defer n.Conn.Close()
		events = broker.NewBroker(n.Conn)
		log.Printf("NATS connection established successfully %s", n.Url)
	}

	sessionAuth, err := auth.New()
	if err != nil {
		log.Fatalf("Failed to configure session authority: %v", err)
	}

	requireContact := os.Getenv("CARD_REQUIRE_CONTACT") == "true"

	appStore := store.NewApplicationStore(database)
	appService := service.NewApplicationService(appStore, events)

	cardStore := store.NewCardStore(database)
	cardService := service.NewCardService(cardStore, events, requireContact)

	// Setup router
	r := chi.NewRouter()
	c := config.CORS()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(config.CustomLoggerMiddleware())
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(c.Handler)

	// to protect the service api from any over requests
	rateLimitStr := os.Getenv("RATE_LIMIT")
	rateLimit, err := strconv.Atoi(rateLimitStr)
	if err != nil {
		log.Fatalf("Invalid RATE_LIMIT value: %v", err)
	}
	r.Use(httprate.LimitByIP(rateLimit, 1*time.Minute))

	// Init handlers and routes
	h := handlers.NewHandler(sessionAuth, appService, cardService)
	h.SetRoutes(r)

	// Create server with timeout settings
	server := &http.Server{
		Addr:         ":" + os.Getenv("MEMBER_SERVICE_PORT"),
		Handler:      r,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe(): %v", err)
		}
	}()
	log.Infof("%s service running at port %s", SERVICE_NAME, server.Addr)

	// Wait for interrupt signal to gracefully shutdown the server
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("%s service shutdown Failed:%+v", SERVICE_NAME, err)
	}
	log.Infof("%s service gracefully stopped", SERVICE_NAME)
}
