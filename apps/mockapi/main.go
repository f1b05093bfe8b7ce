// Command mockapi serves a db.json file over the record endpoints the statistics API reads from.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	logsvc "github.com/trezcool/scorebook/services/logger"
	inmemdb "github.com/trezcool/scorebook/storage/database/inmem"
)

func main() {
	addr := flag.String("addr", ":3001", "The address to listen on.")
	dbFile := flag.String("db", "db.json", "The db.json file to serve.")
	flag.Parse()

	logger := logsvc.NewConsoleLogger(log.New(os.Stdout, "MOCKAPI : ", log.LstdFlags))

	db := inmemdb.Open()
	if err := db.SeedFile(*dbFile); err != nil {
		logger.Fatal("seeding mock backend", err)
	}
	app := newServer(inmemdb.NewSchoolRepository(db), logger, true)

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	go func() {
		if err := app.Start(*addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", err)
		}
	}()

	<-shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := app.Shutdown(ctx); err != nil {
		logger.Error("could not stop server gracefully", err)
	}
}
