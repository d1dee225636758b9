package main

import (
	"log"
	"net/http"

	"courtflow/adapters/postgres"
	"courtflow/internal/config"
	"courtflow/ui"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

// Serves the read-only registry viewer: case lists, diaries, analytics and
// the diary export. It shares the database with the API server but holds no
// coordinators and makes no writes.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := sqlx.Connect("postgres", appConfig.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	app, err := ui.NewApp(postgres.NewCaseRepository(db), postgres.NewDiaryRepository(db))
	if err != nil {
		log.Fatalf("Failed to initialize viewer: %v", err)
	}

	addr := ":" + appConfig.DiaryView.Port
	log.Printf("Diary viewer listening on %s", addr)
	log.Fatal(http.ListenAndServe(addr, app.Router()))
}
