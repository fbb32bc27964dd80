package migrations

import (
	"database/sql"
	"embed"
	"log"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
)

//go:embed sql/*.sql
var embedded embed.FS

// Run выполняет все миграции из встроенной папки sql.
// Миграции идемпотентны: повторный запуск ничего не меняет.
func Run(connString string) {
	db, err := sql.Open("postgres", connString)
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer db.Close()

	goose.SetBaseFS(embedded)
	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatalf("failed to set dialect: %v", err)
	}
	if err := goose.Up(db, "sql"); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}
}
