// Comando de migraciones: aplica los archivos de ./migrations con goose
// sobre la misma configuración de la API.
//
//	go run ./cmd/migrate up
//	go run ./cmd/migrate down
//	go run ./cmd/migrate status
package main

import (
	"database/sql"
	"flag"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/jhoicas/almacen-api/pkg/config"
)

func main() {
	var migrationsDir string
	flag.StringVar(&migrationsDir, "dir", "./migrations", "directorio con archivos de migración")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("goose: cargar configuración: %v", err)
	}

	db, err := sql.Open("pgx", cfg.DB.ConnectionString())
	if err != nil {
		log.Fatalf("goose: abrir conexión: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Fatalf("goose: cerrar conexión: %v", err)
		}
	}()
	if err := db.Ping(); err != nil {
		log.Fatalf("goose: ping DB: %v", err)
	}

	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatalf("goose: dialecto: %v", err)
	}

	args := flag.Args()
	command := "up"
	if len(args) > 0 {
		command = args[0]
	}
	var rest []string
	if len(args) > 1 {
		rest = args[1:]
	}

	if err := goose.Run(command, db, migrationsDir, rest...); err != nil {
		log.Fatalf("goose %s: %v", command, err)
	}
	log.Printf("goose %s: ok", command)
}
