package main

import (
	"database/sql"
	"fmt"
	"log"
	"strings"

	"unisphere/config"
	"unisphere/internal/model"

	_ "github.com/go-sql-driver/mysql"
)

type tabler interface {
	TableName() string
}

func main() {
	// Load configuration (same YAML + env layering as the server)
	cfg := config.LoadConfig()

	// Connect DB
	db, err := sql.Open("mysql", cfg.Database.DSN())
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Database connection test failed: %v", err)
	}

	fmt.Println("Database connected successfully")
	fmt.Printf("Database: %s\n", cfg.Database.Database)

	tables := tableNames()

	// Confirm
	fmt.Printf("\nWARNING: This operation will CLEAR ALL DATA in tables [%s]!\n", strings.Join(tables, ", "))
	fmt.Print("Type 'YES' to confirm: ")
	var confirm string
	_, _ = fmt.Scanln(&confirm)
	if confirm != "YES" {
		fmt.Println("Operation cancelled")
		return
	}

	// Disable FK checks to avoid constraint issues
	_, _ = db.Exec("SET FOREIGN_KEY_CHECKS=0")

	// TRUNCATE also resets auto-increment ids
	failed := 0
	for _, table := range tables {
		fmt.Printf("Clearing table %s... ", table)
		if _, err := db.Exec(fmt.Sprintf("TRUNCATE TABLE `%s`", table)); err != nil {
			failed++
			fmt.Printf("Failed: %v\n", err)
		} else {
			fmt.Println("Success")
		}
	}

	// Re-enable FK checks
	_, _ = db.Exec("SET FOREIGN_KEY_CHECKS=1")

	if failed > 0 {
		log.Fatalf("\n%d table(s) could not be cleared", failed)
	}
	fmt.Println("\nDatabase reset completed!")
	fmt.Println("All table data cleared, table structure preserved")
}

// tableNames 子表在前，与迁移顺序相反
func tableNames() []string {
	models := model.All()
	names := make([]string, 0, len(models))
	for i := len(models) - 1; i >= 0; i-- {
		if t, ok := models[i].(tabler); ok {
			names = append(names, t.TableName())
		}
	}
	return names
}
