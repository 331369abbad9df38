// store_test.go provides a shared test database helper for all store
// integration tests. Tests are skipped if PostgreSQL is not available.
package store

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"outfitly/internal/database"
	"outfitly/internal/models"
)

// testDSN returns the PostgreSQL connection string for testing.
// Uses environment variables with defaults matching docker-compose.yml.
func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "outfitly")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "outfitly")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test database and runs migrations.
// If the database is unavailable, the test is skipped. A cleanup
// function is registered to close the connection when the test finishes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := testDSN()
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping integration test: cannot open DB: %v", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}

	// Run migrations to ensure the schema is current.
	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	// Downgrade goose global state.
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// newTestOutfit inserts an outfit owned by a fresh random user and
// registers its removal. Items, associations and saved rows cascade.
func newTestOutfit(t *testing.T, db *sql.DB, mutate func(*models.Outfit)) *models.Outfit {
	t.Helper()
	o := &models.Outfit{
		OwnerID: uuid.New(),
		Title:   "Test look " + uuid.NewString()[:8],
		Gender:  models.GenderFemale,
	}
	if mutate != nil {
		mutate(o)
	}
	created, err := NewOutfitStore(db).Create(context.Background(), o)
	if err != nil {
		t.Fatalf("create test outfit: %v", err)
	}
	t.Cleanup(func() {
		db.Exec("DELETE FROM outfits WHERE id = $1", created.ID)
	})
	return created
}

// newTestCategory inserts a uniquely named category and registers its
// removal.
func newTestCategory(t *testing.T, db *sql.DB) models.Category {
	t.Helper()
	var c models.Category
	err := db.QueryRow(`INSERT INTO categories (name) VALUES ($1) RETURNING id, name, created_at`,
		"test-"+uuid.NewString()[:8]).Scan(&c.ID, &c.Name, &c.CreatedAt)
	if err != nil {
		t.Fatalf("create test category: %v", err)
	}
	t.Cleanup(func() {
		db.Exec("DELETE FROM categories WHERE id = $1", c.ID)
	})
	return c
}
