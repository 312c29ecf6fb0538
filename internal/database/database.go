package database

import (
	"context"
	"database/sql"
	"log"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"

	"grocery_back_end/internal/config"
)

// Limites du pool de connexions MySQL
const (
	MaxOpenConns    = 25
	MaxIdleConns    = 5
	ConnMaxLifetime = 5 * time.Minute
	ConnMaxIdleTime = 30 * time.Second
)

var (
	// MySQL : toutes les écritures de commandes passent par ce pool
	MySQL *sql.DB

	// Redis : cache des identités admin (best-effort)
	Redis *redis.Client
)

// ConnectDatabases initialise MySQL puis Redis. MySQL est obligatoire,
// Redis dégrade en lecture directe s'il est absent.
func ConnectDatabases(s *config.Settings) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := connectMySQL(ctx, s.MySQLDSN); err != nil {
		log.Fatalf("❌ Échec initialisation MySQL: %v", err)
	}

	connectRedis(ctx, s)

	log.Println("✅ Toutes les bases de données sont connectées")
}

func connectMySQL(ctx context.Context, dsn string) error {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return err
	}

	db.SetMaxOpenConns(MaxOpenConns)
	db.SetMaxIdleConns(MaxIdleConns)
	db.SetConnMaxLifetime(ConnMaxLifetime)
	db.SetConnMaxIdleTime(ConnMaxIdleTime)

	if err := db.PingContext(ctx); err != nil {
		return err
	}

	MySQL = db
	log.Println("✅ MySQL connecté")
	return nil
}

func connectRedis(ctx context.Context, s *config.Settings) {
	Redis = redis.NewClient(&redis.Options{
		Addr:     s.RedisAddr,
		Password: s.RedisPass,
		DB:       0,
	})

	if err := Redis.Ping(ctx).Err(); err != nil {
		log.Printf("⚠️  Redis injoignable (%v) — le cache admin est désactivé", err)
		Redis.Close()
		Redis = nil
		return
	}
	log.Println("✅ Redis connecté")
}

// Close libère les pools. Utilisé à l'arrêt et dans les tests.
func Close() {
	if MySQL != nil {
		MySQL.Close()
	}
	if Redis != nil {
		Redis.Close()
	}
}

// SetTestDB remplace le pool MySQL le temps d'un test et rend l'ancien.
func SetTestDB(db *sql.DB) *sql.DB {
	old := MySQL
	MySQL = db
	return old
}
