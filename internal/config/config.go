package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Settings regroupe toute la configuration lue au démarrage.
// Rien d'autre ne lit l'environnement directement.
type Settings struct {
	Port        string
	MySQLDSN    string
	RedisAddr   string
	RedisPass   string
	JWTSecret   string
	SMTPHost    string
	SMTPPort    int
	SMTPUser    string
	SMTPPass    string
	MailFrom    string
	FrontendURL string

	// Identité bancaire pour le QR SEPA des factures
	CompanyIBAN string
	CompanyBIC  string
	CompanyName string

	// Fuseau utilisé pour horodater les commandes (created_at, colonnes de statut)
	OrderLocation *time.Location
}

var App *Settings

func Load() *Settings {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  Aucun fichier .env trouvé — on continue avec les variables d'environnement du système")
	} else {
		log.Println("✅ Fichier .env chargé avec succès")
	}

	s := &Settings{
		Port:        getEnv("PORT", "8080"),
		MySQLDSN:    buildMySQLDSN(),
		RedisAddr:   getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPass:   os.Getenv("REDIS_PASSWORD"),
		JWTSecret:   os.Getenv("TOKEN_SECRET"),
		SMTPHost:    os.Getenv("SMTP_HOST"),
		SMTPPort:    587,
		SMTPUser:    os.Getenv("SMTP_USERNAME"),
		SMTPPass:    os.Getenv("SMTP_PASSWORD"),
		MailFrom:    getEnv("MAIL_FROM", "noreply@grocery.local"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),
		CompanyIBAN: getEnv("COMPANY_IBAN", "FR7612345678901234567890123"),
		CompanyBIC:  getEnv("COMPANY_BIC", "AGRIFRPP"),
		CompanyName: getEnv("COMPANY_NAME", "Grocery SARL"),
	}

	s.OrderLocation = LoadLocation(getEnv("ORDER_TIMEZONE", "Europe/Paris"))

	App = s
	return s
}

// LoadLocation résout un fuseau IANA, avec repli sur UTC si le nom est inconnu.
func LoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Printf("⚠️  Fuseau %q introuvable, repli sur UTC: %v", name, err)
		return time.UTC
	}
	return loc
}

func buildMySQLDSN() string {
	if dsn := os.Getenv("MYSQL_DSN"); dsn != "" {
		return dsn
	}
	user := getEnv("DB_USER", "root")
	pass := os.Getenv("DB_PASSWORD")
	host := getEnv("DB_HOST", "localhost")
	port := getEnv("DB_PORT", "3306")
	name := getEnv("DB_NAME", "grocery")
	return user + ":" + pass + "@tcp(" + host + ":" + port + ")/" + name + "?parseTime=true&loc=UTC"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
