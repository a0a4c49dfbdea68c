package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const devJWTSecret = "dev-secret-a-changer"

// Config regroupe tous les réglages du serveur. Chaque backend externe est
// optionnel : une valeur vide fait basculer sur l'implémentation en mémoire.
type Config struct {
	Port           string
	AllowedOrigins []string
	AdminEmails    []string
	AdminPassword  string

	JWTSecret string
	TokenTTL  time.Duration

	MaxUploadBytes int64
	SeedCatalog    bool

	ScyllaHosts            []string
	ScyllaUsername         string
	ScyllaPassword         string
	ScyllaSSLCAPath        string
	ScyllaProductsKeyspace string
	ScyllaUsersKeyspace    string
	ScyllaOrdersKeyspace   string
	ScyllaTimeout          time.Duration
	ScyllaConnsPerHost     int

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	ElasticURL      string
	ElasticUser     string
	ElasticPassword string
	ElasticIndex    string

	MinIOEndpoint  string
	MinIOAccessKey string
	MinIOSecretKey string
	MinIOBucket    string
	MinIOUseSSL    bool

	KafkaBrokers []string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	MailFrom     string
	ContactInbox string
}

// Load lit le fichier .env s'il existe puis l'environnement.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  Aucun fichier .env trouvé — on continue avec les variables d'environnement du système")
	} else {
		log.Println("✅ Fichier .env chargé avec succès")
	}
	return FromEnv()
}

// FromEnv construit la configuration à partir de l'environnement courant.
func FromEnv() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{
		Port:           v.GetString("PORT"),
		AllowedOrigins: splitList(v.GetString("ALLOWED_ORIGINS")),
		AdminEmails:    splitList(strings.ToLower(v.GetString("ADMIN_EMAILS"))),
		AdminPassword:  v.GetString("ADMIN_PASSWORD"),

		JWTSecret: v.GetString("JWT_SECRET"),
		TokenTTL:  v.GetDuration("JWT_TTL"),

		MaxUploadBytes: v.GetInt64("MAX_UPLOAD_BYTES"),
		SeedCatalog:    v.GetBool("SEED_CATALOG"),

		ScyllaHosts:            splitList(v.GetString("SCYLLA_HOSTS")),
		ScyllaUsername:         v.GetString("SCYLLA_USERNAME"),
		ScyllaPassword:         v.GetString("SCYLLA_PASSWORD"),
		ScyllaSSLCAPath:        v.GetString("SCYLLA_SSL_CA_PATH"),
		ScyllaProductsKeyspace: v.GetString("SCYLLA_KS_PRODUCTS_KEYSPACE"),
		ScyllaUsersKeyspace:    v.GetString("SCYLLA_KS_USERS_KEYSPACE"),
		ScyllaOrdersKeyspace:   v.GetString("SCYLLA_KS_ORDERS_KEYSPACE"),
		ScyllaTimeout:          v.GetDuration("SCYLLA_TIMEOUT"),
		ScyllaConnsPerHost:     v.GetInt("SCYLLA_NUM_CONNS"),

		RedisAddr:     v.GetString("REDIS_HOST"),
		RedisPassword: v.GetString("REDIS_PASSWORD"),
		RedisDB:       v.GetInt("REDIS_DB"),

		ElasticURL:      v.GetString("ELASTIC_URL"),
		ElasticUser:     v.GetString("ELASTIC_USER"),
		ElasticPassword: v.GetString("ELASTIC_PASSWORD"),
		ElasticIndex:    v.GetString("ELASTIC_INDEX"),

		MinIOEndpoint:  v.GetString("MINIO_ENDPOINT"),
		MinIOAccessKey: v.GetString("MINIO_ACCESS_KEY"),
		MinIOSecretKey: v.GetString("MINIO_SECRET_KEY"),
		MinIOBucket:    v.GetString("MINIO_BUCKET"),
		MinIOUseSSL:    v.GetBool("MINIO_USE_SSL"),

		KafkaBrokers: splitList(v.GetString("KAFKA_BROKERS")),

		SMTPHost:     v.GetString("SMTP_HOST"),
		SMTPPort:     v.GetInt("SMTP_PORT"),
		SMTPUsername: v.GetString("SMTP_USER"),
		SMTPPassword: v.GetString("SMTP_PASS"),
		MailFrom:     v.GetString("SMTP_FROM"),
		ContactInbox: v.GetString("CONTACT_INBOX"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.JWTSecret == devJWTSecret {
		log.Println("⚠️  JWT_SECRET non défini — secret de développement utilisé")
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("JWT_SECRET", devJWTSecret)
	v.SetDefault("JWT_TTL", "24h")
	v.SetDefault("MAX_UPLOAD_BYTES", 5<<20)
	v.SetDefault("SEED_CATALOG", true)
	v.SetDefault("SCYLLA_TIMEOUT", "5s")
	v.SetDefault("SCYLLA_NUM_CONNS", 20)
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("ELASTIC_INDEX", "products")
	v.SetDefault("MINIO_BUCKET", "atelier")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_FROM", "no-reply@atelier.local")
}

func (c *Config) validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT vide")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("JWT_TTL invalide: %s", c.TokenTTL)
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES invalide: %d", c.MaxUploadBytes)
	}
	if len(c.ScyllaHosts) > 0 && (c.ScyllaProductsKeyspace == "" || c.ScyllaUsersKeyspace == "" || c.ScyllaOrdersKeyspace == "") {
		return fmt.Errorf("SCYLLA_HOSTS défini sans les keyspaces produits, utilisateurs et commandes")
	}
	return nil
}

// IsAdmin indique si l'email figure dans ADMIN_EMAILS.
func (c *Config) IsAdmin(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, admin := range c.AdminEmails {
		if admin == email {
			return true
		}
	}
	return false
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
