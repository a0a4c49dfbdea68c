package database

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"atelier_back_end/internal/config"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/gocql/gocql"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
)

// Connections regroupe les clients ouverts au démarrage. Un champ nil
// signifie que le backend n'est pas configuré.
type Connections struct {
	Scylla  *ScyllaManager
	Redis   *redis.Client
	Elastic *elasticsearch.Client
	MinIO   *minio.Client
}

// Connect ouvre chaque backend configuré. Un backend configuré mais
// injoignable est une erreur.
func Connect(ctx context.Context, cfg *config.Config) (*Connections, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	conns := &Connections{}
	var err error

	if len(cfg.ScyllaHosts) > 0 {
		if conns.Scylla, err = NewScyllaManager(cfg); err != nil {
			return nil, err
		}
	} else {
		log.Println("⚠️  SCYLLA_HOSTS vide — stockage en mémoire")
	}

	if cfg.RedisAddr != "" {
		if conns.Redis, err = connectRedis(ctx, cfg); err != nil {
			conns.Close()
			return nil, err
		}
	} else {
		log.Println("⚠️  REDIS_HOST vide — panier, cache et sessions en mémoire")
	}

	if cfg.ElasticURL != "" {
		if conns.Elastic, err = connectElastic(cfg); err != nil {
			conns.Close()
			return nil, err
		}
	} else {
		log.Println("⚠️  ELASTIC_URL vide — recherche en mémoire")
	}

	if cfg.MinIOEndpoint != "" {
		if conns.MinIO, err = connectMinIO(ctx, cfg); err != nil {
			conns.Close()
			return nil, err
		}
	} else {
		log.Println("⚠️  MINIO_ENDPOINT vide — images conservées en data URI")
	}

	return conns, nil
}

func (c *Connections) Close() {
	if c.Scylla != nil {
		c.Scylla.Close()
	}
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			log.Printf("⚠️ Erreur fermeture Redis: %v", err)
		}
	}
}

// =============================================
// SCYLLA DB (un keyspace par domaine)
// =============================================

type ScyllaKeyspaceConfig struct {
	Hosts       []string
	Keyspace    string
	Username    string
	Password    string
	CACertPath  string
	Timeout     time.Duration
	NumConns    int
	Consistency gocql.Consistency
}

type ScyllaManager struct {
	sessions map[string]*gocql.Session
	configs  map[string]ScyllaKeyspaceConfig

	productsKeyspace string
	usersKeyspace    string
	ordersKeyspace   string

	mu sync.Mutex
}

func NewScyllaManager(cfg *config.Config) (*ScyllaManager, error) {
	sm := &ScyllaManager{
		sessions:         make(map[string]*gocql.Session),
		configs:          make(map[string]ScyllaKeyspaceConfig),
		productsKeyspace: cfg.ScyllaProductsKeyspace,
		usersKeyspace:    cfg.ScyllaUsersKeyspace,
		ordersKeyspace:   cfg.ScyllaOrdersKeyspace,
	}

	for _, ks := range []string{sm.productsKeyspace, sm.usersKeyspace, sm.ordersKeyspace} {
		sm.configs[ks] = ScyllaKeyspaceConfig{
			Hosts:       cfg.ScyllaHosts,
			Keyspace:    ks,
			Username:    cfg.ScyllaUsername,
			Password:    cfg.ScyllaPassword,
			CACertPath:  cfg.ScyllaSSLCAPath,
			Timeout:     cfg.ScyllaTimeout,
			NumConns:    cfg.ScyllaConnsPerHost,
			Consistency: gocql.Quorum,
		}
	}

	// Les tables sont créées par scripts/scylladb_init.cql.
	for ks := range sm.configs {
		if _, err := sm.Session(ks); err != nil {
			sm.Close()
			return nil, fmt.Errorf("échec initialisation keyspace %s: %w", ks, err)
		}
	}
	return sm, nil
}

func newCluster(c ScyllaKeyspaceConfig) *gocql.ClusterConfig {
	cluster := gocql.NewCluster(c.Hosts...)
	cluster.Keyspace = c.Keyspace
	cluster.Consistency = c.Consistency
	cluster.Timeout = c.Timeout
	cluster.NumConns = c.NumConns
	cluster.MaxWaitSchemaAgreement = 30 * time.Second
	cluster.ReconnectInterval = time.Second

	if c.Username != "" {
		cluster.Authenticator = gocql.PasswordAuthenticator{
			Username: c.Username,
			Password: c.Password,
		}
	}
	if c.CACertPath != "" {
		cluster.SslOpts = &gocql.SslOptions{
			CaPath:                 c.CACertPath,
			EnableHostVerification: true,
		}
	}

	cluster.PoolConfig.HostSelectionPolicy = gocql.TokenAwareHostPolicy(gocql.RoundRobinHostPolicy())
	return cluster
}

// Session retourne la session du keyspace, en la recréant si elle a été
// fermée.
func (sm *ScyllaManager) Session(keyspace string) (*gocql.Session, error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	c, ok := sm.configs[keyspace]
	if !ok {
		return nil, fmt.Errorf("keyspace '%s' non configuré", keyspace)
	}

	if session, ok := sm.sessions[keyspace]; ok && !session.Closed() {
		return session, nil
	}

	session, err := newCluster(c).CreateSession()
	if err != nil {
		return nil, fmt.Errorf("erreur création session pour %s: %w", keyspace, err)
	}
	sm.sessions[keyspace] = session
	log.Printf("✅ Nouvelle session ScyllaDB pour keyspace '%s'", keyspace)
	return session, nil
}

func (sm *ScyllaManager) Products() (*gocql.Session, error) { return sm.Session(sm.productsKeyspace) }
func (sm *ScyllaManager) Users() (*gocql.Session, error)    { return sm.Session(sm.usersKeyspace) }
func (sm *ScyllaManager) Orders() (*gocql.Session, error)   { return sm.Session(sm.ordersKeyspace) }

func (sm *ScyllaManager) Close() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	for keyspace, session := range sm.sessions {
		session.Close()
		log.Printf("🔌 Session ScyllaDB fermée pour keyspace '%s'", keyspace)
	}
	sm.sessions = make(map[string]*gocql.Session)
}

// =============================================
// REDIS
// =============================================

func connectRedis(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("impossible de se connecter à Redis: %w", err)
	}
	log.Println("✅ Connecté à Redis")
	return client, nil
}

// =============================================
// ELASTICSEARCH
// =============================================

func connectElastic(cfg *config.Config) (*elasticsearch.Client, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.ElasticURL},
		Username:  cfg.ElasticUser,
		Password:  cfg.ElasticPassword,
	})
	if err != nil {
		return nil, fmt.Errorf("erreur création client Elasticsearch: %w", err)
	}

	res, err := client.Info()
	if err != nil {
		return nil, fmt.Errorf("erreur connexion Elasticsearch: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("erreur connexion Elasticsearch: %s", res.Status())
	}

	log.Println("✅ Connecté à Elasticsearch")
	return client, nil
}

// =============================================
// MINIO
// =============================================

func connectMinIO(ctx context.Context, cfg *config.Config) (*minio.Client, error) {
	client, err := minio.New(cfg.MinIOEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinIOAccessKey, cfg.MinIOSecretKey, ""),
		Secure: cfg.MinIOUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("erreur connexion MinIO: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.MinIOBucket)
	if err != nil {
		return nil, fmt.Errorf("erreur vérification bucket MinIO: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinIOBucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("erreur création bucket MinIO: %w", err)
		}
		log.Println("🪣 Bucket créé :", cfg.MinIOBucket)
	} else {
		log.Println("🪣 Bucket MinIO déjà présent :", cfg.MinIOBucket)
	}

	log.Println("✅ Connecté à MinIO :", cfg.MinIOEndpoint)
	return client, nil
}
