package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"atelier_back_end/internal/auth"
	"atelier_back_end/internal/cache"
	"atelier_back_end/internal/cart"
	"atelier_back_end/internal/catalog"
	"atelier_back_end/internal/config"
	"atelier_back_end/internal/contact"
	"atelier_back_end/internal/customize"
	"atelier_back_end/internal/database"
	"atelier_back_end/internal/handlers"
	"atelier_back_end/internal/handlers/checkout"
	customizeHandler "atelier_back_end/internal/handlers/customize"
	"atelier_back_end/internal/handlers/product"
	"atelier_back_end/internal/handlers/user"
	"atelier_back_end/internal/middleware"
	"atelier_back_end/internal/orders"
	"atelier_back_end/internal/repository"
	"atelier_back_end/internal/routes"
	"atelier_back_end/internal/services"

	"github.com/gin-gonic/gin"
)

type stores struct {
	products  repository.ProductRepository
	users     repository.UserRepository
	orders    repository.OrderRepository
	contacts  repository.ContactRepository
	carts     cart.Store
	sessions  customize.Store
	blacklist cache.TokenBlacklist
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Configuration invalide: %v", err)
	}

	conns, err := database.Connect(context.Background(), cfg)
	if err != nil {
		log.Fatalf("❌ Connexion aux bases impossible: %v", err)
	}
	defer conns.Close()

	st := buildStores(conns)

	var index catalog.Index
	if conns.Elastic != nil {
		index = services.NewProductIndex(conns.Elastic, cfg.ElasticIndex)
	}
	catalogSvc := catalog.NewService(st.products, conns.Redis, index)

	if cfg.SeedCatalog && conns.Scylla != nil {
		seedCatalog(st.products)
	}
	if index != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()
			if n, err := catalogSvc.Reindex(ctx); err != nil {
				log.Printf("⚠️ Réindexation Elastic incomplète: %v", err)
			} else {
				log.Printf("✅ %d produits indexés dans Elastic", n)
			}
		}()
	}

	var events services.EventPublisher = services.LogPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		events = services.NewKafkaPublisher(cfg.KafkaBrokers)
		log.Printf("✅ Kafka configuré (%d broker(s))", len(cfg.KafkaBrokers))
	} else {
		log.Println("⚠️  KAFKA_BROKERS vide — événements journalisés uniquement")
	}
	defer events.Close()

	var mailer services.Mailer = services.LogMailer{}
	if cfg.SMTPHost != "" {
		mailer = services.NewSMTPMailer(services.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.MailFrom,
			Inbox:    cfg.ContactInbox,
		})
	} else {
		log.Println("⚠️  SMTP_HOST vide — e-mails journalisés uniquement")
	}

	// Interfaces laissées nil sans MinIO : un *ImageStorage nil ne l'est pas.
	var productImages product.ImageStorage
	var customImages customize.ImageStore
	if conns.MinIO != nil {
		storage := services.NewImageStorage(conns.MinIO, cfg.MinIOBucket, cfg.MinIOEndpoint, cfg.MinIOUseSSL)
		productImages, customImages = storage, storage
	}

	authSvc := auth.NewService(st.users, st.blacklist, []byte(cfg.JWTSecret), cfg.TokenTTL, cfg.IsAdmin)
	provisionAdmins(authSvc, cfg)
	orderSvc := orders.NewService(st.orders, st.carts, catalogSvc, st.users, events, mailer)
	contactSvc := contact.NewService(st.contacts, mailer)

	r := gin.Default()
	routes.RegisterRoutes(r, routes.Deps{
		AllowedOrigins: cfg.AllowedOrigins,
		Auth:           middleware.NewAuth([]byte(cfg.JWTSecret), st.blacklist),
		Limiter:        middleware.NewRateLimiter(conns.Redis),
		Events:         events,
		Products:       product.NewHandler(catalogSvc, productImages, cfg.MaxUploadBytes),
		Users:          user.NewAuthHandler(authSvc),
		Cart:           user.NewCartHandler(st.carts, catalogSvc),
		Orders:         user.NewOrderHandler(orderSvc),
		Customize:      customizeHandler.NewHandler(st.sessions, catalogSvc, st.carts, customImages, cfg.MaxUploadBytes),
		Checkout:       checkout.NewHandler(orderSvc),
		Contact:        handlers.NewContactHandler(contactSvc),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Println("🚀 Serveur Atelier lancé sur le port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("❌ Serveur HTTP arrêté: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("🛑 Arrêt du serveur...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("⚠️ Arrêt forcé du serveur: %v", err)
	}
	log.Println("✅ Serveur arrêté")
}

// buildStores choisit pour chaque stockage l'implémentation réelle si le
// backend est configuré, sinon la version en mémoire.
func buildStores(conns *database.Connections) stores {
	st := stores{
		products:  repository.NewMemoryProducts(repository.SeedProducts()),
		users:     repository.NewMemoryUsers(),
		orders:    repository.NewMemoryOrders(),
		contacts:  repository.NewMemoryContacts(),
		carts:     cart.NewMemoryStore(),
		sessions:  customize.NewMemoryStore(),
		blacklist: cache.NewMemoryBlacklist(),
	}

	if sm := conns.Scylla; sm != nil {
		st.products = repository.NewScyllaProducts(sm.Products)
		st.users = repository.NewScyllaUsers(sm.Users)
		st.orders = repository.NewScyllaOrders(sm.Orders)
		st.contacts = repository.NewScyllaContacts(sm.Users)
	}

	if rdb := conns.Redis; rdb != nil {
		st.users = cache.NewCachedUsers(st.users, rdb)
		st.carts = cart.NewRedisStore(rdb)
		st.sessions = customize.NewRedisStore(rdb)
		st.blacklist = cache.NewRedisBlacklist(rdb)
	}

	return st
}

// provisionAdmins crée les comptes ADMIN_EMAILS absents.
func provisionAdmins(svc *auth.Service, cfg *config.Config) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	n, err := svc.ProvisionAdmins(ctx, cfg.AdminEmails, cfg.AdminPassword)
	if err != nil {
		log.Printf("⚠️ Provisionnement admin interrompu: %v", err)
	}
	if n > 0 {
		log.Printf("✅ %d compte(s) admin créé(s)", n)
	}
}

// seedCatalog insère les produits de démarrage absents de ScyllaDB.
func seedCatalog(repo repository.ProductRepository) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	inserted := 0
	for _, p := range repository.SeedProducts() {
		if _, err := repo.FindByID(ctx, p.ID); err == nil {
			continue
		} else if !errors.Is(err, repository.ErrNotFound) {
			log.Printf("⚠️ Seed catalogue interrompu: %v", err)
			return
		}
		if err := repo.Insert(ctx, &p); err != nil {
			log.Printf("⚠️ Seed produit %s: %v", p.ID, err)
			continue
		}
		inserted++
	}
	if inserted > 0 {
		log.Printf("✅ %d produits de démarrage insérés", inserted)
	}
}
