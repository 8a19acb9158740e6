package main

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	jwtware "github.com/gofiber/jwt/v2"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/TheVish04/ecommerce2-sub001/internal/address"
	"github.com/TheVish04/ecommerce2-sub001/internal/commission"
	"github.com/TheVish04/ecommerce2-sub001/internal/config"
	"github.com/TheVish04/ecommerce2-sub001/internal/download"
	"github.com/TheVish04/ecommerce2-sub001/internal/logging"
	"github.com/TheVish04/ecommerce2-sub001/internal/notification"
	"github.com/TheVish04/ecommerce2-sub001/internal/order"
	"github.com/TheVish04/ecommerce2-sub001/internal/payment"
	"github.com/TheVish04/ecommerce2-sub001/internal/product"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	log := logging.Init("api", cfg.LogFile)

	db := mustOpenDB(cfg.DatabaseURL)
	defer db.Close()
	ensureSchema(db)

	app := fiber.New()
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	gateway := payment.NewRazorpayGateway(cfg.RazorpayKeyID, cfg.RazorpayKeySecret)
	if !gateway.Enabled() {
		log.Warn("payment gateway credentials not configured; checkout is disabled")
	}

	var notifier notification.Notifier = notification.Noop{}
	if kn := notification.NewKafkaNotifier(cfg.KafkaBrokers, cfg.NotifyTopic); kn != nil {
		defer kn.Close()
		notifier = kn
	}

	productService := product.NewService(product.NewPostgresRepository(db))
	downloadService := download.NewService(download.NewPostgresRepository(db), productService)
	orderService := order.NewService(order.NewPostgresRepository(db), productService, downloadService, gateway, notifier)
	commissionService := commission.NewService(commission.NewPostgresRepository(db), productService, gateway, notifier, cfg.PlatformFeePercent)
	addressService := address.NewService(address.NewPostgresRepository(db))

	productHandler := product.NewHandler(productService)
	orderHandler := order.NewHandler(orderService, addressService)
	commissionHandler := commission.NewHandler(commissionService)
	downloadHandler := download.NewHandler(downloadService)
	addressHandler := address.NewHandler(addressService)

	// public surface
	productHandler.RegisterPublicRoutes(app)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.SendString("ok") })

	// everything past this point carries an authenticated principal
	app.Use(jwtware.New(jwtware.Config{SigningKey: []byte(cfg.JWTSecret)}))

	orderHandler.RegisterProtectedRoutes(app)
	commissionHandler.RegisterProtectedRoutes(app)
	downloadHandler.RegisterProtectedRoutes(app)
	addressHandler.RegisterProtectedRoutes(app)

	log.Info("starting server", "addr", cfg.Addr)
	if err := app.Listen(cfg.Addr); err != nil {
		log.Error("server stopped", "err", err)
	}
}

func mustOpenDB(dbURL string) *sql.DB {
	if dbURL == "" {
		panic("DATABASE_URL is not set")
	}

	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		panic(err)
	}
	if err := db.Ping(); err != nil {
		panic(err)
	}
	return db
}

// ensureSchema creates the transaction-core tables when missing. Catalog
// writes (product CRUD) happen elsewhere; the core only needs the tables
// to exist.
func ensureSchema(db *sql.DB) {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS products (
			product_id SERIAL PRIMARY KEY,
			vendor_id INT NOT NULL,
			name TEXT NOT NULL,
			type TEXT NOT NULL DEFAULT 'physical',
			price NUMERIC NOT NULL DEFAULT 0,
			stock INT NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT 'draft',
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			download_url TEXT,
			sales_count INT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS orders (
			order_id SERIAL PRIMARY KEY,
			buyer_id INT NOT NULL,
			total_amount NUMERIC NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			payment_status TEXT NOT NULL DEFAULT 'pending',
			razorpay_order_id TEXT,
			razorpay_payment_id TEXT,
			shipping_address TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS orders_gateway_payment_idx
			ON orders (razorpay_order_id, razorpay_payment_id)
			WHERE razorpay_payment_id IS NOT NULL`,
		`CREATE TABLE IF NOT EXISTS order_items (
			item_id SERIAL PRIMARY KEY,
			order_id INT NOT NULL REFERENCES orders(order_id),
			product_id INT NOT NULL,
			quantity INT NOT NULL,
			unit_price NUMERIC NOT NULL,
			options JSONB
		)`,
		`CREATE TABLE IF NOT EXISTS commissions (
			commission_id SERIAL PRIMARY KEY,
			service_id INT NOT NULL,
			customer_id INT NOT NULL,
			vendor_id INT NOT NULL,
			title TEXT NOT NULL DEFAULT '',
			requirements TEXT NOT NULL DEFAULT '',
			budget NUMERIC NOT NULL,
			deadline TIMESTAMPTZ,
			reference_images JSONB,
			delivery_files JSONB,
			status TEXT NOT NULL DEFAULT 'pending',
			payment_status TEXT NOT NULL DEFAULT 'pending',
			razorpay_order_id TEXT,
			razorpay_payment_id TEXT,
			platform_fee NUMERIC,
			vendor_amount NUMERIC,
			fee_percent NUMERIC,
			paid_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS download_access (
			access_id SERIAL PRIMARY KEY,
			user_id INT NOT NULL,
			product_id INT NOT NULL,
			order_id INT NOT NULL,
			download_count INT NOT NULL DEFAULT 0,
			max_downloads INT,
			expires_at TIMESTAMPTZ,
			is_revoked BOOLEAN NOT NULL DEFAULT FALSE,
			revoked_at TIMESTAMPTZ,
			revoked_by INT,
			last_download_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (user_id, product_id, order_id)
		)`,
		`CREATE TABLE IF NOT EXISTS shipping_addresses (
			address_id SERIAL PRIMARY KEY,
			user_id INT NOT NULL,
			label TEXT NOT NULL DEFAULT '',
			line TEXT NOT NULL,
			phone TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			panic(err)
		}
	}
}
