package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"

	"github.com/mrdaaxel/tienda-api/internal/audit"
	"github.com/mrdaaxel/tienda-api/internal/auth"
	"github.com/mrdaaxel/tienda-api/internal/cart"
	"github.com/mrdaaxel/tienda-api/internal/catalog"
	"github.com/mrdaaxel/tienda-api/internal/inventory"
	"github.com/mrdaaxel/tienda-api/internal/orders"
	"github.com/mrdaaxel/tienda-api/internal/users"
)

func main() {
	tp, err := initTracer()
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			log.Printf("Error shutting down tracer: %v", err)
		}
	}()

	mp, err := initMetrics()
	if err != nil {
		log.Fatalf("Failed to initialize metrics: %v", err)
	}
	defer func() {
		if err := mp.Shutdown(context.Background()); err != nil {
			log.Printf("Error shutting down meter: %v", err)
		}
	}()

	dbPool, err := initDB()
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer dbPool.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr: getEnv("REDIS_ADDR", "localhost:6379"),
	})
	defer redisClient.Close()

	jwtService := auth.NewJWTService(
		getEnv("JWT_SECRET", "dev-secret-change-me"),
		24*time.Hour,
	)

	auditRecorder := audit.NewRecorder(dbPool)
	auditHandler := audit.NewHandler(auditRecorder)

	inventoryRepo := inventory.NewRepository()
	inventoryService := inventory.NewService(dbPool, inventoryRepo, auditRecorder)
	inventoryHandler := inventory.NewHandler(inventoryService)

	catalogRepo := catalog.NewRepository()
	catalogService := catalog.NewService(dbPool, catalogRepo,
		catalog.NewProductCache(redisClient), inventoryService)
	catalogHandler := catalog.NewHandler(catalogService)

	cartRepo := cart.NewRepository()
	cartService := cart.NewService(dbPool, cartRepo, catalogRepo)
	cartHandler := cart.NewHandler(cartService)

	usersRepo := users.NewRepository()
	usersService := users.NewService(dbPool, usersRepo)
	usersHandler := users.NewHandler(usersService)

	authRepo := auth.NewRepository(dbPool)
	authHandler := auth.NewHandler(authRepo, jwtService, getEnv("ADMIN_SECRET_CODE", ""))

	ordersRepo := orders.NewRepository()
	ordersService := orders.NewService(dbPool, ordersRepo, cartRepo, inventoryService,
		catalogRepo, usersRepo, auditRecorder, orders.NewRedisIdempotencyStore(redisClient))
	ordersHandler := orders.NewHandler(ordersService, tp.Tracer("tienda-api"))

	r := gin.Default()

	r.Use(func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Writer.Header().Set("X-Request-ID", requestID)
		c.Next()
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "tienda-api"})
	})

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/register/admin", authHandler.RegisterAdmin)
	}

	authed := api.Group("", auth.RequireAuth(jwtService))
	cliente := authed.Group("", auth.RequireRole(auth.RoleCliente))
	admin := authed.Group("", auth.RequireRole(auth.RoleAdmin))

	carrito := cliente.Group("/carrito")
	{
		carrito.POST("/agregar", cartHandler.AddLine)
		carrito.GET("/mis-items", cartHandler.ListItems)
		carrito.DELETE("/eliminar/:idDetalle", cartHandler.RemoveLine)
		carrito.DELETE("/vaciar", cartHandler.Clear)
	}

	cliente.POST("/pedido/crear", ordersHandler.PlaceOrder)
	cliente.GET("/pedido/mis-pedidos", ordersHandler.ListMyOrders)
	cliente.POST("/pedido/:id/cancelar", ordersHandler.CancelOrder)
	authed.GET("/pedido/:id", ordersHandler.GetOrder)
	admin.GET("/pedido/todos", ordersHandler.ListAllOrders)
	admin.PUT("/pedido/:id/estado", ordersHandler.SetStatus)

	api.GET("/producto/lista", catalogHandler.ListProducts)
	api.GET("/producto/:id", catalogHandler.GetProduct)
	api.GET("/producto/:id/imagenes", catalogHandler.ListImages)
	api.GET("/producto/:id/stock", inventoryHandler.GetStock)
	admin.POST("/producto", catalogHandler.CreateProduct)
	admin.PUT("/producto/:id", catalogHandler.UpdateProduct)
	admin.DELETE("/producto/:id", catalogHandler.DeleteProduct)
	admin.POST("/producto/:id/imagenes", catalogHandler.AddImages)
	admin.PUT("/producto/:id/imagenes/:idImagen/principal", catalogHandler.SetPrimaryImage)
	admin.DELETE("/producto/:id/imagenes/:idImagen", catalogHandler.DeleteImage)
	admin.PUT("/producto/:id/stock", inventoryHandler.UpdateStock)

	api.GET("/categoria", catalogHandler.ListCategories)
	admin.POST("/categoria", catalogHandler.CreateCategory)
	admin.PUT("/categoria/:id", catalogHandler.UpdateCategory)
	admin.DELETE("/categoria/:id", catalogHandler.DeleteCategory)

	direcciones := cliente.Group("/direcciones")
	{
		direcciones.GET("/mias", usersHandler.ListAddresses)
		direcciones.POST("", usersHandler.CreateAddress)
		direcciones.PUT("/:id", usersHandler.UpdateAddress)
		direcciones.DELETE("/:id", usersHandler.DeleteAddress)
	}

	metodosPago := cliente.Group("/metodos-pago")
	{
		metodosPago.GET("/mios", usersHandler.ListPaymentMethods)
		metodosPago.GET("/tipos", usersHandler.ListPaymentTypes)
		metodosPago.POST("", usersHandler.CreatePaymentMethod)
		metodosPago.PUT("/:id", usersHandler.UpdatePaymentMethod)
		metodosPago.DELETE("/:id", usersHandler.DeletePaymentMethod)
	}

	authed.GET("/perfil", usersHandler.GetProfile)
	authed.PUT("/perfil", usersHandler.UpdateProfile)

	admin.GET("/auditoria", auditHandler.List)

	admin.GET("/usuario", usersHandler.ListUsers)
	admin.GET("/usuario/:id", usersHandler.GetUser)
	admin.PUT("/usuario/:id", usersHandler.UpdateUser)
	admin.DELETE("/usuario/:id", usersHandler.DeleteUser)

	port := getEnv("PORT", "8080")
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	go func() {
		log.Printf("🚀 tienda-api listening on port %s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Forced shutdown: %v", err)
	}
	log.Println("👋 server stopped")
}

func initDB() (*pgxpool.Pool, error) {
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		getEnv("DATABASE_USER", "root"),
		getEnv("DATABASE_PASSWORD", "pass"),
		getEnv("DATABASE_HOST", "localhost"),
		getEnv("DATABASE_PORT", "5432"),
		getEnv("DATABASE_NAME", "tienda_db"),
	)

	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	config.MaxConns = 10
	config.MaxConnLifetime = time.Hour
	config.MaxConnIdleTime = 30 * time.Minute
	config.HealthCheckPeriod = 1 * time.Minute

	ctx := context.Background()
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Wait for database to be ready
	for i := 0; i < 30; i++ {
		if err := pool.Ping(ctx); err == nil {
			log.Println("✅ Connected to database with connection pool")
			return pool, nil
		}
		log.Printf("⏳ Waiting for database... (%d/30)", i+1)
		time.Sleep(1 * time.Second)
	}

	pool.Close()
	return nil, fmt.Errorf("failed to connect to database after 30 attempts")
}

func initTracer() (*sdktrace.TracerProvider, error) {
	ctx := context.Background()

	otlpEndpoint := getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318")

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(otlpEndpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(getEnv("SERVICE_NAME", "tienda-api")),
			semconv.ServiceVersion("1.0.0"),
		),
	)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	otel.SetTracerProvider(tp)

	return tp, nil
}

func initMetrics() (*sdkmetric.MeterProvider, error) {
	ctx := context.Background()

	otlpEndpoint := getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318")

	exporter, err := otlpmetrichttp.New(ctx,
		otlpmetrichttp.WithEndpoint(otlpEndpoint),
		otlpmetrichttp.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(getEnv("SERVICE_NAME", "tienda-api")),
			semconv.ServiceVersion("1.0.0"),
		),
	)
	if err != nil {
		return nil, err
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	return mp, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
