// cmd/web/main.go
package main

import (
	"context"
	"log"
	"os"

	"cloud.google.com/go/firestore"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/cfsmart/painel-lamole/internal/api/handlers"
	"github.com/cfsmart/painel-lamole/internal/api/middleware"
	"github.com/cfsmart/painel-lamole/internal/api/responses"
	"github.com/cfsmart/painel-lamole/internal/core/auth"
	"github.com/cfsmart/painel-lamole/internal/core/importer"
	"github.com/cfsmart/painel-lamole/internal/store"
)

// initFirestoreClient inicializa o cliente Firestore quando o projeto está
// configurado; sem FIRESTORE_PROJECT o painel roda apenas com estado local.
func initFirestoreClient(ctx context.Context) *firestore.Client {
	projectID := os.Getenv("FIRESTORE_PROJECT")
	if projectID == "" {
		responses.Log.Infow("Firestore não configurado, usando apenas persistência local")
		return nil
	}
	databaseID := os.Getenv("FIRESTORE_DATABASE")
	if databaseID == "" {
		databaseID = "(default)"
	}
	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		log.Fatalf("Erro ao inicializar cliente Firestore para o banco '%s': %v\n", databaseID, err)
	}
	responses.Log.Infow("Conectado ao Firestore", "banco", databaseID)
	return client
}

func main() {
	_ = godotenv.Load()
	responses.InitLogger()
	ctx := context.Background()

	firestoreClient := initFirestoreClient(ctx)
	if firestoreClient != nil {
		defer firestoreClient.Close()
	}

	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		dataDir = "data"
	}

	st := store.New(dataDir, firestoreClient, responses.Log)
	st.SyncLoad(ctx)

	// Resolvido só depois do godotenv.Load: assim o segredo do .env vale
	// tanto para assinar quanto para validar tokens.
	jwtSecret := []byte(os.Getenv("JWT_SECRET"))
	if len(jwtSecret) == 0 {
		responses.Log.Warnw("JWT_SECRET não configurado")
	}

	authService := auth.NewService(firestoreClient, jwtSecret)
	importService := importer.NewService(st, responses.Log)

	authHandler := handlers.NewAuthHandler(authService)
	importHandler := handlers.NewImportHandler(importService, st)
	dashboardHandler := handlers.NewDashboardHandler(st)
	simulatorHandler := handlers.NewSimulatorHandler(st)
	datasetsHandler := handlers.NewDatasetsHandler(st)
	exportHandler := handlers.NewExportHandler(st)

	router := gin.Default()
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	apiV1 := router.Group("/api/v1")
	{
		apiV1.POST("/login", authHandler.Login)

		protected := apiV1.Group("/")
		protected.Use(middleware.AuthMiddleware(jwtSecret))
		{
			protected.GET("/dashboard/kpis", dashboardHandler.HandleKPIs)
			protected.GET("/dashboard/budget", dashboardHandler.HandleBudget)
			protected.GET("/performance/series", dashboardHandler.HandleSeries)
			protected.GET("/simulator", simulatorHandler.HandleSimulator)
			protected.POST("/simulator/scenario", simulatorHandler.HandleScenario)
			protected.DELETE("/simulator/scenario", simulatorHandler.HandleClearScenario)
			protected.GET("/datasets", datasetsHandler.HandleList)
			protected.PUT("/datasets/active", datasetsHandler.HandleSetActive)
			protected.GET("/imports", importHandler.HandleHistory)
			protected.GET("/export", exportHandler.HandleExport)

			restricted := protected.Group("/")
			restricted.Use(middleware.PermissionMiddleware(auth.PermissionImport))
			{
				restricted.POST("/import", importHandler.HandleImport)
				restricted.DELETE("/imports/:id", importHandler.HandleDeleteHistory)
				restricted.POST("/reset", importHandler.HandleReset)
			}
		}
	}
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP"})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	responses.Log.Infow("🚀 Servidor iniciado", "porta", port)

	if err := router.Run(":" + port); err != nil {
		log.Fatal("Falha ao iniciar o servidor: ", err)
	}
}
