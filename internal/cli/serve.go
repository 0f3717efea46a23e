package cli

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/hq040506/DL-student-assistant/internal/apis/middlewares"
	"github.com/hq040506/DL-student-assistant/internal/apis/routes"
	"github.com/hq040506/DL-student-assistant/internal/di"
)

func init() {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE:  runServe,
	}
	cmd.Flags().StringSlice("allow-origin", []string{"http://localhost:5173", "http://127.0.0.1:5173"}, "CORS allowed origins")

	RootCmd.AddCommand(cmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if env.JWTSecret == "" {
		return errors.New("ASSISTANT_JWT_SECRET is required to serve the API")
	}
	origins, _ := cmd.Flags().GetStringSlice("allow-origin")

	// Initialize dependencies
	di.Initialize(env)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		di.Shutdown(ctx)
	}()

	ginApp := gin.New()
	ginApp.Use(middlewares.RequestIDMiddleware())
	ginApp.Use(middlewares.RecoveryMiddleware())
	ginApp.Use(gin.Logger())
	if env.TracingEnabled {
		ginApp.Use(otelgin.Middleware("student-assistant"))
	}

	ginApp.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Accept",
			"Authorization",
			middlewares.RequestIDHeader,
		},
		ExposeHeaders:    []string{"Content-Length", "Content-Type", middlewares.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.SetupDefaultRoutes(ginApp)

	srv := &http.Server{
		Addr:    ":" + env.Port,
		Handler: ginApp,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Printf("Starting server on port %s", env.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
		close(serveErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err, ok := <-serveErr:
		if ok {
			return err
		}
	}

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return err
	}

	log.Println("Server exiting")
	return nil
}
