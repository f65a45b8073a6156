package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"database/sql"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/budgieapp/budgie-server/internal/config"
	"github.com/budgieapp/budgie-server/internal/handler"
	"github.com/budgieapp/budgie-server/internal/jobs"
	"github.com/budgieapp/budgie-server/internal/middleware"
	"github.com/budgieapp/budgie-server/internal/repository"
	"github.com/budgieapp/budgie-server/internal/service"
	"github.com/budgieapp/budgie-server/internal/utils/email"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logLevel, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	// Initialize database
	db, err := sql.Open("postgres", cfg.DBConn)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}

	// Initialize layers
	repo := repository.NewRepository(db)
	svc := service.NewService(repo, logger, cfg)
	h := handler.NewHandler(svc)
	sender := email.NewSender(cfg, logger)

	// Background jobs: balance reconciliation and purchase reminders
	reconciler := jobs.NewReconciler(repo, logger, sender)
	notifier := jobs.NewNotifier(repo, logger, sender)
	cronJobs := jobs.Start(reconciler, notifier, logger)
	defer cronJobs.Stop()

	// Setup router
	r := mux.NewRouter()
	// Public routes
	r.HandleFunc("/register", h.Register).Methods("POST")
	r.HandleFunc("/login", h.Login).Methods("POST")
	// Protected routes
	authRouter := r.PathPrefix("/").Subrouter()
	authRouter.Use(middleware.AuthMiddleware(cfg))
	authRouter.HandleFunc("/settings", h.GetSettings).Methods("GET")
	authRouter.HandleFunc("/settings", h.UpdateSettings).Methods("PUT")
	authRouter.HandleFunc("/incomes", h.CreateIncome).Methods("POST")
	authRouter.HandleFunc("/incomes", h.ListIncomes).Methods("GET")
	authRouter.HandleFunc("/incomes/{id}", h.DeleteIncome).Methods("DELETE")
	authRouter.HandleFunc("/expenses", h.CreateExpense).Methods("POST")
	authRouter.HandleFunc("/expenses", h.ListExpenses).Methods("GET")
	authRouter.HandleFunc("/expenses/{id}", h.DeleteExpense).Methods("DELETE")
	authRouter.HandleFunc("/purchases", h.CreatePurchase).Methods("POST")
	authRouter.HandleFunc("/purchases", h.ListPurchases).Methods("GET")
	authRouter.HandleFunc("/purchases/{id}/purchased", h.MarkPurchased).Methods("POST")
	authRouter.HandleFunc("/purchases/{id}", h.DeletePurchase).Methods("DELETE")
	authRouter.HandleFunc("/checkpoints", h.CreateCheckpoint).Methods("POST")
	authRouter.HandleFunc("/checkpoints", h.ListCheckpoints).Methods("GET")
	authRouter.HandleFunc("/checkpoints/import", h.ImportStatement).Methods("POST")
	authRouter.HandleFunc("/schedule", h.Schedule).Methods("POST")
	authRouter.HandleFunc("/timeline", h.Timeline).Methods("GET")
	authRouter.HandleFunc("/widget", h.Widget).Methods("GET")

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	logger.Infof("Starting server on %s", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("Server failed: %v", err)
	}
}
