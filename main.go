package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/example/placementbot/internal/bot"
	"github.com/example/placementbot/internal/config"
	"github.com/example/placementbot/internal/database"
	"github.com/example/placementbot/internal/excel"
	"github.com/example/placementbot/internal/quiz"
	"github.com/example/placementbot/internal/results"
	"github.com/example/placementbot/internal/scheduler"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ ERROR: %v. Set TELEGRAM_BOT_TOKEN (or BOT_TOKEN) in the environment or .env", err)
	}

	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Fatalf("Failed to open log file: %v", err)
		}
		defer f.Close()
		log.SetOutput(f)
	}

	// Load the question bank once; it is immutable afterwards
	bank := quiz.DefaultBank()
	if cfg.QuestionBankPath != "" {
		bank, err = excel.ImportBank(cfg.QuestionBankPath)
		if err != nil {
			log.Fatalf("Failed to load question bank: %v", err)
		}
		log.Printf("Loaded %d questions from %s", bank.Len(), cfg.QuestionBankPath)
	}

	// Подключаемся к базе данных
	db, err := database.Connect(database.Config{URL: cfg.DatabaseURL, Path: cfg.DatabasePath})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	repo := database.NewResultRepository(db)

	sink := results.Fanout(
		results.NewCSVSink(cfg.ResultsCSV),
		results.NewDBSink(repo),
	)

	controller := quiz.NewController(bank, sink)
	b := bot.New(cfg, controller, repo)

	// Создаем контекст с отменой
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Authorize before the scheduler can call SendReport
	if err := b.Connect(); err != nil {
		log.Fatalf("Failed to connect to Telegram: %v", err)
	}

	var sched *scheduler.Scheduler
	if cfg.SchedulerEnabled && len(cfg.AdminUserIDs) > 0 {
		sched = scheduler.New(repo, b, cfg.AdminUserIDs, cfg.ReportHour)
		if err := sched.Start(); err != nil {
			log.Printf("Error starting report scheduler: %v", err)
			sched = nil
		} else {
			log.Println("Report scheduler started")
		}
	}

	log.Println("🚀 Bot started. Press Ctrl+C to stop.")
	if err := b.Start(ctx); err != nil && err != context.Canceled {
		log.Printf("Bot error: %v", err)
	}

	if sched != nil {
		sched.Stop()
	}
	b.Stop()
	log.Println("Bot stopped successfully")
}
