package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"

	"eventdesk/internal/announce"
	"eventdesk/internal/config"
	"eventdesk/internal/queue"
	"eventdesk/internal/store"
)

// Worker consumes welcome messages and plays them through the announcer
// service. Every failure here is logged and dropped; spoken welcomes are
// best-effort and must never hold up check-ins.
func main() {
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("shutdown signal received")
		cancel()
	}()

	redisClient := store.NewRedis(cfg.RedisAddr)

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, "eventdesk:announcements")
	}

	announcer := announce.New(cfg.AnnouncerURL, cfg.AnnouncerSkip)
	if !cfg.AnnouncerSkip {
		if err := announcer.Health(ctx); err != nil {
			log.Printf("WARNING: announcer not available: %v", err)
			log.Println("worker will keep retrying as messages arrive")
		} else {
			log.Println("announcer connected")
		}
	}

	messages, err := q.Consume(ctx)
	if err != nil {
		log.Fatalf("queue consume init failed: %v", err)
	}

	log.Println("worker started, waiting for messages...")
	for msg := range messages {
		if msg.Type != "welcome" {
			continue
		}
		var w announce.Welcome
		if err := json.Unmarshal(msg.Body, &w); err != nil {
			log.Printf("malformed welcome message dropped: %v", err)
			continue
		}
		if err := announcer.Speak(ctx, w); err != nil {
			log.Printf("welcome for %q not spoken: %v", w.StudentName, err)
			continue
		}
		log.Printf("welcomed %s", w.StudentName)
	}
}
