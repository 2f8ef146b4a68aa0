package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/teamsync/realtime/pkg/auth"
	"github.com/teamsync/realtime/pkg/realtime"
	"github.com/teamsync/realtime/pkg/snowflake"
)

func main() {
	if logPath := os.Getenv("GATEWAY_LOG"); logPath != "" {
		f, err := os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
		if err != nil {
			log.Fatalf("error opening file: %v", err)
		}
		defer f.Close()
		log.SetOutput(f)
	}

	kafkaBrokersStr := os.Getenv("KAFKA_BROKERS")
	if kafkaBrokersStr == "" {
		kafkaBrokersStr = "localhost:19092"
	}
	kafkaBrokers := strings.Split(kafkaBrokersStr, ",")

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	// Node ID must be unique per gateway instance so snowflake ids never
	// collide across instances.
	nodeID := int64(1)
	if s := os.Getenv("GATEWAY_NODE_ID"); s != "" {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			log.Fatalf("Invalid GATEWAY_NODE_ID: %v", err)
		}
		nodeID = n
	}
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		log.Fatalf("Failed to initialize snowflake node: %v", err)
	}

	kafkaTopic := "chat-events"

	rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
	defer rdb.Close()

	hub := realtime.NewHub(newRedisMirror(rdb))
	go hub.Run()
	defer hub.Close()

	pipeline := NewPipeline(kafkaBrokers, kafkaTopic, hub, node)
	defer pipeline.Close()
	go pipeline.RunFanout(context.Background())

	server := &Server{hub: hub, pipeline: pipeline}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		serveWs(hub, w, r)
	})
	mux.Handle("/messages", CORSMiddleware(auth.Middleware(http.HandlerFunc(server.handleCreateMessage))))
	mux.Handle("/notifications", CORSMiddleware(auth.Middleware(http.HandlerFunc(server.handleCreateNotification))))
	mux.Handle("/groups", CORSMiddleware(auth.Middleware(http.HandlerFunc(server.handleGroups))))
	mux.Handle("/groups/", CORSMiddleware(auth.Middleware(http.HandlerFunc(server.handleGroups))))
	mux.Handle("/workspaces/", CORSMiddleware(auth.Middleware(http.HandlerFunc(server.handlePresence))))

	addr := os.Getenv("GATEWAY_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	log.Printf("Gateway Service Starting on %s...", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatal(err)
	}
}
