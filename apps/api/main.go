package main

import (
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/teamsync/realtime/pkg/auth"
	"github.com/teamsync/realtime/pkg/db"
)

func CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*") // Allow all for dev, or specific origin
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization")

		if r.Method == "OPTIONS" {
			return
		}

		next.ServeHTTP(w, r)
	})
}

func main() {
	scyllaHostsStr := os.Getenv("SCYLLA_HOSTS")
	if scyllaHostsStr == "" {
		scyllaHostsStr = "localhost:9042"
	}
	scyllaHosts := strings.Split(scyllaHostsStr, ",")
	keyspace := "teamsync"

	session, err := db.NewSession(scyllaHosts, keyspace)
	if err != nil {
		log.Fatalf("Failed to connect to ScyllaDB: %v", err)
	}
	defer session.Close()

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	log.Println("API Service Starting on :8081...")

	// Public endpoint
	http.Handle("/login", CORSMiddleware(http.HandlerFunc(LoginHandler)))

	// Protected endpoints
	http.Handle("/history", CORSMiddleware(auth.Middleware(NewHistoryHandler(session))))

	// Workspace presence, read from the gateway's redis mirror
	// Route: /workspaces/{id}/presence
	http.Handle("/workspaces/", CORSMiddleware(auth.Middleware(NewPresenceHandler(redisAddr))))

	http.Handle("/conversations", CORSMiddleware(auth.Middleware(ConversationsHandler(session))))
	http.Handle("/conversations/read", CORSMiddleware(auth.Middleware(ReadHandler(session))))

	if err := http.ListenAndServe(":8081", nil); err != nil {
		log.Fatal(err)
	}
}
