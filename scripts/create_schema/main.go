package main

import (
	"log"

	"github.com/gocql/gocql"
)

func main() {
	cluster := gocql.NewCluster("localhost")
	cluster.Keyspace = "teamsync"
	cluster.Consistency = gocql.Quorum
	session, err := cluster.CreateSession()
	if err != nil {
		log.Fatal(err)
	}
	defer session.Close()

	err = session.Query(`
		CREATE TABLE IF NOT EXISTS messages (
			conversation_key text,
			id bigint,
			sender_id text,
			sender_name text,
			content text,
			timestamp timestamp,
			PRIMARY KEY (conversation_key, id)
		) WITH CLUSTERING ORDER BY (id DESC)
	`).Exec()
	if err != nil {
		log.Fatal(err)
	}

	err = session.Query(`
		CREATE TABLE IF NOT EXISTS user_conversations (
			user_id text,
			other_user_id text,
			last_updated timestamp,
			PRIMARY KEY (user_id, other_user_id)
		)
	`).Exec()
	if err != nil {
		log.Fatal(err)
	}

	err = session.Query(`
		CREATE TABLE IF NOT EXISTS conversation_counters (
			user_id text,
			other_user_id text,
			unread_count counter,
			PRIMARY KEY (user_id, other_user_id)
		)
	`).Exec()
	if err != nil {
		log.Fatal(err)
	}

	log.Println("Schema created successfully")
}
