package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/teamsync/realtime/pkg/event"
	"github.com/teamsync/realtime/pkg/model"
)

type LoginResponse struct {
	Token string `json:"token"`
}

func login(apiAddr, userID, name, workspaceID string) (string, error) {
	reqBody, _ := json.Marshal(map[string]string{
		"userId":      userID,
		"name":        name,
		"email":       userID + "@example.com",
		"workspaceId": workspaceID,
	})
	resp, err := http.Post(apiAddr+"/login", "application/json", bytes.NewBuffer(reqBody))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("login failed: %s", string(body))
	}

	var loginResp LoginResponse
	if err := json.NewDecoder(resp.Body).Decode(&loginResp); err != nil {
		return "", err
	}

	return loginResp.Token, nil
}

func send(c *websocket.Conn, t event.Type, payload any) error {
	env, err := event.New(t, payload)
	if err != nil {
		return err
	}
	return c.WriteJSON(env)
}

func postMessage(gatewayAddr, token, conversationID, kind, recipient, text string) error {
	body, _ := json.Marshal(map[string]string{
		"conversationId": conversationID,
		"type":           kind,
		"recipientId":    recipient,
		"content":        text,
	})
	req, _ := http.NewRequest("POST", "http://"+gatewayAddr+"/messages", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("send failed: %s", string(raw))
	}
	return nil
}

func render(env event.Envelope) {
	switch env.Type {
	case event.TypeOnlineUsers:
		var p event.OnlineUsers
		if env.Decode(&p) == nil {
			names := make([]string, 0, len(p.Users))
			for _, u := range p.Users {
				names = append(names, u.UserName)
			}
			fmt.Printf("\r** online: %s\n> ", strings.Join(names, ", "))
		}
	case event.TypeUserOnline:
		var p event.UserOnline
		if env.Decode(&p) == nil {
			fmt.Printf("\r** %s is online\n> ", p.UserName)
		}
	case event.TypeUserOffline:
		var p event.UserOffline
		if env.Decode(&p) == nil {
			fmt.Printf("\r** %s went offline\n> ", p.UserID)
		}
	case event.TypeUserTyping:
		var p event.UserTyping
		if env.Decode(&p) == nil {
			fmt.Printf("\r%s is typing...      \n> ", p.UserName)
		}
	case event.TypeNewMessage:
		var m model.Message
		if env.Decode(&m) == nil {
			fmt.Printf("\r%s: %s\n> ", m.SenderName, m.Content)
		}
	case event.TypeMessageReadReceipt:
		var p event.ReadReceipt
		if env.Decode(&p) == nil {
			fmt.Printf("\r** %s read message %d\n> ", p.ReadBy.UserName, p.MessageID)
		}
	case event.TypeAuthError:
		var p event.AuthError
		if env.Decode(&p) == nil {
			fmt.Printf("\r!! auth error: %s\n> ", p.Message)
		}
	default:
		fmt.Printf("\r** %s: %s\n> ", env.Type, string(env.Payload))
	}
}

func main() {
	gatewayAddr := flag.String("addr", "localhost:8080", "gateway service address")
	apiAddr := flag.String("api", "http://localhost:8081", "api service address")
	userID := flag.String("user", "user1", "user id")
	name := flag.String("name", "", "display name (defaults to user id)")
	workspaceID := flag.String("workspace", "w1", "workspace id")
	groupID := flag.String("group", "", "group conversation to join")
	directID := flag.String("direct", "", "direct conversation to join (overrides -group)")
	recipient := flag.String("to", "", "recipient user id for direct messages")
	flag.Parse()

	if *name == "" {
		*name = *userID
	}

	conversationID, kind := *groupID, event.KindGroup
	if *directID != "" {
		conversationID, kind = *directID, event.KindDirect
	}
	if conversationID == "" {
		conversationID = "general"
	}

	// 1. Login to get token
	log.Printf("Logging in as %s...", *userID)
	token, err := login(*apiAddr, *userID, *name, *workspaceID)
	if err != nil {
		log.Fatal("Login failed:", err)
	}
	log.Printf("Login successful. Token: %s...", token[:10])

	// 2. Connect to the gateway
	u := url.URL{Scheme: "ws", Host: *gatewayAddr, Path: "/ws"}
	log.Printf("connecting to %s", u.String())

	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatal("dial:", err)
	}
	defer c.Close()

	// 3. Authenticate, then join the conversation
	if err := send(c, event.TypeAuthenticate, event.Authenticate{Token: token}); err != nil {
		log.Fatal("authenticate:", err)
	}
	ref := event.ConversationRef{ConversationID: conversationID, Kind: kind}
	if err := send(c, event.TypeJoinConversation, ref); err != nil {
		log.Fatal("join:", err)
	}

	done := make(chan struct{})

	go func() {
		defer close(done)
		for {
			var env event.Envelope
			if err := c.ReadJSON(&env); err != nil {
				log.Println("read:", err)
				return
			}
			render(env)
		}
	}()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	// 4. Read from stdin and send events
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		fmt.Print("> ")
		for scanner.Scan() {
			text := scanner.Text()
			if text == "" {
				fmt.Print("> ")
				continue
			}

			switch {
			case text == "/quit":
				close(interrupt)
				return
			case text == "/typing":
				if err := send(c, event.TypeTypingStart, ref); err != nil {
					log.Println("write:", err)
					return
				}
			case text == "/stop":
				if err := send(c, event.TypeTypingStop, ref); err != nil {
					log.Println("write:", err)
					return
				}
			case strings.HasPrefix(text, "/read "):
				id, err := strconv.ParseInt(strings.TrimPrefix(text, "/read "), 10, 64)
				if err != nil {
					fmt.Print("usage: /read <message id>\n> ")
					continue
				}
				p := event.MessageRead{MessageID: id, ConversationID: conversationID, Kind: kind}
				if err := send(c, event.TypeMessageRead, p); err != nil {
					log.Println("write:", err)
					return
				}
			default:
				// Chat messages go through the HTTP surface; the gateway
				// broadcasts them back over the socket.
				if err := postMessage(*gatewayAddr, token, conversationID, kind, *recipient, text); err != nil {
					log.Println("send:", err)
				}
			}
			fmt.Print("> ")
		}
	}()

	for {
		select {
		case <-done:
			return
		case <-interrupt:
			log.Println("interrupt")

			// Cleanly close the connection by sending a close message and then
			// waiting (with timeout) for the server to close the connection.
			err := c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			if err != nil {
				log.Println("write close:", err)
				return
			}
			select {
			case <-done:
			case <-time.After(time.Second):
			}
			return
		}
	}
}
