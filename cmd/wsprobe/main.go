// Command wsprobe is a smoke and load client for the realtime notification
// endpoint. It exercises the full handshake: login, ticket issuance, upgrade,
// and message receipt.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
)

type metrics struct {
	connectionsAttempted int64
	connectionsSuccess   int64
	connectionsFailed    int64
	messagesReceived     int64
	errors               int64
}

var m metrics

func main() {
	host := flag.String("host", "localhost:8473", "API server host")
	identifier := flag.String("user", "koinonia_root", "Username or email to log in with")
	password := flag.String("password", "password123", "Password")
	clients := flag.Int("clients", 10, "Number of concurrent connections")
	duration := flag.Duration("duration", 30*time.Second, "Probe duration")
	flag.Parse()

	log.Printf("Probing ws endpoint on %s with %d clients for %v", *host, *clients, *duration)

	token, err := login(*host, *identifier, *password)
	if err != nil {
		log.Fatalf("Login failed: %v", err)
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	var wg sync.WaitGroup
	stop := make(chan struct{})

	for i := 0; i < *clients; i++ {
		wg.Add(1)
		go runClient(*host, token, i, stop, &wg)
		// Stagger connections so ticket issuance stays under rate limits.
		time.Sleep(50 * time.Millisecond)
	}

	select {
	case <-time.After(*duration):
		log.Println("Probe duration reached")
	case <-interrupt:
		log.Println("Interrupted")
	}

	close(stop)
	wg.Wait()

	log.Printf("attempted=%d success=%d failed=%d received=%d errors=%d",
		atomic.LoadInt64(&m.connectionsAttempted),
		atomic.LoadInt64(&m.connectionsSuccess),
		atomic.LoadInt64(&m.connectionsFailed),
		atomic.LoadInt64(&m.messagesReceived),
		atomic.LoadInt64(&m.errors),
	)
}

func login(host, identifier, password string) (string, error) {
	body, _ := json.Marshal(map[string]string{
		"identifier": identifier,
		"password":   password,
	})

	resp, err := http.Post(fmt.Sprintf("http://%s/api/auth/login", host),
		"application/json", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("login failed with status %d", resp.StatusCode)
	}

	var result struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	return result.Token, nil
}

func issueTicket(host, token string) (string, error) {
	req, err := http.NewRequest(http.MethodPost,
		fmt.Sprintf("http://%s/api/ws/ticket", host), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ticket issuance failed with status %d", resp.StatusCode)
	}

	var result struct {
		Ticket string `json:"ticket"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	return result.Ticket, nil
}

func runClient(host, token string, id int, stop <-chan struct{}, wg *sync.WaitGroup) {
	defer wg.Done()
	atomic.AddInt64(&m.connectionsAttempted, 1)

	ticket, err := issueTicket(host, token)
	if err != nil {
		atomic.AddInt64(&m.connectionsFailed, 1)
		log.Printf("client %d: %v", id, err)
		return
	}

	u := url.URL{Scheme: "ws", Host: host, Path: "/api/ws/",
		RawQuery: "ticket=" + url.QueryEscape(ticket)}

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		atomic.AddInt64(&m.connectionsFailed, 1)
		log.Printf("client %d: dial: %v", id, err)
		return
	}
	atomic.AddInt64(&m.connectionsSuccess, 1)
	defer func() { _ = conn.Close() }()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err,
					websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					atomic.AddInt64(&m.errors, 1)
				}
				return
			}
			atomic.AddInt64(&m.messagesReceived, 1)
		}
	}()

	select {
	case <-stop:
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		select {
		case <-done:
		case <-time.After(2 * time.Second):
		}
	case <-done:
	}
}
