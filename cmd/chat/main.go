package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"strings"
	"time"

	"devmate-be/pkg/chatclient"

	"github.com/fatih/color"
)

// Terminal chat client for poking at a running chat service without a
// browser: logs in, opens the conversation with -target and relays stdin.
func main() {
	server := flag.String("server", "http://localhost:3000", "chat service base URL")
	email := flag.String("email", "", "login email")
	password := flag.String("password", "", "login password")
	target := flag.String("target", "", "target user id to chat with")
	flag.Parse()

	if *email == "" || *password == "" || *target == "" {
		flag.Usage()
		os.Exit(2)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		log.Fatalf("cookie jar: %v", err)
	}
	httpClient := &http.Client{Jar: jar, Timeout: 10 * time.Second}

	me, err := login(httpClient, *server, *email, *password)
	if err != nil {
		log.Fatalf("login failed: %v", err)
	}
	color.Green("Logged in as %s %s", me.FirstName, me.LastName)

	wsURL, header, err := channelHandshake(jar, *server)
	if err != nil {
		log.Fatalf("websocket url: %v", err)
	}

	session, err := chatclient.NewSession(chatclient.SessionConfig{
		Identity: chatclient.Identity{
			UserID:    me.Id,
			FirstName: me.FirstName,
			LastName:  me.LastName,
		},
		TargetUserID: *target,
		Transport: chatclient.NewWebSocketTransport(chatclient.WebSocketConfig{
			URL:    wsURL,
			Header: header,
		}),
		History: chatclient.NewHTTPHistoryFetcher(*server+"/api", httpClient),
	})
	if err != nil {
		log.Fatalf("session: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := session.Start(ctx); err != nil {
		log.Fatalf("start session: %v", err)
	}
	defer session.Close()

	go renderLoop(session, me.Id)

	color.Cyan("Type a message and press enter. /quit to exit.")
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "/quit" {
			return
		}
		if line == "" {
			continue
		}
		session.Typing()
		if err := session.Send(line); err != nil {
			color.Red("send failed: %v", err)
		}
	}
}

type loginUser struct {
	Id        string `json:"_id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

func login(client *http.Client, server, email, password string) (*loginUser, error) {
	body, _ := json.Marshal(map[string]string{"emailId": email, "password": password})
	resp, err := client.Post(server+"/api/login", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var envelope struct {
		Data loginUser `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, err
	}
	if envelope.Data.Id == "" {
		return nil, fmt.Errorf("login response missing user id")
	}
	return &envelope.Data, nil
}

// channelHandshake derives the ws:// endpoint from the REST base URL and
// carries the session cookie on the upgrade request.
func channelHandshake(jar http.CookieJar, server string) (string, http.Header, error) {
	base, err := url.Parse(server)
	if err != nil {
		return "", nil, err
	}

	wsScheme := "ws"
	if base.Scheme == "https" {
		wsScheme = "wss"
	}
	wsURL := fmt.Sprintf("%s://%s/api/ws", wsScheme, base.Host)

	header := http.Header{}
	for _, c := range jar.Cookies(base) {
		header.Add("Cookie", c.String())
	}
	return wsURL, header, nil
}

func renderLoop(session *chatclient.Session, selfID string) {
	seen := 0
	typingShown := false
	unavailableShown := false
	ticker := time.NewTicker(300 * time.Millisecond)
	defer ticker.Stop()

	for range ticker.C {
		if session.TargetUnavailable() {
			if !unavailableShown {
				color.Red("conversation not available: you are not connected to this user")
			}
			unavailableShown = true
			continue
		}
		unavailableShown = false

		msgs := session.Messages()
		for ; seen < len(msgs); seen++ {
			printMessage(msgs[seen], selfID)
		}

		typing := session.PeerTyping()
		if typing && !typingShown {
			color.HiBlack("peer is typing...")
		}
		typingShown = typing
	}
}

func printMessage(m chatclient.Message, selfID string) {
	name := strings.TrimSpace(m.SenderFirstName + " " + m.SenderLastName)
	if name == "" {
		name = m.SenderID
	}
	stamp := m.CreatedAt.Local().Format("15:04")

	if m.SenderID == selfID {
		color.New(color.FgGreen).Printf("[%s] you: ", stamp)
	} else {
		color.New(color.FgBlue).Printf("[%s] %s: ", stamp, name)
	}
	fmt.Println(m.Content)
}
