// Package cli implements the inkwell terminal client. It speaks the
// same websocket protocol as the web frontend, rendered with a
// bubbletea TUI.
package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/samefarrar/inkwell/internal/domain"
)

// ServerEvent is the decoded envelope for any message the server sends.
// Fields are populated per event type; the discriminator is Type.
type ServerEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`

	Assessment string   `json:"assessment"`
	Missing    []string `json:"missing"`
	Sufficient bool     `json:"sufficient"`

	Question string `json:"question"`
	Context  string `json:"context"`

	Query   string `json:"query"`
	Summary string `json:"summary"`

	KeyMaterial []string             `json:"key_material"`
	Nodes       []domain.OutlineNode `json:"nodes"`

	DraftIndex int    `json:"draft_index"`
	Title      string `json:"title"`
	Angle      string `json:"angle"`
	Content    string `json:"content"`
	Done       bool   `json:"done"`
	WordCount  int    `json:"word_count"`

	ID          string `json:"id"`
	Quote       string `json:"quote"`
	Start       int    `json:"start"`
	End         int    `json:"end"`
	Replacement string `json:"replacement"`
	Explanation string `json:"explanation"`
	RuleID      string `json:"rule_id"`
	Comment     string `json:"comment"`

	CommentID string `json:"comment_id"`
	OldText   string `json:"old_text"`
	NewText   string `json:"new_text"`
}

// Login authenticates against the REST API and returns a bearer token.
func Login(serverURL, email, password string) (string, error) {
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return "", err
	}
	resp, err := http.Post(serverURL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("login request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("login failed with status %d", resp.StatusCode)
	}
	var parsed struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decoding login response: %w", err)
	}
	if parsed.Token == "" {
		return "", fmt.Errorf("login response carried no token")
	}
	return parsed.Token, nil
}

// Client is one authenticated websocket session with the server.
type Client struct {
	conn *websocket.Conn
}

// Dial connects to the server's websocket endpoint with the token.
func Dial(serverURL, token string) (*Client, error) {
	wsEndpoint := "ws" + strings.TrimPrefix(serverURL, "http") + "/ws"
	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)

	conn, resp, err := websocket.DefaultDialer.Dial(wsEndpoint, header)
	if resp != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", wsEndpoint, err)
	}
	return &Client{conn: conn}, nil
}

// Send writes one client message.
func (c *Client) Send(v any) error {
	return c.conn.WriteJSON(v)
}

// ReadEvent blocks until the next server event arrives.
func (c *Client) ReadEvent() (ServerEvent, error) {
	var ev ServerEvent
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return ev, err
	}
	if err := json.Unmarshal(data, &ev); err != nil {
		return ev, fmt.Errorf("decoding server event: %w", err)
	}
	return ev, nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}
