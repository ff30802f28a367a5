// Package pbx talks to the Asterisk REST Interface: channel control over
// HTTP and call events over the ARI websocket.
package pbx

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// Channel is the slice of an ARI channel resource the exchange cares about.
type Channel struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	State  string `json:"state"`
	Caller struct {
		Number string `json:"number"`
	} `json:"caller"`
	Connected struct {
		Number string `json:"number"`
	} `json:"connected"`
	Dialplan struct {
		Exten string `json:"exten"`
	} `json:"dialplan"`
}

// Event is one ARI websocket event. Only the fields the exchange reads are
// decoded; the rest ride along in Raw.
type Event struct {
	Type    string          `json:"type"`
	Channel *Channel        `json:"channel,omitempty"`
	Raw     json.RawMessage `json:"-"`
}

type Client struct {
	baseURL  string
	username string
	password string
	app      string
	http     *http.Client
	dialer   websocket.Dialer
}

func NewClient(baseURL, username, password, app string, client *http.Client) *Client {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		username: username,
		password: password,
		app:      app,
		http:     client,
		dialer:   websocket.Dialer{HandshakeTimeout: 5 * time.Second},
	}
}

// Channels lists the PBX's active channels.
func (c *Client) Channels(ctx context.Context) ([]Channel, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/channels", nil)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.username, c.password)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list channels: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list channels: status %d", resp.StatusCode)
	}

	var channels []Channel
	if err := json.NewDecoder(resp.Body).Decode(&channels); err != nil {
		return nil, fmt.Errorf("decode channels: %w", err)
	}
	return channels, nil
}

// HangupExtension drops the live channel whose caller or connected party
// matches the extension. A missing channel is not an error; the caller may
// already be gone.
func (c *Client) HangupExtension(ctx context.Context, extension string) error {
	channels, err := c.Channels(ctx)
	if err != nil {
		return err
	}

	var target *Channel
	for i := range channels {
		ch := &channels[i]
		if ch.Caller.Number == extension || ch.Connected.Number == extension {
			target = ch
			break
		}
	}
	if target == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/channels/%s/hangup", c.baseURL, url.PathEscape(target.ID)), nil)
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.username, c.password)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("hangup channel %s: %w", target.ID, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("hangup channel %s: status %d", target.ID, resp.StatusCode)
	}
	return nil
}

// Listen subscribes to the ARI event websocket and invokes handle for each
// event until the context is done. It redials with a short backoff when the
// PBX drops the connection.
func (c *Client) Listen(ctx context.Context, handle func(Event)) error {
	wsURL, err := c.eventsURL()
	if err != nil {
		return err
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := c.readEvents(ctx, wsURL, handle); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Printf("pbx: event stream: %v", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}
}

func (c *Client) eventsURL() (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("parse ARI base URL: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/events"
	q := u.Query()
	q.Set("app", c.app)
	q.Set("api_key", c.username+":"+c.password)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (c *Client) readEvents(ctx context.Context, wsURL string, handle func(Event)) error {
	conn, _, err := c.dialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}
		var ev Event
		if err := json.Unmarshal(payload, &ev); err != nil {
			log.Printf("pbx: malformed event: %v", err)
			continue
		}
		ev.Raw = payload
		handle(ev)
	}
}
