package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"time"

	"github.com/fielia/club-services/internal/membersvc/models"
	"github.com/fielia/club-services/internal/membersvc/service"
)

// Errors the kiosk flow branches on. Anything else is surfaced verbatim to
// the operator.
var (
	ErrNotFound     = errors.New("card not found")
	ErrUnauthorized = errors.New("unauthorized")
)

// Client talks to the member service. The session cookie set by login lives
// in the jar, every later call rides on it.
type Client struct {
	base string
	http *http.Client
}

func New(base string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	return &Client{
		base: base,
		http: &http.Client{
			Jar:     jar,
			Timeout: 15 * time.Second,
		},
	}, nil
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reqBody *bytes.Buffer
	if body != nil {
		reqBody = &bytes.Buffer{}
		if err := json.NewEncoder(reqBody).Encode(body); err != nil {
			return err
		}
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	rsp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer rsp.Body.Close()

	var env envelope
	if err := json.NewDecoder(rsp.Body).Decode(&env); err != nil {
		return fmt.Errorf("malformed response from %s: %w", path, err)
	}

	if !env.Success {
		switch rsp.StatusCode {
		case http.StatusNotFound:
			return ErrNotFound
		case http.StatusUnauthorized:
			return ErrUnauthorized
		default:
			return errors.New(env.Error)
		}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("malformed payload from %s: %w", path, err)
		}
	}

	return nil
}

func (c *Client) Login(ctx context.Context, username, password string) error {
	body := map[string]string{"username": username, "password": password}
	return c.do(ctx, http.MethodPost, "/v1/auth/login", body, nil)
}

func (c *Client) LookupCard(ctx context.Context, uuid string) (*models.Card, error) {
	var card models.Card
	if err := c.do(ctx, http.MethodGet, "/v1/cards/"+uuid, nil, &card); err != nil {
		return nil, err
	}
	return &card, nil
}

func (c *Client) CreateCard(ctx context.Context, in service.CardInput) (*models.Card, error) {
	var card models.Card
	if err := c.do(ctx, http.MethodPost, "/v1/cards", in, &card); err != nil {
		return nil, err
	}
	return &card, nil
}

func (c *Client) UpdateCard(ctx context.Context, uuid string, in service.CardInput) (*models.Card, error) {
	var card models.Card
	if err := c.do(ctx, http.MethodPut, "/v1/cards/"+uuid, in, &card); err != nil {
		return nil, err
	}
	return &card, nil
}

func (c *Client) ListCards(ctx context.Context) ([]models.Card, error) {
	var cards []models.Card
	if err := c.do(ctx, http.MethodGet, "/v1/cards", nil, &cards); err != nil {
		return nil, err
	}
	return cards, nil
}
