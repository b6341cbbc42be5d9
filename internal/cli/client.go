package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// APIError is a non-2xx response from the vault API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

type apiClient struct {
	baseURL string
	timeout time.Duration
}

func (c *apiClient) url(path string) string {
	return strings.TrimRight(c.baseURL, "/") + path
}

func (c *apiClient) get(path string, out any) error {
	return c.do(fiber.Get(c.url(path)), out)
}

// post sends body as JSON with a fresh Idempotency-Key.
func (c *apiClient) post(path string, body, out any) error {
	agent := fiber.Post(c.url(path)).
		JSON(body).
		Set("Idempotency-Key", uuid.NewString())
	return c.do(agent, out)
}

func (c *apiClient) do(agent *fiber.Agent, out any) error {
	if c.timeout > 0 {
		agent.Timeout(c.timeout)
	}
	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("request failed: %w", errors.Join(errs...))
	}
	if code >= fiber.StatusBadRequest {
		var payload struct {
			Error string `json:"error"`
		}
		msg := strings.TrimSpace(string(body))
		if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
			msg = payload.Error
		}
		return &APIError{Status: code, Message: msg}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
