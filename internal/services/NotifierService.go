package services

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	json "github.com/goccy/go-json"

	"repx/internal/models"
	"repx/internal/providers"
	"repx/internal/structures"
)

const notifyTimeout = 10 * time.Second

type NotifierServiceInterface interface {
	NotifyNewRating(r *models.Rating)
}

// webhookMessage is the payload shape most chat webhooks accept.
type webhookMessage struct {
	Channel  string `json:"channel,omitempty"`
	Username string `json:"username,omitempty"`
	Text     string `json:"text,omitempty"`
}

// NotifierService pushes a webhook message for every genuinely new
// received rating. Updates to an existing rating stay quiet.
type NotifierService struct {
	webhookURL string
	channel    string
	username   string
	enabled    bool
	client     *http.Client
	logger     providers.Logger
}

func NewNotifierService(conf *structures.Config, logger providers.Logger) NotifierServiceInterface {
	return &NotifierService{
		webhookURL: conf.Notifier.WebhookURL,
		channel:    conf.Notifier.Channel,
		username:   conf.Notifier.Username,
		enabled:    conf.Notifier.Enabled && conf.Notifier.WebhookURL != "",
		client:     &http.Client{Timeout: notifyTimeout},
		logger:     logger,
	}
}

func (n *NotifierService) NotifyNewRating(r *models.Rating) {
	if !n.enabled {
		return
	}

	text := fmt.Sprintf("New review from **%s**: %d/5", r.Reviewer.Name(), r.Score)
	if r.Comment != "" {
		text += fmt.Sprintf(", %q", r.Comment)
	}

	if err := n.send(text); err != nil {
		n.logger.Warnf(providers.TypeApp, "webhook notify failed: %s", err)
	}
}

func (n *NotifierService) send(text string) error {
	payload, err := json.Marshal(webhookMessage{
		Channel:  n.channel,
		Username: n.username,
		Text:     text,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
