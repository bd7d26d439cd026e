package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"giftwise-backend/internal/common/logger"
)

const apiBaseURL = "https://api.telegram.org"

// Notifier sends claim notifications to list owners through the Telegram
// bot API. Owner ids are the Telegram user ids produced by the init-data
// middleware, so they double as chat ids.
type Notifier struct {
	httpClient *http.Client
	token      string
}

// Response is the envelope every bot API call returns.
type Response struct {
	Ok          bool   `json:"ok"`
	Description string `json:"description,omitempty"`
}

func NewNotifier(token string) *Notifier {
	return &Notifier{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		token: token,
	}
}

// NotifyClaim tells the list owner which gift was claimed and by whom.
func (n *Notifier) NotifyClaim(ctx context.Context, ownerID, listTitle, giftTitle, claimedBy string) error {
	chatID, err := strconv.ParseInt(ownerID, 10, 64)
	if err != nil {
		return fmt.Errorf("owner id %q is not a telegram chat id: %w", ownerID, err)
	}

	text := fmt.Sprintf("🎁 %s claimed “%s” from your list “%s”.", claimedBy, giftTitle, listTitle)
	return n.sendMessage(ctx, chatID, text)
}

func (n *Notifier) sendMessage(ctx context.Context, chatID int64, text string) error {
	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", apiBaseURL, n.token)
	params := url.Values{
		"chat_id": {strconv.FormatInt(chatID, 10)},
		"text":    {text},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(params.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var response Response
	if err := json.Unmarshal(body, &response); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	if !response.Ok {
		return fmt.Errorf("telegram API error: %s", response.Description)
	}

	logger.Debug().
		Int64("chat_id", chatID).
		Msg("Claim notification sent")
	return nil
}
