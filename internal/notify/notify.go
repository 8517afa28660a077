// Package notify sends best-effort Telegram messages to owners and members.
// A message is sent at most once; failures are logged and never returned.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/pysugar/drivelink/internal/config"
	"github.com/pysugar/drivelink/internal/util"
)

// Button is one inline keyboard button.
type Button struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data"`
}

// Keyboard is a Telegram inline keyboard markup.
type Keyboard struct {
	InlineKeyboard [][]Button `json:"inline_keyboard"`
}

// Message is an outbound chat message.
type Message struct {
	ChatID      string    `json:"chat_id"`
	Text        string    `json:"text"`
	ReplyMarkup *Keyboard `json:"reply_markup,omitempty"`
}

// Notifier delivers messages. Notify reports whether the message was accepted.
type Notifier interface {
	Notify(ctx context.Context, msg Message) bool
}

// Telegram sends messages through the Bot API sendMessage method.
type Telegram struct {
	botToken string
	apiBase  string
	client   *http.Client
}

// NewTelegram creates a Telegram notifier. Without a bot token every Notify is a no-op.
func NewTelegram(cfg config.TelegramConfig) *Telegram {
	apiBase := strings.TrimRight(cfg.APIBase, "/")
	if apiBase == "" {
		apiBase = "https://api.telegram.org"
	}
	return &Telegram{
		botToken: cfg.BotToken,
		apiBase:  apiBase,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// Notify posts msg once. It never retries.
func (t *Telegram) Notify(ctx context.Context, msg Message) bool {
	if t.botToken == "" || msg.ChatID == "" {
		return false
	}

	body, err := json.Marshal(msg)
	if err != nil {
		log.Printf("⚠️ Telegram message encode failed: %v", err)
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.apiBase+"/bot"+t.botToken+"/sendMessage", bytes.NewReader(body))
	if err != nil {
		log.Printf("⚠️ Telegram request build failed: %v", err)
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		log.Printf("⚠️ Telegram sendMessage to %s failed: %v", msg.ChatID, err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		log.Printf("⚠️ Telegram sendMessage to %s returned %d: %s", msg.ChatID, resp.StatusCode, util.TruncateBytes(respBody))
		return false
	}
	io.Copy(io.Discard, resp.Body)
	return true
}

// Nop drops every message.
type Nop struct{}

func (Nop) Notify(context.Context, Message) bool { return false }

// Recorder keeps every message in memory. Used by tests.
type Recorder struct {
	mu       sync.Mutex
	messages []Message
	// Fail makes Notify report failure after recording.
	Fail bool
}

func (r *Recorder) Notify(_ context.Context, msg Message) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, msg)
	return !r.Fail
}

// Messages returns a copy of the recorded messages.
func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.messages...)
}

// To returns the texts sent to chatID.
func (r *Recorder) To(chatID string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var texts []string
	for _, m := range r.messages {
		if m.ChatID == chatID {
			texts = append(texts, m.Text)
		}
	}
	return texts
}
