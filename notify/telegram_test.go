package notify

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"avito-scraper/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitMessage(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		maxLen int
		want   []string
	}{
		{"fits", "a\nb", 10, []string{"a\nb"}},
		{"split on lines", "aaaa\nbbbb\ncccc", 10, []string{"aaaa\nbbbb", "cccc"}},
		{"long line cut", "abcdefghij\nxy", 4, []string{"abcd", "efgh", "ij", "xy"}},
		{"cyrillic line cut between runes", "квартира\nok", 5, []string{"кв", "ар", "ти", "ра", "ok"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitMessage(tt.text, tt.maxLen)
			assert.Equal(t, tt.want, got)
			for _, part := range got {
				assert.LessOrEqual(t, len(part), tt.maxLen)
				assert.True(t, utf8.ValidString(part), "part %q is not valid UTF-8", part)
			}
		})
	}
}

func TestFormatItems(t *testing.T) {
	msg := formatItems([]models.Item{
		{URL: "https://www.avito.ru/item/1", Pass: 3},
		{URL: "https://www.avito.ru/item/2", Pass: 3},
	})
	assert.Equal(t, "🆕 2 new listings (pass 3)\nhttps://www.avito.ru/item/1\nhttps://www.avito.ru/item/2", msg)
}

// fakeTelegram answers getMe and records sendMessage texts
type fakeTelegram struct {
	mu    sync.Mutex
	texts []string
}

func (f *fakeTelegram) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch {
	case strings.HasSuffix(r.URL.Path, "/getMe"):
		fmt.Fprint(w, `{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"avito","username":"avito_bot"}}`)
	case strings.HasSuffix(r.URL.Path, "/sendMessage"):
		f.mu.Lock()
		f.texts = append(f.texts, r.FormValue("text"))
		f.mu.Unlock()
		fmt.Fprint(w, `{"ok":true,"result":{"message_id":1,"date":0,"chat":{"id":42,"type":"private"}}}`)
	default:
		http.NotFound(w, r)
	}
}

func TestTelegramNotifier_Publish(t *testing.T) {
	fake := &fakeTelegram{}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	bot, err := tgbotapi.NewBotAPIWithClient("test-token", srv.URL+"/bot%s/%s", srv.Client())
	require.NoError(t, err)

	n := NewTelegramNotifierWithBot(bot, 42)
	err = n.Publish(context.Background(), []models.Item{{URL: "https://www.avito.ru/item/1", Pass: 1}})
	require.NoError(t, err)

	require.Len(t, fake.texts, 1)
	assert.Contains(t, fake.texts[0], "https://www.avito.ru/item/1")

	require.NoError(t, n.Publish(context.Background(), nil))
	assert.Len(t, fake.texts, 1, "empty batches are not sent")
}
