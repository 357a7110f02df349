package mail

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opencatalog/catalog-notifier/internal/model"
)

func TestBuildMessage(t *testing.T) {
	cfg := model.SMTPConfig{
		From:     "notify@catalog.example.com",
		FromName: "Example Catalog",
	}

	msg, err := buildMessage(
		cfg,
		"Alice Jones", "alice@example.com",
		"2 new activities from Example Catalog",
		"Hello Alice,\n\nYou have new activity.\n",
	)
	require.NoError(t, err)

	assert.Contains(t, msg, `From: "Example Catalog" <notify@catalog.example.com>`)
	assert.Contains(t, msg, `To: "Alice Jones" <alice@example.com>`)
	assert.Contains(t, msg, "Subject: 2 new activities from Example Catalog")
	assert.Contains(t, msg, "Date: ")
	assert.Contains(t, msg, "You have new activity.")

	// Headers come before the blank line, the body after it.
	headerEnd := strings.Index(msg, "\r\n\r\n")
	require.Greater(t, headerEnd, 0)
	assert.Contains(t, msg[:headerEnd], "Subject:")
}

func TestBuildMessageNoDisplayName(t *testing.T) {
	cfg := model.SMTPConfig{From: "notify@catalog.example.com"}

	msg, err := buildMessage(cfg, "", "bob@example.com", "hi", "body")
	require.NoError(t, err)

	assert.Contains(t, msg, "<bob@example.com>")
}

func TestMailerError(t *testing.T) {
	err := &MailerError{Recipient: "alice@example.com", Err: assert.AnError}

	assert.True(t, IsMailerError(err))
	assert.False(t, IsMailerError(assert.AnError))
	assert.Contains(t, err.Error(), "alice@example.com")
}
