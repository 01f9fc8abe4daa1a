// ABOUTME: Conversation threads and chat message rows between a user and the coach
// ABOUTME: Includes deterministic title derivation from the first message
package models

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

// DefaultTitle is used when the first message yields no usable text
const DefaultTitle = "New Chat"

// maxTitleLen is the rune budget for a derived title before the ellipsis
const maxTitleLen = 50

// Role is the caller-facing author of a message
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Sender is the stored author of a message row
type Sender string

const (
	SenderUser  Sender = "user"
	SenderCoach Sender = "coach"
)

// SenderForRole maps a message role to the stored sender value
func SenderForRole(role Role) (Sender, error) {
	switch role {
	case RoleUser:
		return SenderUser, nil
	case RoleAssistant:
		return SenderCoach, nil
	}
	return "", errors.New("role must be user or assistant")
}

// ChatMessage is one appended row of a conversation
type ChatMessage struct {
	ID             int64     `json:"id"`
	ConversationID string    `json:"conversation_id"`
	UserID         string    `json:"user_id"`
	Content        string    `json:"content"`
	Sender         Sender    `json:"sender"`
	SenderName     string    `json:"sender_name,omitempty"`
	Title          string    `json:"title,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// Validate checks the fields required for an append
func (m *ChatMessage) Validate() error {
	if m.ConversationID == "" {
		return errors.New("conversation ID cannot be empty")
	}
	if m.UserID == "" {
		return errors.New("user ID cannot be empty")
	}
	if m.Sender != SenderUser && m.Sender != SenderCoach {
		return errors.New("invalid sender")
	}
	return nil
}

// Conversation summarizes a thread by its most recent message
type Conversation struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	LastMessage string    `json:"last_message"`
	LastSender  Sender    `json:"last_sender"`
	UpdatedAt   time.Time `json:"updated_at"`
}

var (
	imagePattern      = regexp.MustCompile(`!\[([^\]]*)\]\([^)]*\)`)
	linkPattern       = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	headingPattern    = regexp.MustCompile(`(?m)^\s{0,3}#{1,6}\s*`)
	quotePattern      = regexp.MustCompile(`(?m)^\s*>\s?`)
	listPattern       = regexp.MustCompile(`(?m)^\s*(?:[-+*]|\d+\.)\s+`)
	emphasisPattern   = regexp.MustCompile("\\*\\*|__|~~|[*`]")
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// StripMarkdown removes common markdown syntax and collapses whitespace
func StripMarkdown(s string) string {
	s = imagePattern.ReplaceAllString(s, "$1")
	s = linkPattern.ReplaceAllString(s, "$1")
	s = headingPattern.ReplaceAllString(s, "")
	s = quotePattern.ReplaceAllString(s, "")
	s = listPattern.ReplaceAllString(s, "")
	s = emphasisPattern.ReplaceAllString(s, "")
	s = whitespacePattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// DeriveTitle builds a conversation title from the first message:
// markdown stripped, first sentence, at most 50 characters plus "..." when cut.
func DeriveTitle(content string) string {
	text := StripMarkdown(content)
	if text == "" {
		return DefaultTitle
	}

	if end := sentenceEnd(text); end >= 0 {
		text = strings.TrimSpace(text[:end])
	}

	runes := []rune(text)
	if len(runes) > maxTitleLen {
		return strings.TrimSpace(string(runes[:maxTitleLen])) + "..."
	}
	if text == "" {
		return DefaultTitle
	}
	return text
}

// sentenceEnd returns the byte index of the first sentence terminator that is
// followed by whitespace or the end of text, or -1
func sentenceEnd(text string) int {
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '.', '!', '?':
			if i == len(text)-1 || text[i+1] == ' ' {
				return i
			}
		}
	}
	return -1
}
