package chat

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// MaxMessageLength bounds both the player input and the narrator response.
const MaxMessageLength = 20000

// maxSpeakerLength is the longest prefix treated as a speaker name.
const maxSpeakerLength = 50

// TurnRequest is one completed exchange: what the player typed and what the
// narrator answered, tags included.
type TurnRequest struct {
	GameID      uuid.UUID `json:"game_id,omitempty"`
	PlayerInput string    `json:"playerInput"`
	Response    string    `json:"response"`
}

const (
	ChatRoleUser   = "user"      // Player
	ChatRoleAgent  = "assistant" // Narrator
	ChatRoleSystem = "system"
)

// ChatMessage is a single message in the conversation, shaped the way
// OpenAI-compatible chat APIs expect it.
type ChatMessage struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

func (r *TurnRequest) Validate() error {
	if strings.TrimSpace(r.Response) == "" {
		return fmt.Errorf("response cannot be empty")
	}
	if n := utf8.RuneCountInString(r.Response); n > MaxMessageLength {
		return fmt.Errorf("response of %d characters exceeds maximum length %d", n, MaxMessageLength)
	}
	if n := utf8.RuneCountInString(r.PlayerInput); n > MaxMessageLength {
		return fmt.Errorf("player input of %d characters exceeds maximum length %d", n, MaxMessageLength)
	}
	return nil
}

// FormatWithPlayerName prefixes a message with the player's name unless it
// already starts with a speaker label such as "Narrator:".
func FormatWithPlayerName(message, playerName string) string {
	if i := strings.Index(message, ":"); i > 0 && i <= maxSpeakerLength {
		speaker := message[:i]
		if !strings.ContainsAny(speaker, ".!?\n") {
			return message
		}
	}
	return playerName + ": " + message
}

// Messages turns one exchange into history entries. An empty player input
// yields only the narrator message.
func Messages(playerInput, prose string) []ChatMessage {
	var out []ChatMessage
	if strings.TrimSpace(playerInput) != "" {
		out = append(out, ChatMessage{Role: ChatRoleUser, Content: playerInput})
	}
	return append(out, ChatMessage{Role: ChatRoleAgent, Content: prose})
}
