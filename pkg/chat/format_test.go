package chat

import (
	"strings"
	"testing"
)

func TestFormatWithPlayerName(t *testing.T) {
	tests := []struct {
		name       string
		message    string
		playerName string
		expected   string
	}{
		{
			name:       "adds player name prefix to plain message",
			message:    "I draw my sword.",
			playerName: "Lâm Phong",
			expected:   "Lâm Phong: I draw my sword.",
		},
		{
			name:       "preserves existing speaker prefix",
			message:    "Narrator: The mist parts.",
			playerName: "Lâm Phong",
			expected:   "Narrator: The mist parts.",
		},
		{
			name:       "preserves speaker name with spaces",
			message:    "Lý Tiêu Dao: Follow me.",
			playerName: "Lâm Phong",
			expected:   "Lý Tiêu Dao: Follow me.",
		},
		{
			name:       "colon after a sentence is not a speaker",
			message:    "I look up. The sky: red.",
			playerName: "Lâm Phong",
			expected:   "Lâm Phong: I look up. The sky: red.",
		},
		{
			name:       "handles empty message",
			message:    "",
			playerName: "Lâm Phong",
			expected:   "Lâm Phong: ",
		},
		{
			name:       "long prefix is not a speaker",
			message:    "This is a really really really really really long name: message",
			playerName: "Lâm Phong",
			expected:   "Lâm Phong: This is a really really really really really long name: message",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FormatWithPlayerName(tt.message, tt.playerName)
			if result != tt.expected {
				t.Errorf("FormatWithPlayerName(%q, %q) = %q; want %q",
					tt.message, tt.playerName, result, tt.expected)
			}
		})
	}
}

func TestTurnRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     TurnRequest
		wantErr bool
		errMsg  string
	}{
		{
			name: "valid turn",
			req:  TurnRequest{PlayerInput: "I bow.", Response: "The elder nods. [NPC_MEMORY: npc=Elder, entry=\"greeted\"]"},
		},
		{
			name: "player input is optional",
			req:  TurnRequest{Response: "Night falls."},
		},
		{
			name:    "empty response",
			req:     TurnRequest{PlayerInput: "I wait.", Response: "  "},
			wantErr: true,
			errMsg:  "cannot be empty",
		},
		{
			name:    "response too long",
			req:     TurnRequest{Response: strings.Repeat("a", MaxMessageLength+1)},
			wantErr: true,
			errMsg:  "exceeds maximum length",
		},
		{
			name: "length counts characters not bytes",
			req:  TurnRequest{Response: strings.Repeat("ệ", MaxMessageLength)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr && err != nil && !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("Validate() error = %v, want error containing %q", err, tt.errMsg)
			}
		})
	}
}

func TestMessages(t *testing.T) {
	msgs := Messages("I bow.", "The elder nods.")
	if len(msgs) != 2 || msgs[0].Role != ChatRoleUser || msgs[1].Role != ChatRoleAgent {
		t.Fatalf("Messages() = %+v", msgs)
	}
	if msgs := Messages("", "Night falls."); len(msgs) != 1 {
		t.Fatalf("Messages() with no input = %+v", msgs)
	}
}
