package services

import (
	"context"

	"github.com/jwebster45206/saga-engine/pkg/chat"
)

// Planner is the model behind the autonomous tick. It returns raw JSON text
// for the scheduler to parse and validate.
type Planner interface {
	CompleteJSON(ctx context.Context, messages []chat.ChatMessage) (string, error)

	// Ready reports whether the planner is configured to serve requests.
	Ready(ctx context.Context) error

	// Name identifies the planner in health output.
	Name() string
}
