// Command enqueue pushes one request onto the worker queue. It is a
// debugging aid for driving a worker without the API server.
//
//	enqueue -game <id> -type turn -file response.txt -input "I bow"
//	enqueue -game <id> -type tick
//	enqueue -game <id> -type rollback -turn 3
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	queueSvc "github.com/jwebster45206/saga-engine/internal/services/queue"
	"github.com/jwebster45206/saga-engine/pkg/queue"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	defaultURL := os.Getenv("REDIS_URL")
	if defaultURL == "" {
		defaultURL = "redis://localhost:6379"
	}

	fs := flag.NewFlagSet("enqueue", flag.ContinueOnError)
	fs.SetOutput(stderr)
	redisURL := fs.String("redis", defaultURL, "Redis URL")
	gameFlag := fs.String("game", "", "game id (required)")
	typeFlag := fs.String("type", string(queue.RequestTypeTurn), "request type: turn, tick or rollback")
	file := fs.String("file", "", "read the narrator response from this file (turn)")
	input := fs.String("input", "", "player input recorded with the turn")
	turn := fs.Int("turn", -1, "rollback target turn")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	req, err := buildRequest(*gameFlag, *typeFlag, *file, *input, *turn)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	client, err := queueSvc.NewClient(*redisURL, logger)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	q := queueSvc.NewRequestQueue(client)
	if err := q.Enqueue(ctx, req); err != nil {
		fmt.Fprintf(stderr, "Failed to enqueue request: %v\n", err)
		return 1
	}
	depth, err := q.Depth(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to read queue depth: %v\n", err)
		return 1
	}

	fmt.Fprintf(stdout, "Enqueued %s request %s for game %s\n", req.Type, req.RequestID, req.GameID)
	fmt.Fprintf(stdout, "Queue depth: %d\n", depth)
	return 0
}

func buildRequest(game, typ, file, input string, turn int) (*queue.Request, error) {
	gameID, err := uuid.Parse(game)
	if err != nil {
		return nil, fmt.Errorf("-game must be a game id: %w", err)
	}
	t := queue.RequestType(typ)
	if !t.Valid() {
		return nil, fmt.Errorf("unknown request type %q", typ)
	}

	req := queue.NewRequest(t, gameID)
	switch t {
	case queue.RequestTypeTurn:
		if file == "" {
			return nil, fmt.Errorf("-file is required for turn requests")
		}
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read response: %w", err)
		}
		req.Response = string(data)
		req.PlayerInput = input
	case queue.RequestTypeRollback:
		if turn < 0 {
			return nil, fmt.Errorf("-turn is required for rollback requests")
		}
		req.Turn = turn
	}
	return req, nil
}
