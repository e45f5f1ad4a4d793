package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"

	gorillaws "github.com/gorilla/websocket"
	"github.com/urfave/cli/v3"
	"github.com/wricardo/roversim/rover/engine"
	"github.com/wricardo/roversim/transport/websocket"
)

func watchCommand() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "follow the steps of live runs from a running server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "server",
				Value:   "localhost:8080",
				Usage:   "host:port of the rover server",
				Sources: cli.EnvVars("ROVER_SERVER"),
			},
			&cli.StringFlag{
				Name:  "run",
				Value: websocket.AllRuns,
				Usage: `run id to follow ("*" for every run)`,
			},
			&cli.BoolFlag{Name: "grid", Usage: "draw the grid after every step"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			wsURL := url.URL{Scheme: "ws", Host: cmd.String("server"), Path: "/ws"}
			q := wsURL.Query()
			q.Set("run", cmd.String("run"))
			wsURL.RawQuery = q.Encode()

			return watchRuns(ctx, wsURL.String(), cmd.Root().Writer, cmd.Bool("grid"))
		},
	}
}

// stepMessage is the client view of a hub message
type stepMessage struct {
	RunID string            `json:"run_id"`
	Event string            `json:"event"`
	Data  engine.TraceEvent `json:"data"`
}

// watchRuns prints every step streamed by the hub until ctx is done or the
// connection closes
func watchRuns(ctx context.Context, wsURL string, w io.Writer, grid bool) error {
	conn, _, err := gorillaws.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", wsURL, err)
	}
	defer conn.Close()

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || gorillaws.IsCloseError(err, gorillaws.CloseNormalClosure, gorillaws.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("websocket read error: %w", err)
		}

		var msg stepMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			fmt.Fprintf(w, "skipping malformed message: %v\n", err)
			continue
		}
		if msg.Event != websocket.EventStep {
			continue
		}

		fmt.Fprintln(w, formatStep(msg))
		if grid {
			fmt.Fprint(w, renderGrid(engine.RoverState{Position: msg.Data.Position, Facing: msg.Data.Facing}))
		}
	}
}

func formatStep(msg stepMessage) string {
	step := msg.Data
	line := fmt.Sprintf("[%s] %d %s -> %s %s scuffs=%d",
		shortID(msg.RunID), step.Step, step.Instruction, step.Position, step.Facing.Symbol(), step.Scuffs)
	if step.Scuffed {
		line += " (scuff)"
	}
	return line
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

var roverGlyphs = map[engine.Facing]string{
	engine.North: "^",
	engine.East:  ">",
	engine.South: "v",
	engine.West:  "<",
}

// renderGrid draws the grid with north at the top
func renderGrid(state engine.RoverState) string {
	var sb strings.Builder
	for y := engine.MaxCoordinate; y >= engine.MinCoordinate; y-- {
		for x := engine.MinCoordinate; x <= engine.MaxCoordinate; x++ {
			cell := "."
			if state.Position.X == x && state.Position.Y == y {
				cell = roverGlyphs[state.Facing]
			}
			sb.WriteString(cell)
			if x < engine.MaxCoordinate {
				sb.WriteString(" ")
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
