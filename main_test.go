package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/urfave/cli/v3"
	"github.com/wricardo/roversim/api"
	"github.com/wricardo/roversim/rover/engine"
	"github.com/wricardo/roversim/rover/mission"
	"github.com/wricardo/roversim/rover/program"
	"github.com/wricardo/roversim/rover/service"
	"github.com/wricardo/roversim/transport/mcp"
)

func TestConstants(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty")
	}
	if AppName != "Rover Simulator" {
		t.Errorf("Expected app name Rover Simulator, got %s", AppName)
	}
}

func TestRootCommand(t *testing.T) {
	root := newRootCommand()

	if root.DefaultCommand != "serve" {
		t.Errorf("Expected default command serve, got %q", root.DefaultCommand)
	}
	for _, name := range []string{"serve", "mcp", "run", "check", "watch"} {
		if root.Command(name) == nil {
			t.Errorf("Expected subcommand %s", name)
		}
	}
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCommand()
	root.Writer = &out
	err := root.Run(context.Background(), append([]string{"roversim", "--log-level", "error"}, args...))
	return out.String(), err
}

func TestRunCommand(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "clean route",
			args: []string{"run", "--x", "0", "--y", "2", "--facing", "E", "--instructions", "F,L,F,R,F,F,F,R,F,F,R,R"},
			want: "4 1 N 0\n",
		},
		{
			name: "one scuff",
			args: []string{"run", "--x", "4", "--y", "4", "--facing", "S", "--instructions", "L F L L F F L F F F R F F"},
			want: "0 1 W 1\n",
		},
		{
			name: "repeat counts",
			args: []string{"run", "--x", "1", "--y", "3", "--facing", "N", "--program", "2F,L,2F,L,5F"},
			want: "0 0 S 3\n",
		},
		{
			name: "no instructions",
			args: []string{"run", "--x", "2", "--y", "2", "--facing", "W"},
			want: "2 2 W 0\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runCLI(t, tt.args...)
			if err != nil {
				t.Fatalf("run failed: %v", err)
			}
			if out != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, out)
			}
		})
	}
}

func TestRunCommandMission(t *testing.T) {
	out, err := runCLI(t, "--missions-dir", "missions", "run", "--mission", "west_wall")
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if out != "0 0 S 3\n" {
		t.Errorf("Expected 0 0 S 3, got %q", out)
	}
}

func TestCheckMissionsShipped(t *testing.T) {
	catalog, err := mission.NewCatalog("missions", nil)
	if err != nil {
		t.Fatalf("Failed to open shipped missions: %v", err)
	}

	reports, err := checkMissions(context.Background(), catalog, service.NewRoverService(catalog, nil, nil))
	if err != nil {
		t.Fatalf("checkMissions failed: %v", err)
	}
	if len(reports) != 3 {
		t.Fatalf("Expected 3 shipped missions, got %d", len(reports))
	}
	for _, r := range reports {
		if !r.OK {
			t.Errorf("Mission %s failed: %s", r.MissionID, r.Detail)
		}
	}
}

func TestCheckMissionsReportsFailures(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"good.json":     `{"name":"Good","description":"d","start":{"x":0,"y":0,"facing":"N"},"instructions":["F"],"expect":{"x":0,"y":1,"facing":"N","scuffs":0}}`,
		"wrong.json":    `{"name":"Wrong","description":"d","start":{"x":0,"y":0,"facing":"N"},"instructions":["F"],"expect":{"x":0,"y":2,"facing":"N","scuffs":0}}`,
		"off_grid.json": `{"name":"Off","description":"d","start":{"x":0,"y":5,"facing":"N"},"instructions":["F"]}`,
		"broken.toml":   `name = `,
	}
	for name, data := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(data), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}

	catalog, err := mission.NewCatalog(dir, nil)
	if err != nil {
		t.Fatalf("NewCatalog failed: %v", err)
	}
	reports, err := checkMissions(context.Background(), catalog, service.NewRoverService(catalog, nil, nil))
	if err != nil {
		t.Fatalf("checkMissions failed: %v", err)
	}

	status := make(map[string]missionReport)
	for _, r := range reports {
		status[r.MissionID] = r
	}
	if !status["good"].OK {
		t.Errorf("good should pass: %s", status["good"].Detail)
	}
	for _, id := range []string{"wrong", "off_grid", "broken"} {
		if status[id].OK {
			t.Errorf("%s should fail", id)
		}
	}
	if !strings.Contains(status["off_grid"].Detail, "(0,5)") {
		t.Errorf("Expected coordinates in detail, got %q", status["off_grid"].Detail)
	}

	var out bytes.Buffer
	if failed := writeReports(&out, reports); failed != 3 {
		t.Errorf("Expected 3 failures, got %d", failed)
	}
	if !strings.Contains(out.String(), "4 missions, 3 failed") {
		t.Errorf("Unexpected summary: %s", out.String())
	}
}

func TestExitError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"coordinates", &engine.InvalidStartCoordinatesError{X: 0, Y: 5}, exitInvalidInput},
		{"facing", fmt.Errorf("wrapped: %w", &engine.InvalidStartFacingError{Value: "Q"}), exitInvalidInput},
		{"syntax", fmt.Errorf("%w: bare count", program.ErrSyntax), exitInvalidInput},
		{"missing mission", fmt.Errorf("%w: nope", mission.ErrMissionNotFound), exitInvalidInput},
		{"other", errors.New("disk on fire"), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := exitError(tt.err)
			var coder cli.ExitCoder
			if tt.wantCode == 0 {
				if errors.As(err, &coder) {
					t.Errorf("Expected plain error, got exit code %d", coder.ExitCode())
				}
				return
			}
			if !errors.As(err, &coder) {
				t.Fatalf("Expected exit coder, got %v", err)
			}
			if coder.ExitCode() != tt.wantCode {
				t.Errorf("Expected exit code %d, got %d", tt.wantCode, coder.ExitCode())
			}
		})
	}
}

func TestPrintResultTrace(t *testing.T) {
	result, err := service.NewRoverService(nil, nil, nil).Simulate(context.Background(), service.SimulateRequest{
		X: 0, Y: 4, Facing: "N", Instructions: []string{"F", "R", "F"},
	})
	if err != nil {
		t.Fatalf("Simulate failed: %v", err)
	}

	var out bytes.Buffer
	if err := printResult(&out, result, false, true); err != nil {
		t.Fatalf("printResult failed: %v", err)
	}

	text := out.String()
	if !strings.Contains(text, "STEP") || !strings.Contains(text, "scuff") {
		t.Errorf("Expected a step table with a scuff, got:\n%s", text)
	}
	if !strings.HasSuffix(text, "1 4 E 1\n") {
		t.Errorf("Expected final line 1 4 E 1, got:\n%s", text)
	}
}

func TestNewHandlerRoutes(t *testing.T) {
	catalog, err := mission.NewCatalog("missions", nil)
	if err != nil {
		t.Fatalf("Failed to open shipped missions: %v", err)
	}
	svc := service.NewRoverService(catalog, nil, nil)
	handler := newHandler(api.NewServer(svc, nil, nil), mcp.NewClient("http://localhost:0"))

	req := httptest.NewRequest("GET", "/api/health", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("Expected /api/health 200, got %d", w.Code)
	}

	req = httptest.NewRequest("GET", "/mcp", nil)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected /mcp GET 405, got %d", w.Code)
	}
}

func TestAPIReachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	if !apiReachable(context.Background(), server.URL) {
		t.Error("Expected test server to be reachable")
	}
	server.Close()
	if apiReachable(context.Background(), server.URL) {
		t.Error("Expected closed server to be unreachable")
	}
}
