package mission

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/wricardo/roversim/rover/engine"
)

func createValidMission() *Mission {
	return &Mission{
		Name:         "West Wall",
		Description:  "Runs into the north and west walls",
		Start:        Start{X: 1, Y: 3, Facing: "N"},
		Instructions: []string{"F", "F", "L", "F", "F", "L", "F", "F", "F", "F", "F"},
		Expect:       &Expectation{X: 0, Y: 0, Facing: "S", Scuffs: 3},
	}
}

func writeMissionFile(t *testing.T, dir, filename string, data []byte) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, filename), data, 0644); err != nil {
		t.Fatalf("Failed to write mission file: %v", err)
	}
}

func writeJSONMission(t *testing.T, dir, id string, m *Mission) {
	t.Helper()
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		t.Fatalf("Failed to marshal mission: %v", err)
	}
	writeMissionFile(t, dir, id+".json", data)
}

const tomlMission = `
name = "East Start"
description = "Clean route from the west edge"
program = "F,L,F,R,3F,R,2F,2R"

[start]
x = 0
y = 2
facing = "E"

[expect]
x = 4
y = 1
facing = "N"
scuffs = 0
`

func TestNewCatalog(t *testing.T) {
	dir := t.TempDir()
	catalog, err := NewCatalog(dir, nil)
	if err != nil {
		t.Fatalf("Expected catalog for existing dir, got %v", err)
	}
	if catalog.Dir() != dir {
		t.Errorf("Expected dir %s, got %s", dir, catalog.Dir())
	}
	if _, err := NewCatalog("/non/existent/path", nil); err == nil {
		t.Error("Expected error for non-existent directory")
	}
}

func TestCatalog_LoadJSON(t *testing.T) {
	dir := t.TempDir()
	writeJSONMission(t, dir, "west_wall", createValidMission())

	catalog, err := NewCatalog(dir, nil)
	if err != nil {
		t.Fatalf("NewCatalog failed: %v", err)
	}

	m, err := catalog.Load("west_wall")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if m.Name != "West Wall" {
		t.Errorf("Expected name 'West Wall', got %q", m.Name)
	}

	// .json suffix is accepted and served from cache
	again, err := catalog.Load("west_wall.json")
	if err != nil {
		t.Fatalf("Load with extension failed: %v", err)
	}
	if again != m {
		t.Error("Expected cached mission pointer")
	}
}

func TestCatalog_LoadTOML(t *testing.T) {
	dir := t.TempDir()
	writeMissionFile(t, dir, "east_start.toml", []byte(tomlMission))

	catalog, _ := NewCatalog(dir, nil)
	m, err := catalog.Load("east_start")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	symbols, err := m.Symbols()
	if err != nil {
		t.Fatalf("Symbols failed: %v", err)
	}
	if len(symbols) != 12 {
		t.Errorf("Expected 12 expanded instructions, got %d: %v", len(symbols), symbols)
	}
	if m.Expect == nil || m.Expect.Facing != "N" {
		t.Errorf("Expected expectation facing N, got %+v", m.Expect)
	}
}

func TestCatalog_LoadErrors(t *testing.T) {
	dir := t.TempDir()

	bad := createValidMission()
	bad.Start.Y = 5
	writeJSONMission(t, dir, "off_grid", bad)
	writeMissionFile(t, dir, "broken.json", []byte("{not json"))

	catalog, _ := NewCatalog(dir, nil)

	if _, err := catalog.Load("missing"); !errors.Is(err, ErrMissionNotFound) {
		t.Errorf("Expected ErrMissionNotFound, got %v", err)
	}

	_, err := catalog.Load("off_grid")
	if !errors.Is(err, ErrInvalidMission) {
		t.Errorf("Expected ErrInvalidMission, got %v", err)
	}
	if !errors.Is(err, engine.ErrInvalidStartCoordinates) {
		t.Errorf("Expected wrapped engine error, got %v", err)
	}

	if _, err := catalog.Load("broken"); !errors.Is(err, ErrInvalidMission) {
		t.Errorf("Expected ErrInvalidMission for malformed JSON, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(m *Mission)
	}{
		{"missing name", func(m *Mission) { m.Name = "" }},
		{"missing description", func(m *Mission) { m.Description = "" }},
		{"bad facing", func(m *Mission) { m.Start.Facing = "Q" }},
		{"bad instruction", func(m *Mission) { m.Instructions = []string{"F", "B"} }},
		{"both forms", func(m *Mission) { m.Program = "F" }},
		{"bad program", func(m *Mission) { m.Instructions = nil; m.Program = "F,,L" }},
		{"expect off grid", func(m *Mission) { m.Expect.X = 7 }},
		{"expect bad facing", func(m *Mission) { m.Expect.Facing = "up" }},
		{"expect negative scuffs", func(m *Mission) { m.Expect.Scuffs = -1 }},
	}

	if err := Validate(createValidMission()); err != nil {
		t.Fatalf("Expected valid mission, got %v", err)
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			m := createValidMission()
			test.modify(m)
			if err := Validate(m); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}

func TestValidateChecksStartBeforeProgram(t *testing.T) {
	tests := []struct {
		name   string
		modify func(m *Mission)
		want   error
	}{
		{"off grid", func(m *Mission) { m.Start.Y = 5 }, engine.ErrInvalidStartCoordinates},
		{"bad facing", func(m *Mission) { m.Start.Facing = "Q" }, engine.ErrInvalidStartFacing},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			m := createValidMission()
			m.Instructions = nil
			m.Program = "F,,L"
			test.modify(m)
			if err := Validate(m); !errors.Is(err, test.want) {
				t.Errorf("Expected %v, got %v", test.want, err)
			}
		})
	}
}

func TestCatalog_List(t *testing.T) {
	dir := t.TempDir()
	writeJSONMission(t, dir, "west_wall", createValidMission())
	writeMissionFile(t, dir, "east_start.toml", []byte(tomlMission))
	writeMissionFile(t, dir, "broken.json", []byte("{"))
	writeMissionFile(t, dir, "notes.txt", []byte("ignored"))

	catalog, _ := NewCatalog(dir, nil)
	infos, err := catalog.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	if len(infos) != 2 {
		t.Fatalf("Expected 2 valid missions, got %d", len(infos))
	}
	if infos[0].MissionID != "east_start" || infos[1].MissionID != "west_wall" {
		t.Errorf("Expected sorted ids [east_start west_wall], got [%s %s]", infos[0].MissionID, infos[1].MissionID)
	}
	if infos[1].Instructions != 11 || !infos[1].HasExpect {
		t.Errorf("Unexpected info %+v", infos[1])
	}
}

func TestCatalog_IDsIncludesInvalidFiles(t *testing.T) {
	dir := t.TempDir()
	writeJSONMission(t, dir, "west_wall", createValidMission())
	writeMissionFile(t, dir, "broken.json", []byte("{"))
	writeMissionFile(t, dir, "broken.toml", []byte("name = "))
	writeMissionFile(t, dir, "notes.txt", []byte("ignored"))

	catalog, _ := NewCatalog(dir, nil)
	ids, err := catalog.IDs()
	if err != nil {
		t.Fatalf("IDs failed: %v", err)
	}

	if len(ids) != 2 || ids[0] != "broken" || ids[1] != "west_wall" {
		t.Errorf("Expected [broken west_wall], got %v", ids)
	}
}

func TestCatalog_Save(t *testing.T) {
	dir := t.TempDir()
	catalog, _ := NewCatalog(dir, nil)

	if err := catalog.Save("saved", createValidMission()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "saved.json")); err != nil {
		t.Errorf("Expected saved.json on disk: %v", err)
	}

	bad := createValidMission()
	bad.Name = ""
	if err := catalog.Save("bad", bad); !errors.Is(err, ErrInvalidMission) {
		t.Errorf("Expected ErrInvalidMission, got %v", err)
	}
	if err := catalog.Save("../escape", createValidMission()); !errors.Is(err, ErrInvalidMission) {
		t.Errorf("Expected ErrInvalidMission for path id, got %v", err)
	}
}

func TestCatalog_RefreshReloadsFromDisk(t *testing.T) {
	dir := t.TempDir()
	writeJSONMission(t, dir, "m", createValidMission())

	catalog, _ := NewCatalog(dir, nil)
	if _, err := catalog.Load("m"); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	updated := createValidMission()
	updated.Name = "Renamed"
	writeJSONMission(t, dir, "m", updated)

	catalog.Refresh()
	m, err := catalog.Load("m")
	if err != nil {
		t.Fatalf("Load after refresh failed: %v", err)
	}
	if m.Name != "Renamed" {
		t.Errorf("Expected reloaded name 'Renamed', got %q", m.Name)
	}
}

func TestCatalog_WatchEvictsChangedMissions(t *testing.T) {
	dir := t.TempDir()
	writeJSONMission(t, dir, "m", createValidMission())

	catalog, _ := NewCatalog(dir, nil)
	if _, err := catalog.Load("m"); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	ready := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := catalog.Watch(ctx, ready); err != nil {
			t.Errorf("Watch failed: %v", err)
		}
	}()
	defer func() {
		cancel()
		wg.Wait()
	}()

	select {
	case <-ready:
	case <-time.After(2 * time.Second):
		t.Fatal("Watcher did not start")
	}

	updated := createValidMission()
	updated.Name = "Changed On Disk"
	writeJSONMission(t, dir, "m", updated)

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		m, err := catalog.Load("m")
		if err == nil && m.Name == "Changed On Disk" {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Error("Expected cached mission to be evicted after file change")
}

func TestVerify(t *testing.T) {
	m := createValidMission()
	final := engine.RoverState{Position: engine.Coordinates{X: 0, Y: 0}, Facing: engine.South}

	if ok, msg := Verify(m, final, 3); !ok {
		t.Errorf("Expected match, got %q", msg)
	}
	if ok, _ := Verify(m, final, 2); ok {
		t.Error("Expected mismatch on scuff count")
	}

	m.Expect = nil
	if ok, _ := Verify(m, final, 99); !ok {
		t.Error("Missions without expectation always match")
	}
}
