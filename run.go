package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v3"
	"github.com/wricardo/roversim/rover/engine"
	"github.com/wricardo/roversim/rover/mission"
	"github.com/wricardo/roversim/rover/program"
	"github.com/wricardo/roversim/rover/service"
)

// exitInvalidInput is the exit code for rejected input
const exitInvalidInput = 2

func runCommand() *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "run one simulation and print the final state",
		ArgsUsage: " ",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "x", Usage: "start x coordinate (0-4)"},
			&cli.IntFlag{Name: "y", Usage: "start y coordinate (0-4)"},
			&cli.StringFlag{Name: "facing", Value: "N", Usage: "start facing (N, E, S, W)"},
			&cli.StringFlag{
				Name:    "instructions",
				Aliases: []string{"i", "program"},
				Usage:   `instructions as text, e.g. "F,L,F,R" or "2F,R,3F"`,
			},
			&cli.StringFlag{
				Name:    "mission",
				Aliases: []string{"m"},
				Usage:   "run a mission from the missions directory instead",
			},
			&cli.BoolFlag{Name: "json", Usage: "print the full result as JSON"},
			&cli.BoolFlag{Name: "trace", Usage: "print every step"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			logger, err := newLogger(cmd)
			if err != nil {
				return err
			}

			var result *service.SimulationResult
			if id := cmd.String("mission"); id != "" {
				catalog, err := openCatalog(cmd, logger)
				if err != nil {
					return err
				}
				result, err = service.NewRoverService(catalog, logger, nil).RunMission(ctx, id)
				if err != nil {
					return exitError(err)
				}
			} else {
				req := service.SimulateRequest{
					X:       cmd.Int("x"),
					Y:       cmd.Int("y"),
					Facing:  cmd.String("facing"),
					Program: cmd.String("instructions"),
				}
				result, err = service.NewRoverService(nil, logger, nil).Simulate(ctx, req)
				if err != nil {
					return exitError(err)
				}
			}

			if err := printResult(cmd.Root().Writer, result, cmd.Bool("json"), cmd.Bool("trace")); err != nil {
				return err
			}
			if exp := result.Expectation; exp != nil && exp.Checked && !exp.Matched {
				return cli.Exit("expectation not met: "+exp.Detail, 1)
			}
			return nil
		},
	}
}

func checkCommand() *cli.Command {
	return &cli.Command{
		Name:  "check",
		Usage: "validate every mission file and compare expected outcomes",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			logger, err := newLogger(cmd)
			if err != nil {
				return err
			}
			catalog, err := openCatalog(cmd, logger)
			if err != nil {
				return err
			}

			reports, err := checkMissions(ctx, catalog, service.NewRoverService(catalog, logger, nil))
			if err != nil {
				return err
			}

			failed := writeReports(cmd.Root().Writer, reports)
			if failed > 0 {
				return cli.Exit(fmt.Sprintf("%d of %d missions failed", failed, len(reports)), 1)
			}
			return nil
		},
	}
}

// exitError maps rejected input to exit code 2 and passes other errors through
func exitError(err error) error {
	if errors.Is(err, engine.ErrInvalidInput) ||
		errors.Is(err, program.ErrSyntax) ||
		errors.Is(err, mission.ErrInvalidMission) ||
		errors.Is(err, mission.ErrMissionNotFound) {
		return cli.Exit(err.Error(), exitInvalidInput)
	}
	return err
}

// printResult writes a simulation result as text or JSON
func printResult(w io.Writer, result *service.SimulationResult, asJSON, trace bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	if trace {
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "STEP\tINSTR\tPOSITION\tFACING\tSCUFFS\t")
		for _, step := range result.Steps {
			mark := ""
			if step.Scuffed {
				mark = "scuff"
			}
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%s\n",
				step.Step, step.Instruction, step.Position, step.Facing.Symbol(), step.Scuffs, mark)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(w, "%d %d %s %d\n",
		result.Final.Position.X, result.Final.Position.Y, result.Final.Facing.Symbol(), result.Scuffs)
	return err
}

// missionReport is the outcome of checking one mission file
type missionReport struct {
	MissionID string
	OK        bool
	Detail    string
}

// checkMissions loads and runs every mission file in the catalog
func checkMissions(ctx context.Context, catalog *mission.Catalog, svc service.RoverService) ([]missionReport, error) {
	ids, err := catalog.IDs()
	if err != nil {
		return nil, err
	}

	reports := make([]missionReport, 0, len(ids))
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return reports, err
		}

		result, err := svc.RunMission(ctx, id)
		if err != nil {
			reports = append(reports, missionReport{MissionID: id, Detail: err.Error()})
			continue
		}

		report := missionReport{MissionID: id, OK: true, Detail: fmt.Sprintf("%s scuffs=%d", result.Final, result.Scuffs)}
		if exp := result.Expectation; exp != nil && exp.Checked {
			report.OK = exp.Matched
			report.Detail = exp.Detail
		}
		reports = append(reports, report)
	}
	return reports, nil
}

// writeReports prints one line per mission and returns the failure count
func writeReports(w io.Writer, reports []missionReport) int {
	failed := 0
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, r := range reports {
		status := "ok"
		if !r.OK {
			status = "FAIL"
			failed++
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", status, r.MissionID, strings.TrimSpace(r.Detail))
	}
	tw.Flush()
	fmt.Fprintf(w, "%d missions, %d failed\n", len(reports), failed)
	return failed
}
