// Package mission provides a catalog of named, reusable rover simulations.
//
// The mission package handles:
//   - Loading mission definitions from JSON or TOML files
//   - Mission validation through the engine's input rules
//   - Caching, listing and saving missions
//   - Dropping cached missions when files change on disk
//
// Mission Format:
//
// A mission names a start state, an instruction list (or program text) and
// an optional expected outcome:
//
//	{
//	  "name": "Edge Run",
//	  "description": "Hugs the west wall",
//	  "start": {"x": 1, "y": 3, "facing": "N"},
//	  "instructions": ["F", "F", "L", "F"],
//	  "expect": {"x": 0, "y": 4, "facing": "W", "scuffs": 1}
//	}
//
// The same fields are accepted from a .toml file.
//
// Usage:
//
//	catalog, err := mission.NewCatalog("missions", logger)
//	if err != nil {
//		log.Fatal(err)
//	}
//	m, err := catalog.Load("edge_run")
package mission
