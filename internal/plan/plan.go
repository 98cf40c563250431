// Package plan loads declarative bisection plans from TOML files, so a
// whole session (endpoints, patch list, oracle command, limits) is
// reproducible from one checked-in file.
package plan

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Plan is one declarative bisection session.
type Plan struct {
	Plan        string   `toml:"plan"`
	Description string   `toml:"description"`
	Bad         string   `toml:"bad"`
	Good        []string `toml:"good"`
	Patches     []string `toml:"patches"`

	Oracle OracleSpec `toml:"oracle"`
	Run    RunSpec    `toml:"run"`
}

// OracleSpec configures how trials are judged.
type OracleSpec struct {
	Command     []string `toml:"command"`
	Env         []string `toml:"env"`
	Interactive bool     `toml:"interactive"`
	GoodCodes   []int    `toml:"good-codes"`
	SkipCodes   []int    `toml:"skip-codes"`
}

// RunSpec bounds and scopes the run.
type RunSpec struct {
	Trials  int    `toml:"trials"`
	RefBase string `toml:"ref-base"`
}

// Load reads and validates a plan file. The plan name defaults to the file
// name without its extension.
func Load(path string) (*Plan, error) {
	// #nosec G304 -- path is an explicit user-provided plan file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if p.Plan == "" {
		base := filepath.Base(path)
		p.Plan = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return p, nil
}

// Parse reads a plan from TOML bytes and validates it.
func Parse(data []byte) (*Plan, error) {
	var p Plan
	if err := toml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("toml: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Validate checks the plan for everything a run would trip over later.
func (p *Plan) Validate() error {
	var errs []string

	if p.Bad == "" {
		errs = append(errs, "bad: a bad revision is required")
	}
	if len(p.Good) == 0 {
		errs = append(errs, "good: at least one good revision is required")
	}
	for i, g := range p.Good {
		if g == "" {
			errs = append(errs, fmt.Sprintf("good[%d]: empty revision", i))
		}
	}
	for i, patch := range p.Patches {
		if patch == "" {
			errs = append(errs, fmt.Sprintf("patches[%d]: empty revision", i))
		}
	}
	if len(p.Oracle.Command) == 0 && !p.Oracle.Interactive {
		errs = append(errs, "oracle: a command is required unless interactive is set")
	}
	if len(p.Oracle.Command) > 0 && p.Oracle.Interactive {
		errs = append(errs, "oracle: command and interactive are mutually exclusive")
	}
	if p.Run.Trials < 0 {
		errs = append(errs, "run.trials: must be >= 0")
	}
	if p.Run.RefBase != "" && !strings.HasPrefix(p.Run.RefBase, "refs/") {
		errs = append(errs, fmt.Sprintf("run.ref-base: %q must start with refs/", p.Run.RefBase))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid plan:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
