package trial

import (
	"context"
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/culpritdev/culprit/internal/bisect"
)

// InteractiveOracle asks the operator for a verdict through a terminal
// form. Used by `culprit run --interactive` and whenever a trial needs a
// human eye instead of a command's exit code.
type InteractiveOracle struct{}

func (o *InteractiveOracle) Judge(ctx context.Context, t Trial) (Outcome, error) {
	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}

	title := fmt.Sprintf("Verdict for %s?", t.Short)
	if !t.Patchset.Empty() {
		title = fmt.Sprintf("Verdict for %s (+ %s)?", t.Short, t.Patchset)
	}

	var choice string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title(title).
				Options(
					huh.NewOption("good - the trial passed here", "good"),
					huh.NewOption("bad - the trial failed here", "bad"),
					huh.NewOption("skip - this commit cannot be judged", "skip"),
					huh.NewOption("skip range - name a recurring breakage", "skip-range"),
					huh.NewOption("abort - stop the run", "abort"),
				).
				Value(&choice),
		),
	)
	if err := form.Run(); err != nil {
		if err == huh.ErrUserAborted {
			return Outcome{}, ErrAborted
		}
		return Outcome{}, fmt.Errorf("verdict form: %w", err)
	}

	switch choice {
	case "good":
		return Outcome{Verdict: Good}, nil
	case "bad":
		return Outcome{Verdict: Bad}, nil
	case "skip":
		return Outcome{Verdict: Skip}, nil
	case "abort":
		return Outcome{}, ErrAborted
	}

	var name string
	nameForm := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Skip range name").
				Description("Commits inside the same breakage share this name").
				Placeholder("e.g., broken-build").
				Validate(bisect.ValidateRangeName).
				Value(&name),
		),
	)
	if err := nameForm.Run(); err != nil {
		if err == huh.ErrUserAborted {
			return Outcome{}, ErrAborted
		}
		return Outcome{}, fmt.Errorf("range name form: %w", err)
	}
	return Outcome{Verdict: Skip, Range: name}, nil
}
