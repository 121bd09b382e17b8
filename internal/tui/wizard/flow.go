// Package wizard runs the interactive init flow with huh forms.
package wizard

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	huh "github.com/charmbracelet/huh"
	"github.com/jakoblorz/go-treegen/internal/models"
	"github.com/jakoblorz/go-treegen/internal/tui"
)

// Flow asks for the shape of an example configuration
type Flow struct {
	theme    *huh.Theme
	defaults Answers
}

// Result is the outcome of a completed flow
type Result struct {
	Answers Answers
	Root    models.Node
}

// NewFlow constructs a Flow preset with defaults
func NewFlow(defaults Answers) *Flow {
	return &Flow{
		theme:    tui.NewHuhTheme(),
		defaults: defaults,
	}
}

// Run executes the forms sequentially; returns a nil result on user abort.
func (f *Flow) Run() (*Result, error) {
	a := f.defaults

	steps := []func(*Answers) error{f.askLayout, f.askContentKind, f.askContent}
	for _, step := range steps {
		if err := step(&a); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return nil, nil
			}
			return nil, err
		}
	}

	root, err := BuildTree(a)
	if err != nil {
		return nil, err
	}
	return &Result{Answers: a, Root: root}, nil
}

func (f *Flow) askLayout(a *Answers) error {
	files := strconv.Itoa(a.Files)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Root directory").
				Value(&a.RootName).
				Validate(models.ValidateEntryName),
			huh.NewSelect[string]().
				Title("Config format").
				Options(huh.NewOptions("json", "hcl")...).
				Value(&a.Format),
			huh.NewInput().
				Title("Number of files").
				Value(&files).
				Validate(validateCount),
		).
			Title("Tree Layout").
			Description("The example holds one directory of generated files."),
	).
		WithTheme(f.theme).
		WithShowHelp(true)

	if err := form.Run(); err != nil {
		return err
	}

	n, err := strconv.Atoi(strings.TrimSpace(files))
	if err != nil {
		return err
	}
	a.Files = n
	return nil
}

func (f *Flow) askContentKind(a *Answers) error {
	opts := []huh.Option[string]{
		huh.NewOption("bitstream: biased random bits", models.KindBitStream),
		huh.NewOption("sample: random pieces from a list", models.KindSample),
		huh.NewOption("cyclic: a repeated pattern", models.KindCyclic),
		huh.NewOption("literal: fixed text", models.KindLiteral),
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Options(opts...).
				Value(&a.ContentKind),
		).
			Title("File Content").
			Description("How should file contents be generated?"),
	).
		WithTheme(f.theme).
		WithShowHelp(true)

	return form.Run()
}

func (f *Flow) askContent(a *Answers) error {
	if a.ContentKind == models.KindLiteral {
		return nil
	}

	length := strconv.Itoa(a.Length)
	probability := strconv.FormatFloat(a.Probability, 'g', -1, 64)

	fields := []huh.Field{
		huh.NewInput().
			Title("Content length (bytes)").
			Value(&length).
			Validate(validateCount),
	}
	if a.ContentKind == models.KindBitStream {
		fields = append(fields, huh.NewInput().
			Title("Flip probability (0..1)").
			Value(&probability).
			Validate(validateProbability))
	}
	if a.ContentKind != models.KindCyclic {
		fields = append(fields, huh.NewInput().
			Title("Seed").
			Description("Leave empty for fresh randomness on every run.").
			Value(&a.Seed))
	}

	form := huh.NewForm(
		huh.NewGroup(fields...).
			Title("Content Details").
			Description(fmt.Sprintf("Settings for %s content.", a.ContentKind)),
	).
		WithTheme(f.theme).
		WithShowHelp(true)

	if err := form.Run(); err != nil {
		return err
	}

	var err error
	if a.Length, err = strconv.Atoi(strings.TrimSpace(length)); err != nil {
		return err
	}
	if a.Probability, err = strconv.ParseFloat(strings.TrimSpace(probability), 64); err != nil {
		return err
	}
	return nil
}

func validateCount(v string) error {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return fmt.Errorf("enter a whole number")
	}
	if n < 0 {
		return fmt.Errorf("must not be negative")
	}
	return nil
}

func validateProbability(v string) error {
	p, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || p < 0 || p > 1 {
		return fmt.Errorf("enter a number between 0 and 1")
	}
	return nil
}
