package wizard

import (
	"fmt"

	"github.com/jakoblorz/go-treegen/internal/models"
)

// Answers are the choices collected by the init flow
type Answers struct {
	RootName    string
	Format      string
	Files       int
	ContentKind string
	Length      int
	Probability float64
	Seed        string
}

// DefaultAnswers returns the values preselected in the forms
func DefaultAnswers() Answers {
	return Answers{
		RootName:    "out",
		Format:      "json",
		Files:       3,
		ContentKind: models.KindBitStream,
		Length:      64,
		Probability: 0.5,
	}
}

// BuildTree turns answers into a configuration tree: one directory
// holding Files files with the chosen content rule. A non-empty seed is
// extended per file so that files differ but stay reproducible.
func BuildTree(a Answers) (models.Node, error) {
	if err := models.ValidateEntryName(a.RootName); err != nil {
		return nil, fmt.Errorf("invalid root name: %w", err)
	}
	if a.Files < 0 {
		return nil, fmt.Errorf("file count must not be negative: %d", a.Files)
	}

	children := make([]models.Node, 0, a.Files)
	for i := range a.Files {
		content, err := contentRule(a, i)
		if err != nil {
			return nil, err
		}
		children = append(children, models.File{
			Name:    models.Literal{Value: fmt.Sprintf("file_%03d.bin", i)},
			Content: content,
		})
	}

	return models.Directory{Name: models.Literal{Value: a.RootName}, Children: children}, nil
}

func contentRule(a Answers, i int) (models.Rule, error) {
	var seed []byte
	if a.Seed != "" {
		seed = []byte(fmt.Sprintf("%s/%d", a.Seed, i))
	}

	switch a.ContentKind {
	case models.KindCyclic:
		return models.Cyclic{Source: []byte("treegen\n"), Length: a.Length}, nil
	case models.KindSample:
		return models.WeightedSample{
			Choices: [][]byte{[]byte("tree"), []byte("gen"), []byte(" "), []byte("\n")},
			Seed:    seed,
			Length:  a.Length,
		}, nil
	case models.KindBitStream:
		return models.BiasedBitStream{Probability: a.Probability, Seed: seed, Length: a.Length}, nil
	case models.KindLiteral:
		return models.Literal{Value: fmt.Sprintf("file %d\n", i)}, nil
	default:
		return nil, fmt.Errorf("unknown content kind %q", a.ContentKind)
	}
}
