package cli

import (
	"fmt"
	"math/rand/v2"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const runDirAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

var runDirAdjectives = []string{
	"amber", "ancient", "autumn", "bare", "bent", "bitter", "blooming", "brisk",
	"broad", "bushy", "cedar", "chilly", "clear", "cold", "crisp", "curly",
	"damp", "dappled", "deep", "dense", "dewy", "dry", "dusky", "early",
	"evergreen", "faded", "fallen", "fern", "fresh", "frosty", "gnarled", "green",
	"grey", "hidden", "hollow", "humid", "knotty", "late", "leafy", "lichen",
	"lonely", "lush", "misty", "mossy", "muddy", "narrow", "old", "pale",
	"quiet", "rainy", "rooted", "rough", "rustling", "sandy", "shady", "silent",
	"silver", "sleepy", "slender", "small", "snowy", "soft", "sparse", "spring",
	"still", "stony", "summer", "sunny", "tall", "tangled", "thick", "thorny",
	"twisted", "velvet", "wandering", "warm", "weathered", "wet", "wild", "windy",
	"winter", "wispy", "wooden", "young",
}

var runDirNouns = []string{
	"acorn", "alder", "aspen", "bark", "beech", "berry", "birch", "bough",
	"bramble", "branch", "brook", "bud", "burrow", "canopy", "catkin", "cedar",
	"clearing", "cone", "copse", "creek", "cypress", "dell", "elm", "fern",
	"fir", "glade", "grove", "hazel", "heath", "hedge", "hemlock", "hickory",
	"holly", "juniper", "larch", "laurel", "leaf", "linden", "log", "maple",
	"meadow", "moss", "nut", "oak", "orchard", "pine", "pinecone", "poplar",
	"rowan", "root", "sapling", "seed", "shrub", "spruce", "stump", "sycamore",
	"thicket", "thorn", "timber", "trail", "trunk", "twig", "vine", "walnut",
	"willow", "yew",
}

// newRunDirName returns a fresh directory name like "mossy_birch_k3x9q0ab"
func newRunDirName() (string, error) {
	adjective := runDirAdjectives[rand.IntN(len(runDirAdjectives))]
	noun := runDirNouns[rand.IntN(len(runDirNouns))]

	id, err := gonanoid.Generate(runDirAlphabet, 8)
	if err != nil {
		return "", fmt.Errorf("failed to generate nanoid: %w", err)
	}

	return fmt.Sprintf("%s_%s_%s", adjective, noun, id), nil
}
