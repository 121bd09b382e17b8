package wizard

import (
	"fmt"
	"strings"

	"github.com/jakoblorz/go-treegen/internal/tui"
)

// RenderSuccess renders a summary after the example config was written.
func RenderSuccess(path string, a Answers) string {
	var b strings.Builder

	b.WriteString(tui.TitleStyle.Render("✓ Config Created"))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("Wrote %s (%s)\n", path, a.Format))
	b.WriteString("  " + tui.DescStyle.Render(fmt.Sprintf("%s/ with %d %s file(s)", a.RootName, a.Files, a.ContentKind)) + "\n")
	b.WriteString("\n")
	b.WriteString(tui.SubtleStyle.Render(fmt.Sprintf("Run: treegen generate %s", path)))
	b.WriteString("\n")

	return b.String()
}
