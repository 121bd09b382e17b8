package cli

import (
	"bytes"
	"fmt"
	"path/filepath"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/jakoblorz/go-treegen/internal/filesystem"
	"github.com/jakoblorz/go-treegen/internal/materializer"
)

// SummaryData is the data passed to summary templates
type SummaryData struct {
	Config      string
	Description string
	Output      string
	Root        string
	DryRun      bool
	Files       int
	Directories int
	Bytes       int64
	Entries     []materializer.Entry
	Error       string
}

// DefaultSummaryTemplate is printed after generate when no template file is given
const DefaultSummaryTemplate = `{{ if .Error }}Failed{{ else }}Generated{{ end }} {{ .Root | default "nothing" }}{{ if .DryRun }} (dry run){{ end }}
  files:       {{ .Files }}
  directories: {{ .Directories }}
  bytes:       {{ .Bytes }}
{{- with .Description }}
  description: {{ . }}
{{- end }}
{{- with .Error }}
  error:       {{ . }}
{{- end }}
`

func newSummaryData(report *materializer.Report) SummaryData {
	return SummaryData{
		Root:        report.Root,
		Files:       report.Files,
		Directories: report.Directories,
		Bytes:       report.Bytes,
		Entries:     report.Entries,
	}
}

// parseSummaryTemplate parses a template file with the sprig functions
// available; an empty path selects DefaultSummaryTemplate
func parseSummaryTemplate(fs filesystem.FileSystem, path string) (*template.Template, error) {
	if path == "" {
		return template.New("summary").Funcs(sprig.TxtFuncMap()).Parse(DefaultSummaryTemplate)
	}

	data, err := fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read summary template: %w", err)
	}
	return template.New(filepath.Base(path)).Funcs(sprig.TxtFuncMap()).Parse(string(data))
}

func renderSummary(tmpl *template.Template, data SummaryData) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render summary: %w", err)
	}
	return buf.String(), nil
}
