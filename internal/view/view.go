// Package view renders session snapshots as plain text.
package view

import (
	"fmt"
	"io"
	"strings"
	"text/template"
	"time"

	"github.com/Masterminds/sprig"
	"github.com/leandrodaf/midiguess/sdk/contracts"
)

const barWidth = 20

const statusTemplate = `{{- if not .Loaded -}}
no song loaded
{{- else -}}
{{ .State.String | upper }} {{ clock .Position }} / {{ clock .Duration }} [{{ bar .Position .Duration }}] tokens {{ .Tokens }} guesses {{ .Guesses }}{{ if .Solved }} SOLVED{{ end }}
{{- range .Tracks }}
{{ printf "%3d" .ID }} {{ if .Muted }}muted{{ else }}on   {{ end }} {{ .Name | trunc 28 | printf "%-28s" }} {{ .Priority }}
{{- end }}
{{- end -}}
`

// Renderer formats snapshots. It never shows the song title.
type Renderer struct {
	tmpl *template.Template
}

// New parses the built-in status template.
func New() (*Renderer, error) {
	return NewWithTemplate(statusTemplate)
}

// NewWithTemplate parses a custom template. The sprig functions plus clock
// and bar are available; the data is a contracts.Snapshot.
func NewWithTemplate(text string) (*Renderer, error) {
	tmpl, err := template.New("status").
		Funcs(sprig.TxtFuncMap()).
		Funcs(template.FuncMap{"clock": clock, "bar": bar}).
		Parse(text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse status template: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// Render writes s followed by a newline.
func (r *Renderer) Render(w io.Writer, s contracts.Snapshot) error {
	if err := r.tmpl.Execute(w, s); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func clock(d time.Duration) string {
	if d == contracts.UnknownDuration || d < 0 {
		return "--:--"
	}
	return fmt.Sprintf("%d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}

func bar(pos, dur time.Duration) string {
	filled := 0
	if dur > 0 && dur != contracts.UnknownDuration {
		filled = int(float64(barWidth) * float64(pos) / float64(dur))
		filled = max(0, min(filled, barWidth))
	}
	return strings.Repeat("#", filled) + strings.Repeat("-", barWidth-filled)
}
