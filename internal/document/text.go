package document

import (
	"bytes"
	"embed"
	"fmt"
	"io"
	"text/template"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var textTemplate = template.Must(
	template.New("document.txt.tmpl").
		Funcs(template.FuncMap{"ngn": FormatNGN}).
		ParseFS(templateFS, "templates/document.txt.tmpl"),
)

// WriteText writes the plain-text rendering used for email and printing.
func (d Document) WriteText(w io.Writer) error {
	if err := textTemplate.Execute(w, d); err != nil {
		return fmt.Errorf("render %s text: %w", d.Number, err)
	}
	return nil
}

func (d Document) Text() (string, error) {
	var buf bytes.Buffer
	if err := d.WriteText(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
