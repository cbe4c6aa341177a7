package assemble

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fumiama/go-docx"
)

// TemplateError means a template could not be read or is not a valid
// .docx. It is raised when the template is loaded, before any section is
// processed.
type TemplateError struct {
	Name string
	Err  error
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("template %s: %v", e.Name, e.Err)
}

func (e *TemplateError) Unwrap() error { return e.Err }

// Template is a validated .docx whose styles and existing content seed
// every rendered report. Each render works on a fresh copy.
type Template struct {
	name string
	data []byte
}

// LoadTemplate reads and validates the template at path.
func LoadTemplate(path string) (*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &TemplateError{Name: filepath.Base(path), Err: err}
	}
	return ParseTemplate(filepath.Base(path), data)
}

// ParseTemplate validates an in-memory template.
func ParseTemplate(name string, data []byte) (*Template, error) {
	t := &Template{name: name, data: data}
	if _, err := t.open(); err != nil {
		return nil, err
	}
	return t, nil
}

// Name returns the template's file name.
func (t *Template) Name() string { return t.name }

func (t *Template) open() (*docx.Docx, error) {
	if len(t.data) == 0 {
		return nil, &TemplateError{Name: t.name, Err: fmt.Errorf("empty file")}
	}
	doc, err := docx.Parse(bytes.NewReader(t.data), int64(len(t.data)))
	if err != nil {
		return nil, &TemplateError{Name: t.name, Err: err}
	}
	return doc, nil
}
