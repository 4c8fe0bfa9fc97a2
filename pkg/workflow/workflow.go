package workflow

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
)

//go:embed defaults/system.md
var DefaultSystem string

//go:embed defaults/optimize.md
var DefaultOptimize string

const OptimizePath = ".aistudio/workflows/optimize.md"

// Prompt is a parsed rewrite template plus the system instruction
type Prompt struct {
	System string
	Source string // file the template came from, empty for the default
	tmpl   *template.Template
}

// Data fills the rewrite template
type Data struct {
	ResumeContent  string
	JobDescription string
}

// Default returns the embedded prompt
func Default() *Prompt {
	p, err := Parse(DefaultOptimize)
	if err != nil {
		panic(fmt.Sprintf("workflow: embedded template: %v", err))
	}
	return p
}

// Parse compiles a rewrite template
func Parse(text string) (*Prompt, error) {
	tmpl, err := template.New("optimize").Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parsing prompt template: %w", err)
	}
	return &Prompt{System: strings.TrimSpace(DefaultSystem), tmpl: tmpl}, nil
}

// Load reads the template at path. An empty path, or the default path
// when no file exists there, yields the embedded prompt.
func Load(path string) (*Prompt, error) {
	explicit := path != ""
	if !explicit {
		path = OptimizePath
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return Default(), nil
		}
		return nil, fmt.Errorf("reading prompt %s: %w", path, err)
	}

	p, err := Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	p.Source = path
	return p, nil
}

// Render fills the template
func (p *Prompt) Render(resumeContent, jobDescription string) (string, error) {
	var buf bytes.Buffer
	err := p.tmpl.Execute(&buf, Data{
		ResumeContent:  resumeContent,
		JobDescription: jobDescription,
	})
	if err != nil {
		return "", fmt.Errorf("rendering prompt: %w", err)
	}
	return buf.String(), nil
}

// Init writes the default template to path unless a file is already
// there. It reports whether it wrote.
func Init(path string) (bool, error) {
	if path == "" {
		path = OptimizePath
	}
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, err
	}
	return true, write(path)
}

// Reset overwrites path with the default template
func Reset(path string) error {
	if path == "" {
		path = OptimizePath
	}
	return write(path)
}

func write(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(DefaultOptimize), 0644)
}
