package template

import (
	"bytes"
	"embed"
	"fmt"
	"path"
	"strings"
	"sync"
	"text/template"

	"go.uber.org/zap"
)

//go:embed messages/*.tmpl
var templateFS embed.FS

// Message template names
const (
	IPInitial       = "ip_initial"
	IPChanged       = "ip_changed"
	Online          = "online"
	IntervalInvalid = "interval_invalid"
	IntervalUsage   = "interval_usage"
	IntervalUpdated = "interval_updated"
	Settings        = "settings"
	Help            = "help"
)

// Loader manages chat message templates
type Loader struct {
	logger    *zap.Logger
	templates *template.Template
	custom    map[string]*template.Template
	mu        sync.RWMutex
}

// NewLoader creates a loader with the embedded default templates
func NewLoader(logger *zap.Logger) (*Loader, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	loader := &Loader{
		logger: logger,
		custom: make(map[string]*template.Template),
	}

	if err := loader.loadDefaultTemplates(); err != nil {
		return nil, err
	}

	return loader, nil
}

// loadDefaultTemplates loads templates from the embedded filesystem
func (t *Loader) loadDefaultTemplates() error {
	tmpl := template.New("")

	entries, err := templateFS.ReadDir("messages")
	if err != nil {
		return fmt.Errorf("failed to read template directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		content, err := templateFS.ReadFile(path.Join("messages", entry.Name()))
		if err != nil {
			return fmt.Errorf("failed to read template file %s: %w", entry.Name(), err)
		}

		name := strings.TrimSuffix(entry.Name(), path.Ext(entry.Name()))
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return fmt.Errorf("failed to parse template %s: %w", entry.Name(), err)
		}
	}

	t.templates = tmpl
	return nil
}

// SetCustomTemplate overrides a default template
func (t *Loader) SetCustomTemplate(name, content string) error {
	if t.templates.Lookup(name) == nil {
		return fmt.Errorf("unknown template: %s", name)
	}

	tmpl, err := template.New(name).Parse(content)
	if err != nil {
		return fmt.Errorf("invalid template %s: %w", name, err)
	}

	t.mu.Lock()
	t.custom[name] = tmpl
	t.mu.Unlock()

	t.logger.Debug("Custom template registered", zap.String("template", name))
	return nil
}

// GetTemplate returns the template for name, preferring custom overrides
func (t *Loader) GetTemplate(name string) (*template.Template, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if tmpl, ok := t.custom[name]; ok {
		return tmpl, nil
	}

	if tmpl := t.templates.Lookup(name); tmpl != nil {
		return tmpl, nil
	}

	return nil, fmt.Errorf("template not found: %s", name)
}

// Render executes the named template and trims surrounding whitespace
func (t *Loader) Render(name string, data any) (string, error) {
	tmpl, err := t.GetTemplate(name)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}

	return strings.TrimSpace(buf.String()), nil
}
