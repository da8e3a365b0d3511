package view

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"
)

var (
	baseDir  string
	once     sync.Once
	tplCache = struct {
		sync.RWMutex
		m map[string]*template.Template
	}{m: map[string]*template.Template{}}
)

func detectBase() {
	candidates := []string{"templates", "../templates", "../../templates"}
	for _, c := range candidates {
		if fi, err := os.Stat(filepath.Clean(c)); err == nil && fi.IsDir() {
			baseDir = filepath.Clean(c)
			return
		}
	}
	baseDir = "templates"
}

// Funcs returns the standard template func map.
func Funcs(r *http.Request) template.FuncMap {
	return template.FuncMap{
		"year": func() int { return time.Now().Year() },
		"date": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("2006-01-02")
		},
		"dateptr": func(t *time.Time) string {
			if t == nil {
				return ""
			}
			return t.Format("2006-01-02")
		},
		"add": func(a, b int) int { return a + b },
		"sub": func(a, b int) int { return a - b },
		"mul": func(a, b int) int { return a * b },
	}
}

// Render parses and executes a page template wrapped in layout.html.
// name is the filename relative to templates/ (e.g. "clients.html").
func Render(w http.ResponseWriter, r *http.Request, name string, data map[string]any) error {
	once.Do(detectBase)
	if data == nil {
		data = map[string]any{}
	}
	if _, exists := data["Year"]; !exists {
		data["Year"] = time.Now().Year()
	}
	if _, exists := data["Flashes"]; !exists {
		data["Flashes"] = PopFlashes(w, r)
	}

	tpl, err := lookup(r, name)
	if err != nil {
		return err
	}
	// Render into a buffer first so a template error never produces a half page.
	var buf bytes.Buffer
	if err := tpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("execute template %s: %w", name, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, err = w.Write(buf.Bytes())
	return err
}

func lookup(r *http.Request, name string) (*template.Template, error) {
	dev := os.Getenv("DEV") == "1"
	if !dev {
		tplCache.RLock()
		if tpl, ok := tplCache.m[name]; ok {
			tplCache.RUnlock()
			return tpl, nil
		}
		tplCache.RUnlock()
	}
	layout := filepath.Join(baseDir, "layout.html")
	page := filepath.Join(baseDir, name)
	tpl, err := template.New("layout.html").Funcs(Funcs(r)).ParseFiles(layout, page)
	if err != nil {
		return nil, fmt.Errorf("parse template %s: %w", name, err)
	}
	if !dev {
		tplCache.Lock()
		tplCache.m[name] = tpl
		tplCache.Unlock()
	}
	return tpl, nil
}
