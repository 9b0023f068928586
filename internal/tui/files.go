package tui

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	list "github.com/charmbracelet/bubbles/list"
)

type planItem struct {
	title, desc string
	path        string
}

func (f planItem) Title() string       { return f.title }
func (f planItem) Description() string { return f.desc }
func (f planItem) FilterValue() string { return f.title }

// refreshDir repopulates the picker with the images in the working directory.
func (m *Model) refreshDir() {
	entries, err := os.ReadDir(m.cwd)
	if err != nil {
		m.status = "read dir error: " + err.Error()
		return
	}
	var items []list.Item
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		ext := strings.ToLower(filepath.Ext(name))
		switch ext {
		case ".png", ".jpg", ".jpeg", ".gif":
			items = append(items, planItem{title: name, desc: ext, path: filepath.Join(m.cwd, name)})
		}
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].(planItem).Title() < items[j].(planItem).Title() })
	m.l.SetItems(items)
	if len(items) == 0 {
		m.status = "no floor-plan images in current directory"
	}
}
