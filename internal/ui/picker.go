package ui

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// ErrPickCanceled is returned when the user leaves the picker without
// choosing.
var ErrPickCanceled = errors.New("selection canceled")

// PickerItem is one entry shown in the interactive picker.
type PickerItem struct {
	Label    string // wallet name
	SubLabel string // address, shown dimmed
	Badge    string // e.g. "default", "watch-only"
	Value    string // returned on selection
	Disabled bool   // shown but not selectable
}

// pickerModel is the Bubble Tea model for the interactive list picker.
type pickerModel struct {
	title    string
	items    []PickerItem
	cursor   int
	selected *PickerItem
	quitting bool
}

func newPickerModel(title string, items []PickerItem, start int) pickerModel {
	m := pickerModel{title: title, items: items}
	if start >= 0 && start < len(items) && !items[start].Disabled {
		m.cursor = start
	} else {
		m.cursor = m.next(-1, 1)
	}
	return m
}

// next returns the first enabled index after from in direction dir, or from
// when there is none.
func (m pickerModel) next(from, dir int) int {
	for i := from + dir; i >= 0 && i < len(m.items); i += dir {
		if !m.items[i].Disabled {
			return i
		}
	}
	if from < 0 {
		return 0
	}
	return from
}

func (m pickerModel) Init() tea.Cmd { return nil }

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "ctrl+c", "esc":
		m.quitting = true
		return m, tea.Quit
	case "up", "k":
		m.cursor = m.next(m.cursor, -1)
	case "down", "j":
		m.cursor = m.next(m.cursor, 1)
	case "enter", " ":
		if len(m.items) > 0 && !m.items[m.cursor].Disabled {
			item := m.items[m.cursor]
			m.selected = &item
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m pickerModel) View() string {
	if m.quitting {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("\n")
	sb.WriteString(StyleTitle.Render("  "+m.title) + "\n\n")

	for i, item := range m.items {
		prefix := "    "
		if i == m.cursor {
			prefix = "  ▸ "
		}

		line := prefix + StyleValue.Render(item.Label)
		if item.SubLabel != "" {
			line += "  " + StyleAddress.Render(item.SubLabel)
		}
		if item.Badge != "" {
			line += "  " + StyleMeta.Render("("+item.Badge+")")
		}

		switch {
		case i == m.cursor:
			sb.WriteString(StyleSelected.Render(line) + "\n")
		case item.Disabled:
			sb.WriteString(StyleMeta.Render(line) + "\n")
		default:
			sb.WriteString(line + "\n")
		}
	}

	sb.WriteString("\n")
	sb.WriteString(StyleMeta.Render("  [ ↑↓ / jk ] navigate   [ Enter ] select   [ q ] cancel") + "\n")
	return sb.String()
}

// PickItem runs an interactive list picker starting at index start and
// returns the selected item's Value, or ErrPickCanceled.
func PickItem(title string, items []PickerItem, start int) (string, error) {
	if len(items) == 0 {
		return "", fmt.Errorf("no items to pick from")
	}

	p := tea.NewProgram(newPickerModel(title, items, start), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("picker: %w", err)
	}

	fm := final.(pickerModel)
	if fm.quitting || fm.selected == nil {
		return "", ErrPickCanceled
	}
	return fm.selected.Value, nil
}
