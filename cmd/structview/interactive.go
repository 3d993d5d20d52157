package main

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/structview"
	"github.com/wippyai/structview/registry"
	"github.com/wippyai/structview/render"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	nameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type modelState int

const (
	stateSelectType modelState = iota
	stateView
	stateEditAddr
)

// headerLines is the space View reserves above and below the viewport.
const headerLines = 5

type interactiveModel struct {
	err      error
	reg      *registry.Registry
	mem      structview.Memory
	types    []string
	input    textinput.Model
	view     viewport.Model
	cfg      config
	base     uint64
	selected int
	depth    int
	state    modelState
	layout   bool
}

func newInteractiveModel(reg *registry.Registry, mem structview.Memory, cfg config, addr uint64) *interactiveModel {
	input := textinput.New()
	input.Prompt = "address: 0x"
	input.Placeholder = "hex"
	input.Width = 20

	m := &interactiveModel{
		reg:    reg,
		mem:    mem,
		cfg:    cfg,
		base:   addr,
		depth:  cfg.depth,
		types:  reg.Aggregates(),
		input:  input,
		view:   viewport.New(80, 20),
		layout: mem == nil,
		state:  stateSelectType,
	}
	for i, name := range m.types {
		if name == cfg.typeName {
			m.selected = i
		}
	}
	return m
}

func (m *interactiveModel) Init() tea.Cmd {
	return nil
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.view.Width = msg.Width
		m.view.Height = max(msg.Height-headerLines, 1)
		return m, nil

	case tea.KeyMsg:
		if m.state == stateEditAddr {
			return m.updateAddr(msg)
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit

		case "up", "k":
			if m.state == stateSelectType && m.selected > 0 {
				m.selected--
				return m, nil
			}

		case "down", "j":
			if m.state == stateSelectType && m.selected < len(m.types)-1 {
				m.selected++
				return m, nil
			}

		case "enter":
			if m.state == stateSelectType && len(m.types) > 0 {
				m.state = stateView
				m.refresh()
				return m, nil
			}

		case "+":
			if m.state == stateView {
				m.depth++
				m.refresh()
				return m, nil
			}

		case "-":
			if m.state == stateView && m.depth > 0 {
				m.depth--
				m.refresh()
				return m, nil
			}

		case "l":
			if m.state == stateView && m.mem != nil {
				m.layout = !m.layout
				m.refresh()
				return m, nil
			}

		case "a":
			if m.state == stateView && m.mem != nil {
				m.state = stateEditAddr
				m.input.SetValue(strconv.FormatUint(m.base, 16))
				return m, m.input.Focus()
			}

		case "esc":
			if m.state == stateView {
				m.state = stateSelectType
				m.err = nil
				return m, nil
			}
		}
	}

	if m.state == stateView {
		var cmd tea.Cmd
		m.view, cmd = m.view.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *interactiveModel) updateAddr(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.input.Blur()
		m.state = stateView
		return m, nil
	case "enter":
		addr, err := parseAddr(m.input.Value())
		if err != nil {
			m.err = fmt.Errorf("address %q: %w", m.input.Value(), err)
		} else {
			m.base = addr
			m.err = nil
		}
		m.input.Blur()
		m.state = stateView
		m.refresh()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// refresh renders the selected type into the viewport.
func (m *interactiveModel) refresh() {
	if len(m.types) == 0 {
		return
	}
	name := m.types[m.selected]

	var buf bytes.Buffer
	var err error
	if m.layout {
		err = printLayout(&buf, m.reg, name)
	} else {
		opts := render.Options{
			Styler:      render.ColorStyler,
			MaxDepth:    m.depth,
			ShowPadding: m.cfg.showPadding,
		}
		if opts.MaxDepth <= 0 {
			opts.MaxDepth = -1
		}
		err = render.Dump(m.reg, m.mem, &buf, name, name, m.base, opts)
	}
	if err != nil {
		buf.WriteString("\n")
		buf.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", err)))
	}
	m.view.SetContent(buf.String())
	m.view.GotoTop()
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Structure Viewer"))
	b.WriteString(" ")
	b.WriteString(fmt.Sprintf("%d types, %d-byte pointers", len(m.types), m.reg.PointerSize()))
	b.WriteString("\n\n")

	if len(m.types) == 0 {
		b.WriteString("No structs or unions registered.\n\n")
		b.WriteString(helpStyle.Render("q quit"))
		return b.String()
	}

	switch m.state {
	case stateSelectType:
		b.WriteString("Select a type to view:\n\n")
		for i, name := range m.types {
			line := m.formatType(name)
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + line))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter view • q quit"))

	case stateView, stateEditAddr:
		name := m.types[m.selected]
		b.WriteString(nameStyle.Render(name))
		if m.mem != nil {
			b.WriteString(fmt.Sprintf(" @0x%x • depth %d", m.base, m.depth))
		}
		b.WriteString("\n")
		if m.err != nil {
			b.WriteString(errorStyle.Render(m.err.Error()))
			b.WriteString("\n")
		}
		b.WriteString(m.view.View())
		b.WriteString("\n")
		if m.state == stateEditAddr {
			b.WriteString(m.input.View())
		} else if m.mem != nil {
			b.WriteString(helpStyle.Render("+/- depth • a address • l layout • ↑/↓ scroll • esc back • q quit"))
		} else {
			b.WriteString(helpStyle.Render("↑/↓ scroll • esc back • q quit"))
		}
	}

	return b.String()
}

func (m *interactiveModel) formatType(name string) string {
	kind := "struct"
	if agg, ok := m.reg.Aggregate(name); ok && agg.Union {
		kind = "union"
	}
	return typeStyle.Render(kind) + " " + nameStyle.Render(name) +
		helpStyle.Render(fmt.Sprintf(" (%d bytes)", m.reg.Sizeof(name)))
}

func runInteractive(reg *registry.Registry, mem structview.Memory, cfg config, addr uint64) error {
	p := tea.NewProgram(newInteractiveModel(reg, mem, cfg, addr), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
