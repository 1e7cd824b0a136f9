// Package tui provides the terminal user interface for nordgen.
// This file contains the interactive token and preference prompts.
package tui

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"nordgen/common"
	"nordgen/config"
)

// Prompt field indices.
const (
	fieldDNS = iota
	fieldUseIP
	fieldKeepalive
	fieldCount
)

// PromptToken reads the access token without echoing it.
func PromptToken() (string, error) {
	fmt.Print(labelStyle.Render("NordVPN access token: "))

	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", common.WrapError(common.ErrCancelled, err.Error())
	}

	return strings.TrimSpace(string(raw)), nil
}

// PromptPreferences collects DNS, endpoint, and keepalive preferences
// interactively, starting from the given defaults. Empty answers keep
// the defaults. The returned preferences are fully validated; invalid
// input is an error, not silently corrected.
func PromptPreferences(defaults *config.Config) (*config.Config, error) {
	model := newPromptModel(*defaults)

	final, err := tea.NewProgram(model).Run()
	if err != nil {
		return nil, common.WrapError(common.ErrCancelled, err.Error())
	}

	m, ok := final.(promptModel)
	if !ok || m.cancelled {
		return nil, common.ErrCancelled
	}

	cfg, err := m.apply()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// promptModel is the bubbletea model for the preference form.
type promptModel struct {
	inputs    []textinput.Model
	labels    []string
	focus     int
	fieldErr  string
	defaults  config.Config
	cancelled bool
	finished  bool
}

func newPromptModel(defaults config.Config) promptModel {
	labels := []string{
		fmt.Sprintf("DNS server IP (default %s)", defaults.DNS),
		"Use station IP instead of hostname? (y/N)",
		fmt.Sprintf("PersistentKeepalive %d-%d (default %d)",
			config.MinKeepalive, config.MaxKeepalive, defaults.Keepalive),
	}

	inputs := make([]textinput.Model, fieldCount)
	for i := range inputs {
		in := textinput.New()
		in.CharLimit = 32
		inputs[i] = in
	}
	inputs[fieldDNS].Placeholder = defaults.DNS
	inputs[fieldUseIP].Placeholder = "n"
	inputs[fieldKeepalive].Placeholder = strconv.Itoa(defaults.Keepalive)
	inputs[fieldDNS].Focus()

	return promptModel{
		inputs:   inputs,
		labels:   labels,
		defaults: defaults,
	}
}

func (m promptModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m promptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.cancelled = true
			return m, tea.Quit

		case tea.KeyEnter:
			if problem := validateField(m.focus, m.inputs[m.focus].Value()); problem != "" {
				m.fieldErr = problem
				return m, nil
			}
			m.fieldErr = ""

			if m.focus == fieldCount-1 {
				m.finished = true
				return m, tea.Quit
			}

			m.inputs[m.focus].Blur()
			m.focus++
			m.inputs[m.focus].Focus()
			return m, textinput.Blink
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m promptModel) View() string {
	if m.finished || m.cancelled {
		return ""
	}

	var b strings.Builder
	b.WriteString(labelStyle.Render("Configuration options") +
		dimStyle.Render(" (press Enter to keep defaults)") + "\n\n")

	for i := range m.inputs {
		b.WriteString(m.labels[i] + "\n")
		b.WriteString(m.inputs[i].View() + "\n")
	}

	if m.fieldErr != "" {
		b.WriteString("\n" + errorStyle.Render(m.fieldErr) + "\n")
	}

	return b.String()
}

// validateField checks one field's raw value; empty keeps the default.
func validateField(field int, value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}

	switch field {
	case fieldDNS:
		if !config.ValidDNS(value) {
			return "DNS must contain only digits and dots"
		}
	case fieldUseIP:
		if !validYesNo(value) {
			return "Answer y or n"
		}
	case fieldKeepalive:
		n, err := strconv.Atoi(value)
		if err != nil || n < config.MinKeepalive || n > config.MaxKeepalive {
			return fmt.Sprintf("Keepalive must be a number between %d and %d",
				config.MinKeepalive, config.MaxKeepalive)
		}
	}
	return ""
}

func validYesNo(value string) bool {
	switch strings.ToLower(value) {
	case "y", "yes", "n", "no":
		return true
	}
	return false
}

func parseYes(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "y", "yes":
		return true
	}
	return false
}

// apply folds the collected answers into a preference set.
func (m promptModel) apply() (*config.Config, error) {
	cfg := m.defaults

	if v := strings.TrimSpace(m.inputs[fieldDNS].Value()); v != "" {
		cfg.DNS = v
	}
	if v := strings.TrimSpace(m.inputs[fieldUseIP].Value()); v != "" {
		cfg.UseStationIP = parseYes(v)
	}
	if v := strings.TrimSpace(m.inputs[fieldKeepalive].Value()); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, common.WrapError(common.ErrInvalidKeepalive, v)
		}
		cfg.Keepalive = n
	}

	return &cfg, nil
}
