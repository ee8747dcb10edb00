package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Mohsinsiddi/stxtoken/internal/clarity"
	"github.com/Mohsinsiddi/stxtoken/internal/units"
)

// WizardResult holds answers collected by the setup wizard.
type WizardResult struct {
	NetworkMode   string
	Contract      string
	WalletAddress string
	WalletName    string
}

type wizardStep int

const (
	stepMode wizardStep = iota
	stepContract
	stepWallet
	stepDone
)

type wizardModel struct {
	step      wizardStep
	result    WizardResult
	cursor    int
	choices   []string
	input     string
	inputMode bool
	problem   string
	aborted   bool
}

var modes = []string{"testnet", "mainnet", "devnet"}

func initialWizard(defaultContract string) wizardModel {
	return wizardModel{
		step:    stepMode,
		choices: modes,
		result:  WizardResult{Contract: defaultContract},
	}
}

func (m wizardModel) Init() tea.Cmd { return nil }

func (m wizardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "ctrl+c", "esc":
		m.aborted = true
		return m, tea.Quit

	case "up":
		if !m.inputMode && m.cursor > 0 {
			m.cursor--
		}

	case "down":
		if !m.inputMode && m.cursor < len(m.choices)-1 {
			m.cursor++
		}

	case "enter":
		if m.inputMode {
			if !m.applyInput() {
				return m, nil
			}
		} else {
			m.result.NetworkMode = m.choices[m.cursor]
		}
		m.advance()

	case "backspace":
		if m.inputMode && len(m.input) > 0 {
			m.input = m.input[:len(m.input)-1]
		}

	default:
		if m.inputMode && key.Type == tea.KeyRunes {
			m.input += string(key.Runes)
		}
	}

	if m.step == stepDone {
		return m, tea.Quit
	}
	return m, nil
}

func (m *wizardModel) advance() {
	m.step++
	m.cursor = 0
	m.problem = ""
	m.choices = nil
	m.inputMode = true
	m.input = ""
	if m.step == stepContract {
		m.input = m.result.Contract
	}
}

// applyInput stores the current input and reports whether it was accepted.
func (m *wizardModel) applyInput() bool {
	// Strip whitespace and accidental brackets from paste.
	val := strings.Trim(strings.TrimSpace(m.input), "[]'")

	switch m.step {
	case stepContract:
		if _, err := clarity.ParseContractID(val); err != nil {
			m.problem = "Not a contract identifier (ADDRESS.contract-name)."
			return false
		}
		m.result.Contract = val

	case stepWallet:
		if val == "" {
			return true
		}
		if !units.ValidateStacksAddress(val) {
			m.problem = "Not a Stacks address."
			return false
		}
		m.result.WalletAddress = val
		m.result.WalletName = "default"
	}
	return true
}

func (m wizardModel) View() string {
	var s string

	switch m.step {
	case stepMode:
		s = renderMenu("Select network mode:", m.choices, m.cursor)
	case stepContract:
		s = StyleTitle.Render("Token contract") + "\n\n"
		s += StyleMeta.Render("Contract identifier the dashboard reads and writes:") + "\n"
		s += "> " + StyleAddress.Render(m.input) + "█\n"
	case stepWallet:
		s = StyleTitle.Render("Add a watch-only wallet (optional)") + "\n\n"
		s += StyleMeta.Render("Enter a Stacks address (or press Enter to skip):") + "\n"
		s += "> " + StyleAddress.Render(m.input) + "█\n"
	case stepDone:
		s = Success("Setup complete!") + "\n"
	}
	if m.problem != "" {
		s += "\n" + Err(m.problem) + "\n"
	}

	return StyleBorder.Render(s) + "\n"
}

func renderMenu(title string, items []string, cursor int) string {
	s := StyleTitle.Render(title) + "\n\n"
	for i, item := range items {
		icon := "  "
		style := lipgloss.NewStyle().Foreground(ColorValue)
		if i == cursor {
			icon = "▸ "
			style = StyleSelected
		}
		s += icon + style.Render(item) + "\n"
	}
	s += "\n" + StyleMeta.Render("↑/↓ navigate · Enter select · Esc quit")
	return s
}

// RunWizard launches the interactive setup wizard and returns the result.
// defaultContract pre-fills the contract step.
func RunWizard(defaultContract string) (*WizardResult, error) {
	p := tea.NewProgram(initialWizard(defaultContract))
	final, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("wizard error: %w", err)
	}
	fm := final.(wizardModel)
	if fm.aborted {
		return nil, ErrPickCanceled
	}
	result := fm.result
	return &result, nil
}
