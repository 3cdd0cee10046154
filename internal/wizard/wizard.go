// Package wizard collects the answers behind steelyard init and renders
// them into a starter policy document.
package wizard

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"
)

// PolicySpec holds all fields collected during the interactive wizard.
type PolicySpec struct {
	Name              string
	Candidates        []string
	LeadTerm          string
	EnableUrgency     bool
	EnableCompetition bool
	TieBreak          []string
}

// WeightFor returns the starter weight for a term. The lead term gets a
// heavier pull than the rest.
func (s *PolicySpec) WeightFor(term string) string {
	if term == s.LeadTerm {
		return "1.5"
	}
	return "1.0"
}

const policyTemplate = `name: {{ .Name }}

# Heavier terms pull the ranking harder toward their signal.
weights:
  deficiency: {{ .WeightFor "deficiency" }}
  preference: {{ .WeightFor "preference" }}
  control: {{ .WeightFor "control" }}
{{- if or .EnableUrgency .EnableCompetition }}

gating:
{{- if .EnableUrgency }}
  urgency:
    term: deficiency
    threshold: 0.6
    max_boost: 1.0
    reduce_others: 0.5
{{- end }}
{{- if .EnableCompetition }}
  competition:
    methods: [preference, control]
    power: 2.0
    min_keep: 0.25
    renormalize: true
{{- end }}
{{- end }}
{{- if .TieBreak }}

tie_break:
{{- range .TieBreak }}
  - {{ . }}
{{- end }}
{{- end }}
`

const factsTemplate = `name: {{ .Name }}-example

values:
{{- range .Candidates }}
  {{ . }}: 0.5
{{- end }}
`

// ValidateName rejects empty names and names with path characters.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("policy name must not be empty")
	}
	cleaned := filepath.Clean(name)
	if cleaned == ".." || strings.Contains(cleaned, "/") || strings.Contains(cleaned, "\\") {
		return fmt.Errorf("policy name %q contains invalid path characters", name)
	}
	return nil
}

// RunPolicyWizard runs an interactive huh form to collect the starter
// policy fields. If initialName is non-empty, it pre-populates the name
// field.
func RunPolicyWizard(in io.Reader, out io.Writer, initialName string) (*PolicySpec, error) {
	var (
		name          = initialName
		candidatesRaw string
		leadTerm      string
		urgency       bool
		competition   bool
	)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Policy name").
				Description("A kebab-case name for your policy").
				Placeholder("my-policy").
				Value(&name).
				Validate(func(s string) error {
					return ValidateName(strings.TrimSpace(s))
				}),
			huh.NewInput().
				Title("Candidates").
				Description("Comma-separated categories the policy ranks").
				Placeholder("focus, recovery, growth").
				Value(&candidatesRaw).
				Validate(func(s string) error {
					if len(splitAndTrim(s)) == 0 {
						return fmt.Errorf("at least one candidate is required")
					}
					return nil
				}),
			huh.NewSelect[string]().
				Title("Lead term").
				Description("The signal that should pull hardest").
				Options(
					huh.NewOption("deficiency", "deficiency"),
					huh.NewOption("preference", "preference"),
					huh.NewOption("control", "control"),
				).
				Value(&leadTerm),
			huh.NewConfirm().
				Title("Enable urgency gating?").
				Description("Boost the deficiency term when a shortfall gets severe").
				Value(&urgency),
			huh.NewConfirm().
				Title("Enable term competition?").
				Description("Let preference and control compete for weight").
				Value(&competition),
		),
	).
		WithInput(in).
		WithOutput(out)

	// Use accessible mode for non-TTY input (e.g., tests, piped input).
	if f, ok := in.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		form = form.WithAccessible(true)
	}

	if err := form.Run(); err != nil {
		return nil, fmt.Errorf("wizard failed: %w", err)
	}

	candidates := splitAndTrim(candidatesRaw)
	return &PolicySpec{
		Name:              strings.TrimSpace(name),
		Candidates:        candidates,
		LeadTerm:          leadTerm,
		EnableUrgency:     urgency,
		EnableCompetition: competition,
		TieBreak:          candidates,
	}, nil
}

// GeneratePolicyYAML renders a starter policy document from the spec.
func GeneratePolicyYAML(spec *PolicySpec) (string, error) {
	return render("policy", policyTemplate, spec)
}

// GenerateFactsYAML renders an example facts document that matches the
// spec's candidates, so the scaffolded policy is runnable immediately.
func GenerateFactsYAML(spec *PolicySpec) (string, error) {
	return render("facts", factsTemplate, spec)
}

func render(name, text string, spec *PolicySpec) (string, error) {
	tmpl, err := template.New(name).Parse(text)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf strings.Builder
	if err := tmpl.Execute(&buf, spec); err != nil {
		return "", fmt.Errorf("failed to render template: %w", err)
	}
	return buf.String(), nil
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	var result []string
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
