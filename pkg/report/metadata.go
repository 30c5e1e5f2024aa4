package report

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/npda-audit/platform/pkg/kpi"
)

// Display metadata decorates report rows with presentation detail the
// engine does not carry: help text, dashboard colours and label
// overrides. Deployments ship their own YAML; the built-in defaults
// colour each category.

type RowMetadata struct {
	Number   string `yaml:"number" json:"number"`
	Label    string `yaml:"label,omitempty" json:"label,omitempty"`
	HelpText string `yaml:"help_text,omitempty" json:"help_text,omitempty"`
	Colour   string `yaml:"colour,omitempty" json:"colour,omitempty"`
}

type Metadata struct {
	Rows            []RowMetadata     `yaml:"rows" json:"rows"`
	CategoryColours map[string]string `yaml:"category_colours,omitempty" json:"category_colours,omitempty"`
}

func LoadMetadata(path string) (Metadata, error) {
	if path == "" {
		return DefaultMetadata(), nil
	}
	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return DefaultMetadata(), err
	}

	var meta Metadata
	if err := yaml.Unmarshal(content, &meta); err != nil {
		return Metadata{}, err
	}

	if len(meta.Rows) == 0 && len(meta.CategoryColours) == 0 {
		return Metadata{}, errors.New("no report metadata configured")
	}

	return meta, nil
}

func DefaultMetadata() Metadata {
	return Metadata{
		CategoryColours: map[string]string{
			kpi.CategoryCohort:          "#71A8D8",
			kpi.CategoryTreatment:       "#F2C94C",
			kpi.CategoryGlucoseMonitors: "#9B51E0",
			kpi.CategoryKeyProcesses:    "#27AE60",
			kpi.CategoryAdditionalCare:  "#2D9CDB",
			kpi.CategoryCareAtDiagnosis: "#F2994A",
			kpi.CategoryOutcomes:        "#EB5757",
		},
	}
}
