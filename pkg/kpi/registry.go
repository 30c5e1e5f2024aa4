package kpi

import "fmt"

// The registry is assembled once at package init. Declaration order is the
// canonical report order; numbers are unique.
var (
	registry      []Definition
	registryByNum map[string]int
)

func init() {
	registry = append(registry, countDefinitions()...)
	registry = append(registry, treatmentDefinitions()...)
	registry = append(registry, healthCheckDefinitions()...)
	registry = append(registry, additionalCareDefinitions()...)
	registry = append(registry, careAtDiagnosisDefinitions()...)
	registry = append(registry, outcomeDefinitions()...)

	registryByNum = make(map[string]int, len(registry))
	for i, d := range registry {
		if _, dup := registryByNum[d.Number]; dup {
			panic(fmt.Sprintf("duplicate kpi number %s", d.Number))
		}
		registryByNum[d.Number] = i
	}
}

// Registry returns the full measure catalogue in canonical order.
func Registry() []Definition {
	out := make([]Definition, len(registry))
	copy(out, registry)
	return out
}

// DefinitionByNumber resolves a measure number like "25" or "32.1".
func DefinitionByNumber(number string) (Definition, error) {
	i, ok := registryByNum[number]
	if !ok {
		return Definition{}, fmt.Errorf("kpi %q: %w", number, ErrUnknownKPI)
	}
	return registry[i], nil
}
