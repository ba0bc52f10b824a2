package teams

import (
	"maps"
	"slices"

	"github.com/okian/goalboard/internal/domain/goals"
	"github.com/okian/goalboard/internal/domain/model"
	"github.com/okian/goalboard/internal/domain/points"
)

// Metric names shared by uploaded reports and goal configs.
const (
	MetricActivity          = "activity"
	MetricRevenuePerAccount = "revenue-per-active-account"
	MetricBilling           = "billing"
	MetricMultiBrandPerAcct = "multi-brand-per-active-account"
	MetricConversions       = "conversions"
	MetricAverageUnitPrice  = "average-unit-price"
)

// TeamDefinition is the built-in description of a team variant. Defaults
// is fully populated; admin overrides are merged on top of it.
type TeamDefinition struct {
	ID         TeamID
	Label      string
	Defaults   model.TeamGoalConfig
	Policy     goals.Policy
	Calculator points.Calculator
}

// Clone returns a deep copy of the definition.
func (d TeamDefinition) Clone() TeamDefinition {
	out := d
	out.Defaults = d.Defaults.Clone()
	return out
}

// Catalog maps team ids to their definitions.
type Catalog map[TeamID]TeamDefinition

// Clone returns a deep copy of the catalog.
func (c Catalog) Clone() Catalog {
	out := make(Catalog, len(c))
	for id, def := range c {
		out[id] = def.Clone()
	}
	return out
}

// IDs returns the catalog's team ids in sorted order.
func (c Catalog) IDs() []TeamID {
	return slices.Sorted(maps.Keys(c))
}

func goal(metric, display, boost string, refs ...string) model.GoalConfig {
	return model.GoalConfig{
		MetricName:    metric,
		DisplayName:   display,
		ChallengeRefs: refs,
		BoostItemID:   boost,
	}
}

func passthrough(id TeamID, label, unlock string, primary, s1, s2 model.GoalConfig) TeamDefinition {
	return TeamDefinition{
		ID:    id,
		Label: label,
		Defaults: model.TeamGoalConfig{
			Team:         string(id),
			Primary:      primary,
			Secondary1:   s1,
			Secondary2:   s2,
			UnlockItemID: unlock,
		},
		Policy:     goals.PlatformFirst,
		Calculator: points.DirectPassthrough{},
	}
}

// DefaultCatalog returns the built-in team table. Every call returns a new
// copy, so callers may modify it freely.
func DefaultCatalog() Catalog {
	c := Catalog{
		Carteira0: passthrough(Carteira0, "Carteira 0", "E6F0MJ3",
			goal(MetricActivity, "Atividade", "", "E6GglPq", "E6Gm8RI"),
			goal(MetricBilling, "Faturamento", "E6F0WGc", "E6GglQB"),
			goal(MetricConversions, "Conversões", "E6K79Mt", "E6GglRn"),
		),
		CarteiraI: passthrough(CarteiraI, "Carteira I", "E6F0MJ3",
			goal(MetricRevenuePerAccount, "Faturamento por Conta Ativa", "", "E6GglT2", "E6GmA1k"),
			goal(MetricActivity, "Atividade", "E6F0WGc", "E6GglPq"),
			goal(MetricMultiBrandPerAcct, "Multimarcas por Conta Ativa", "E6K79Mt", "E6GglUd"),
		),
		CarteiraIII: passthrough(CarteiraIII, "Carteira III", "E6F0MJ3",
			goal(MetricBilling, "Faturamento", "", "E6GglQB", "E6GmB7w"),
			goal(MetricConversions, "Conversões", "E6F0WGc", "E6GglRn"),
			goal(MetricAverageUnitPrice, "Preço Médio Unitário", "E6K79Mt", "E6GglVs"),
		),
		CarteiraIV: passthrough(CarteiraIV, "Carteira IV", "E6F0MJ3",
			goal(MetricBilling, "Faturamento", "", "E6GglQB", "E6GmC3p"),
			goal(MetricMultiBrandPerAcct, "Multimarcas por Conta Ativa", "E6F0WGc", "E6GglUd"),
			goal(MetricAverageUnitPrice, "Preço Médio Unitário", "E6K79Mt", "E6GglVs"),
		),
		ER: passthrough(ER, "ER", "E6F0MJ3",
			goal(MetricActivity, "Atividade", "", "E6GglPq"),
			goal(MetricConversions, "Conversões", "E6F0WGc", "E6GglRn"),
			goal(MetricBilling, "Faturamento", "E6K79Mt", "E6GglQB"),
		),
	}

	// Carteira II processes points locally from the uploaded report.
	ii := passthrough(CarteiraII, "Carteira II", "",
		goal(MetricBilling, "Faturamento", "", "E6GglQB", "E6GmD9z"),
		goal(MetricRevenuePerAccount, "Faturamento por Conta Ativa", "E6F0WGc", "E6GglT2"),
		goal(MetricMultiBrandPerAcct, "Multimarcas por Conta Ativa", "E6K79Mt", "E6GglUd"),
	)
	ii.Policy = goals.ReportFirst
	ii.Calculator = points.LocalMultiplier{}
	c[CarteiraII] = ii

	return c
}
