package entities

import "github.com/JonMunkholm/sgq/internal/core"

// Toner labels referenced outside the field table.
const (
	tonerModelLabel    = "Modelo"
	tonerCapacityLabel = "Capacidade"
)

func init() {
	registerToners()
}

func registerToners() {
	core.Register(core.EntityDefinition{
		Info: core.EntityInfo{
			Key:             "toners",
			Label:           "Toners",
			Sheet:           "Toners",
			Table:           "toners",
			NaturalKey:      "modelo",
			NaturalKeyLabel: tonerModelLabel,
		},
		Fields: []core.FieldSpec{
			{Label: tonerModelLabel, Field: "modelo", Kind: core.KindString, Required: true},
			{Label: "Peso Cheio (g)", Field: "peso_cheio", Kind: core.KindNumber, Default: 0.0},
			{Label: "Peso Vazio (g)", Field: "peso_vazio", Kind: core.KindNumber, Default: 0.0},
			{Label: "Impressoras Compatíveis", Field: "impressoras_compativeis", Kind: core.KindString, Default: ""},
			{Label: "Cor", Field: "cor", Kind: core.KindEnum, Fallback: "Black"},
			{Label: "Área ISO", Field: "area_impressa_iso", Kind: core.KindNumber, Default: 0.05, Normalizer: NormalizePercent},
			{Label: tonerCapacityLabel, Field: "capacidade_folhas", Kind: core.KindNumber, Default: 0.0},
			{Label: "Tipo", Field: "tipo", Kind: core.KindEnum, Fallback: "Compatível"},
			{Label: "Preço", Field: "preco", Kind: core.KindNumber, Default: 0.0},
		},
		Policy:   core.RejectByNaturalKey,
		Derive:   deriveToner,
		Cascades: []core.Cascade{{Table: "retornados", Field: "toner_id"}},
		Order:    []core.Order{{Field: "modelo"}},
		Columns: []core.ExportColumn{
			text(tonerModelLabel, "modelo"),
			number("Peso Cheio (g)", "peso_cheio"),
			number("Peso Vazio (g)", "peso_vazio"),
			text("Impressoras Compatíveis", "impressoras_compativeis"),
			text("Cor", "cor"),
			percent("Área ISO", "area_impressa_iso"),
			number(tonerCapacityLabel, "capacidade_folhas"),
			text("Tipo", "tipo"),
			number("Preço", "preco"),
			number("Gramatura", "gramatura"),
			currency("Preço/Folha", "preco_folha"),
		},
	})
}

// deriveToner computes the weight delta and the per-sheet price.
func deriveToner(rec core.Record) error {
	rec["gramatura"] = core.WeightDelta(rec.Number("peso_cheio"), rec.Number("peso_vazio"))

	price, err := core.UnitPrice(rec.Number("preco"), rec.Number("capacidade_folhas"), tonerCapacityLabel)
	if err != nil {
		return err
	}
	rec["preco_folha"] = price
	return nil
}
