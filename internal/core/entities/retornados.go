package entities

import "github.com/JonMunkholm/sgq/internal/core"

func init() {
	registerRetornados()
}

// Returned toners reference a toner by model and a unit by name. Their
// recovered value is derived from the toner's per-sheet price on every read
// and is never stored.
func registerRetornados() {
	core.Register(core.EntityDefinition{
		Info: core.EntityInfo{
			Key:        "retornados",
			Label:      "Retornados",
			Table:      "retornados",
			TotalField: "valor_recuperado",
		},
		Fields: []core.FieldSpec{
			{Label: "ID Cliente", Field: "id_cliente", Kind: core.KindNumber, Default: 0.0},
			{Label: "Peso Retornado", Field: "peso_retornado", Kind: core.KindNumber, Default: 0.0},
			{Label: "Destino", Field: "destino_final", Kind: core.KindEnum, Fallback: "Descarte"},
		},
		References: []core.ForeignKeyRef{
			{Label: "Modelo", Field: "toner_id", Table: "toners", NaturalKey: "modelo", As: "toner"},
			{Label: "Unidade", Field: "unidade_id", Table: "unidades", NaturalKey: "unidade", As: "unidade"},
		},
		Policy:    core.AlwaysInsert,
		Derive:    deriveRetornado,
		Transient: []string{"valor_recuperado"},
		Order:     newestFirst,
		Columns: []core.ExportColumn{
			number("ID Cliente", "id_cliente"),
			ref("Modelo", "toner", text, "modelo"),
			ref("Peso Cheio", "toner", number, "peso_cheio"),
			ref("Impressoras Compatíveis", "toner", text, "impressoras_compativeis"),
			ref("Cor", "toner", text, "cor"),
			ref("Área ISO", "toner", percent, "area_impressa_iso"),
			ref("Capacidade", "toner", number, "capacidade_folhas"),
			ref("Tipo", "toner", text, "tipo"),
			number("Peso Retornado", "peso_retornado"),
			ref("Unidade", "unidade", text, "unidade"),
			text("Destino", "destino_final"),
			currency("Valor Recuperado", "valor_recuperado"),
			date("Data", "created_at"),
		},
	})
}

func deriveRetornado(rec core.Record) error {
	unitPrice := rec.Ref("toner").Number("preco_folha")
	rec["valor_recuperado"] = core.RecoveredValue(unitPrice, rec.String("destino_final"))
	return nil
}
