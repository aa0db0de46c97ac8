package entities

import "github.com/JonMunkholm/sgq/internal/core"

func init() {
	registerUnidades()
}

func registerUnidades() {
	core.Register(core.EntityDefinition{
		Info: core.EntityInfo{
			Key:             "unidades",
			Label:           "Unidades",
			Table:           "unidades",
			NaturalKey:      "unidade",
			NaturalKeyLabel: "Unidade",
		},
		Fields: []core.FieldSpec{
			{Label: "Unidade", Field: "unidade", Kind: core.KindString, Required: true},
		},
		Policy:   core.RejectByNaturalKey,
		Cascades: []core.Cascade{{Table: "retornados", Field: "unidade_id"}},
		Order:    []core.Order{{Field: "unidade"}},
		Columns: []core.ExportColumn{
			text("Unidade", "unidade"),
			date("Data de Cadastro", "created_at"),
		},
	})
}
