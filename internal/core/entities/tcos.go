package entities

import "github.com/JonMunkholm/sgq/internal/core"

func init() {
	registerTCOs()
}

func registerTCOs() {
	core.Register(core.EntityDefinition{
		Info: core.EntityInfo{
			Key:        "tcos",
			Label:      "TCOs",
			Table:      "tcos",
			TotalField: "total_aquisicao",
		},
		Fields: []core.FieldSpec{
			{Label: "Modelo", Field: "modelo", Kind: core.KindString, Required: true},
			{Label: "Fabricante", Field: "fabricante", Kind: core.KindString},
			{Label: "Tipo", Field: "tipo", Kind: core.KindString},
			{Label: "Preço Impressora", Field: "preco_impressora", Kind: core.KindNumber, Default: 0.0},
			{Label: "PIS", Field: "pis", Kind: core.KindNumber, Default: 0.0},
			{Label: "IPI", Field: "ipi", Kind: core.KindNumber, Default: 0.0},
			{Label: "ICMS", Field: "icms", Kind: core.KindNumber, Default: 0.0},
			{Label: "COFINS", Field: "cofins", Kind: core.KindNumber, Default: 0.0},
			{Label: "Acessórios", Field: "acessorios", Kind: core.KindNumber, Default: 0.0},
			{Label: "Observação", Field: "observacao", Kind: core.KindString},
		},
		Nested: []core.NestedSpec{
			{Prefix: "Custo Operacional", Key: "custos_operacionais", Table: "tco_custos_operacionais", ParentField: "tco_id"},
			{Prefix: "Custo Indireto", Key: "custos_indiretos", Table: "tco_custos_indiretos", ParentField: "tco_id"},
		},
		Policy: core.AlwaysInsert,
		Derive: deriveTCO,
		Order:  newestFirst,
		Columns: []core.ExportColumn{
			text("Modelo", "modelo"),
			text("Fabricante", "fabricante"),
			text("Tipo", "tipo"),
			number("Preço Impressora", "preco_impressora"),
			number("PIS", "pis"),
			number("IPI", "ipi"),
			number("ICMS", "icms"),
			number("COFINS", "cofins"),
			number("Acessórios", "acessorios"),
			currency("Total Aquisição", "total_aquisicao"),
			text("Observação", "observacao"),
			date("Data Cadastro", "created_at"),
		},
	})
}

func deriveTCO(rec core.Record) error {
	rec["total_aquisicao"] = core.AcquisitionTotal(
		rec.Number("preco_impressora"),
		rec.Number("pis"),
		rec.Number("ipi"),
		rec.Number("icms"),
		rec.Number("cofins"),
		rec.Number("acessorios"),
	)
	return nil
}
