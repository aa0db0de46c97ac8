package entities

import "github.com/JonMunkholm/sgq/internal/core"

func init() {
	registerGarantias()
}

// garantiaFields pairs each warranty column with its field. The same list
// drives import and export so the two stay symmetrical.
var garantiaFields = []core.FieldSpec{
	{Label: "Solicitante", Field: "solicitante", Kind: core.KindString},
	{Label: "Data Solicitação", Field: "data_solicitacao", Kind: core.KindDate},
	{Label: "Código Produto", Field: "codigo_produto", Kind: core.KindString},
	{Label: "Número Série", Field: "numero_serie", Kind: core.KindString},
	{Label: "Tipo", Field: "tipo", Kind: core.KindString},
	{Label: "NF Compra", Field: "nf_compra", Kind: core.KindString},
	{Label: "NF Remessa", Field: "nf_remessa", Kind: core.KindString},
	{Label: "NF Devolução", Field: "nf_devolucao", Kind: core.KindString},
	{Label: "Chave NF Compra", Field: "chave_nf_compra", Kind: core.KindString},
	{Label: "Chave NF Remessa", Field: "chave_nf_remessa", Kind: core.KindString},
	{Label: "Chave NF Devolução", Field: "chave_nf_devolucao", Kind: core.KindString},
	{Label: "Data Garantia", Field: "data_garantia", Kind: core.KindDate},
	{Label: "Número Ticket", Field: "numero_ticket", Kind: core.KindString},
	{Label: "Status", Field: "status", Kind: core.KindEnum, Fallback: "Aberta"},
	{Label: "Fornecedor", Field: "fornecedor", Kind: core.KindString},
	{Label: "Quantidade", Field: "quantidade", Kind: core.KindNumber, Default: 1.0},
	{Label: "Observação Defeito", Field: "observacao_defeito", Kind: core.KindString},
	{Label: "Valor Total", Field: "valor_total", Kind: core.KindNumber, Default: 0.0},
}

func registerGarantias() {
	columns := make([]core.ExportColumn, 0, len(garantiaFields))
	for _, f := range garantiaFields {
		switch f.Kind {
		case core.KindNumber:
			columns = append(columns, number(f.Label, f.Field))
		case core.KindDate:
			columns = append(columns, date(f.Label, f.Field))
		default:
			columns = append(columns, text(f.Label, f.Field))
		}
	}

	core.Register(core.EntityDefinition{
		Info: core.EntityInfo{
			Key:        "garantias",
			Label:      "Garantias",
			Table:      "garantias",
			TotalField: "valor_total",
		},
		Fields:  garantiaFields,
		Policy:  core.AlwaysInsert,
		Order:   newestFirst,
		Columns: columns,
	})
}
