package entities

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/JonMunkholm/sgq/internal/core"
)

const ncTable = "nao_conformidades"

func init() {
	registerNaoConformidades()
}

func registerNaoConformidades() {
	core.Register(core.EntityDefinition{
		Info: core.EntityInfo{
			Key:   "nao_conformidades",
			Label: "Não Conformidades",
			Table: ncTable,
		},
		Fields: []core.FieldSpec{
			{Label: "Responsável", Field: "responsavel", Kind: core.KindString, Required: true},
			{Label: "Descrição", Field: "descricao", Kind: core.KindString, Required: true},
			{Label: "Tipo", Field: "tipo", Kind: core.KindEnum, Required: true},
			{Label: "Gravidade", Field: "gravidade", Kind: core.KindEnum, Required: true},
			{Label: "Departamento", Field: "departamento", Kind: core.KindString, Required: true},
			{Label: "Causa Raiz", Field: "causa_raiz", Kind: core.KindString},
			{Label: "Ação Imediata", Field: "acao_imediata", Kind: core.KindString},
			{Label: "Responsável Ação", Field: "responsavel_acao", Kind: core.KindString},
			{Label: "Prazo", Field: "prazo", Kind: core.KindDate},
			{Label: "Status", Field: "status", Kind: core.KindEnum, Fallback: "Aberta"},
			{Label: "Evidência da Solução", Field: "evidencia_solucao", Kind: core.KindString},
		},
		Policy:       core.AlwaysInsert,
		BeforeInsert: ncNumbers.assign,
		Order:        newestFirst,
		Columns: []core.ExportColumn{
			text("Número", "numero"),
			date("Data de Abertura", "data_abertura"),
			text("Responsável", "responsavel"),
			text("Departamento", "departamento"),
			text("Tipo", "tipo"),
			text("Gravidade", "gravidade"),
			text("Status", "status"),
			text("Descrição", "descricao"),
			text("Causa Raiz", "causa_raiz"),
			text("Ação Imediata", "acao_imediata"),
			text("Responsável Ação", "responsavel_acao"),
			date("Prazo", "prazo"),
			date("Data Encerramento", "data_encerramento"),
			text("Evidência da Solução", "evidencia_solucao"),
		},
	})
}

// ncNumbers issues "NC-<year>-<seq>" numbers.
var ncNumbers = &ncNumberer{now: time.Now, issued: make(map[ncSeries]int)}

type ncSeries struct {
	store core.Store
	year  int
}

// ncNumberer serializes numbering so concurrent rows of a batch never share
// a number. issued remembers the last number handed out per store and year,
// since a number is issued before its record is visible in the store.
type ncNumberer struct {
	mu     sync.Mutex
	now    func() time.Time
	issued map[ncSeries]int
}

func (n *ncNumberer) assign(ctx context.Context, store core.Store, rec core.Record) error {
	now := n.now()
	year := now.Year()
	prefix := fmt.Sprintf("NC-%d-", year)

	n.mu.Lock()
	defer n.mu.Unlock()

	existing, err := store.SelectAll(ctx, ncTable, nil)
	if err != nil {
		return fmt.Errorf("next nc number: %w", err)
	}

	series := ncSeries{store: store, year: year}
	seq := n.issued[series]
	for _, r := range existing {
		numero := r.String("numero")
		if !strings.HasPrefix(numero, prefix) {
			continue
		}
		if v, err := strconv.Atoi(strings.TrimPrefix(numero, prefix)); err == nil && v > seq {
			seq = v
		}
	}
	seq++
	n.issued[series] = seq

	rec["numero"] = fmt.Sprintf("%s%03d", prefix, seq)
	if rec["data_abertura"] == nil {
		rec["data_abertura"] = now.UTC().Format(time.RFC3339)
	}
	return nil
}
