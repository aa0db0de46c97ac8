package core_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/sgq/internal/core"
	_ "github.com/JonMunkholm/sgq/internal/core/entities"
	"github.com/JonMunkholm/sgq/internal/store/memstore"
)

const tonerHeader = "Modelo;Peso Cheio (g);Peso Vazio (g);Impressoras Compatíveis;Cor;Área ISO;Capacidade;Tipo;Preço"

func newService(t *testing.T) (*core.Service, *memstore.Store) {
	t.Helper()
	store := memstore.New()
	return core.NewService(store, core.Options{}), store
}

func csvFile(lines ...string) []byte {
	return []byte(strings.Join(lines, "\n") + "\n")
}

func mustImport(t *testing.T, svc *core.Service, entity string, data []byte) *core.Report {
	t.Helper()
	report, err := svc.Import(context.Background(), entity, entity+".csv", data)
	if err != nil {
		t.Fatalf("Import(%s) error = %v", entity, err)
	}
	return report
}

func mustList(t *testing.T, svc *core.Service, entity string) []core.Record {
	t.Helper()
	recs, err := svc.List(context.Background(), entity)
	if err != nil {
		t.Fatalf("List(%s) error = %v", entity, err)
	}
	return recs
}

// stripManaged drops fields assigned at insert time so records from
// different stores compare equal.
func stripManaged(recs []core.Record, sortBy string) []core.Record {
	out := make([]core.Record, len(recs))
	for i, r := range recs {
		c := r.Clone()
		for _, k := range []string{"id", "created_at", "created_by", "data_abertura", "numero"} {
			delete(c, k)
		}
		out[i] = c
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].String(sortBy) < out[j].String(sortBy)
	})
	return out
}

func wantCounts(t *testing.T, r *core.Report, imported, skipped, failed int) {
	t.Helper()
	if r.Imported != imported || r.Skipped != skipped || r.Failed != failed {
		t.Errorf("report = %d imported, %d skipped, %d failed; want %d/%d/%d (reasons %v)",
			r.Imported, r.Skipped, r.Failed, imported, skipped, failed, r.Reasons)
	}
}

func seedRetornadoRefs(t *testing.T, svc *core.Service) {
	t.Helper()
	mustImport(t, svc, "toners", csvFile(tonerHeader, "TN-1;800;200;HP;Black;5%;1000;Original;100"))
	mustImport(t, svc, "unidades", csvFile("Unidade", "Matriz"))
}

func TestImport_TonerDerivedFields(t *testing.T) {
	svc, _ := newService(t)

	report := mustImport(t, svc, "toners", csvFile(
		tonerHeader,
		"TN-1060;850;150;HP 1020;Black;5%;2600;Compatível;120,00",
		"TN-2000;100;150;;;;1000;;R$ 10,00",
	))
	wantCounts(t, report, 2, 0, 0)

	recs := mustList(t, svc, "toners")
	if len(recs) != 2 {
		t.Fatalf("List() = %d records, want 2", len(recs))
	}

	tests := []struct {
		modelo     string
		gramatura  float64
		precoFolha float64
		area       float64
		cor        string
		tipo       string
	}{
		{"TN-1060", 700, 0.046, 0.05, "Black", "Compatível"},
		{"TN-2000", -50, 0.01, 0.05, "Black", "Compatível"},
	}
	for i, tt := range tests {
		rec := recs[i]
		if rec.String("modelo") != tt.modelo {
			t.Fatalf("recs[%d].modelo = %q, want %q", i, rec.String("modelo"), tt.modelo)
		}
		if got := rec.Number("gramatura"); got != tt.gramatura {
			t.Errorf("%s gramatura = %v, want %v", tt.modelo, got, tt.gramatura)
		}
		if got := rec.Number("preco_folha"); got != tt.precoFolha {
			t.Errorf("%s preco_folha = %v, want %v", tt.modelo, got, tt.precoFolha)
		}
		if got := rec.Number("area_impressa_iso"); got != tt.area {
			t.Errorf("%s area_impressa_iso = %v, want %v", tt.modelo, got, tt.area)
		}
		if got := rec.String("cor"); got != tt.cor {
			t.Errorf("%s cor = %q, want %q", tt.modelo, got, tt.cor)
		}
		if got := rec.String("tipo"); got != tt.tipo {
			t.Errorf("%s tipo = %q, want %q", tt.modelo, got, tt.tipo)
		}
	}
}

func TestImport_ZeroCapacityFails(t *testing.T) {
	svc, store := newService(t)

	report := mustImport(t, svc, "toners", csvFile(tonerHeader, "TN-0;1;1;;;;0;;10"))
	wantCounts(t, report, 0, 0, 1)

	if diff := cmp.Diff([]string{"line 2: missing field Capacidade"}, report.Reasons); diff != "" {
		t.Errorf("reasons mismatch (-want +got):\n%s", diff)
	}
	if n := store.Count("toners"); n != 0 {
		t.Errorf("toners stored = %d, want 0", n)
	}
}

func TestImport_RejectByNaturalKeyTwice(t *testing.T) {
	svc, store := newService(t)
	file := csvFile(tonerHeader,
		"TN-1;1;1;;;;100;;1",
		"TN-2;1;1;;;;100;;1",
	)

	wantCounts(t, mustImport(t, svc, "toners", file), 2, 0, 0)

	second := mustImport(t, svc, "toners", file)
	wantCounts(t, second, 0, 2, 0)
	for _, o := range second.Outcomes {
		if o.State != core.StateDuplicate {
			t.Errorf("line %d state = %v, want duplicate", o.Line, o.State)
		}
	}
	if !strings.Contains(strings.Join(second.Reasons, "\n"), "duplicate Modelo: TN-1") {
		t.Errorf("reasons = %v, want duplicate Modelo: TN-1", second.Reasons)
	}
	if n := store.Count("toners"); n != 2 {
		t.Errorf("toners stored = %d, want 2", n)
	}
}

func TestImport_DuplicateWithinFile(t *testing.T) {
	svc, store := newService(t)

	report := mustImport(t, svc, "unidades", csvFile("Unidade", "Matriz", "Filial", "Matriz"))
	wantCounts(t, report, 2, 1, 0)
	if n := store.Count("unidades"); n != 2 {
		t.Errorf("unidades stored = %d, want 2", n)
	}
}

func TestImport_AlwaysInsertDoubles(t *testing.T) {
	svc, store := newService(t)
	seedRetornadoRefs(t, svc)

	file := csvFile("Modelo;Unidade;ID Cliente;Peso Retornado;Destino",
		"TN-1;Matriz;10;500;Estoque",
		"TN-1;Matriz;11;300;Descarte",
	)
	wantCounts(t, mustImport(t, svc, "retornados", file), 2, 0, 0)
	wantCounts(t, mustImport(t, svc, "retornados", file), 2, 0, 0)

	if n := store.Count("retornados"); n != 4 {
		t.Errorf("retornados stored = %d, want 4", n)
	}
}

func TestImport_MixedOutcomes(t *testing.T) {
	svc, store := newService(t)
	seedRetornadoRefs(t, svc)

	report := mustImport(t, svc, "retornados", csvFile(
		"Modelo;Unidade;ID Cliente;Peso Retornado;Destino",
		"TN-1;Matriz;1;500;Estoque",
		"TN-X;Matriz;2;100;Descarte",
		"TN-1;;3;100;Estoque",
	))

	wantCounts(t, report, 1, 1, 1)
	wantReasons := []string{
		"line 3: referenced entity not found: TN-X",
		"line 4: missing field Unidade",
	}
	if diff := cmp.Diff(wantReasons, report.Reasons); diff != "" {
		t.Errorf("reasons mismatch (-want +got):\n%s", diff)
	}

	wantStates := []core.RowState{core.StateWriteOK, core.StateUnresolved, core.StateMissingRequiredField}
	for i, o := range report.Outcomes {
		if o.Line != i+2 || o.State != wantStates[i] {
			t.Errorf("outcome %d = line %d %v, want line %d %v", i, o.Line, o.State, i+2, wantStates[i])
		}
	}

	// preco_folha 0.1 * 10000 units, only for the stock row.
	if report.Total == nil || *report.Total != 1000 {
		t.Errorf("Total = %v, want 1000", report.Total)
	}
	if got, want := report.Summary(), "Import complete: 1 imported, 1 skipped, 1 failed (total R$ 1.000,00)"; got != want {
		t.Errorf("Summary() = %q, want %q", got, want)
	}

	if n := store.Count("retornados"); n != 1 {
		t.Fatalf("retornados stored = %d, want 1", n)
	}
	recs := mustList(t, svc, "retornados")
	if got := recs[0].Number("valor_recuperado"); got != 1000 {
		t.Errorf("listed valor_recuperado = %v, want 1000", got)
	}
	if got := recs[0].Ref("toner").String("modelo"); got != "TN-1" {
		t.Errorf("attached toner = %q, want TN-1", got)
	}
	stored, _ := store.SelectAll(context.Background(), "retornados", nil)
	if _, ok := stored[0]["valor_recuperado"]; ok {
		t.Error("valor_recuperado was persisted")
	}
}

func TestImport_MissingRequiredNeverPersisted(t *testing.T) {
	svc, store := newService(t)

	report := mustImport(t, svc, "nao_conformidades", csvFile(
		"Responsável;Descrição;Tipo;Gravidade;Departamento",
		"Ana;Falha;Produto;Alta;Qualidade",
		"Bia;Falha;Produto;;Qualidade",
	))

	wantCounts(t, report, 1, 0, 1)
	if n := store.Count("nao_conformidades"); n != 1 {
		t.Errorf("stored = %d, want 1", n)
	}
	if report.Outcomes[1].Reason != "missing field Gravidade" {
		t.Errorf("reason = %q", report.Outcomes[1].Reason)
	}
}

func TestImport_NCNumbering(t *testing.T) {
	svc, _ := newService(t)

	mustImport(t, svc, "nao_conformidades", csvFile(
		"Responsável;Descrição;Tipo;Gravidade;Departamento",
		"Ana;A;Produto;Alta;Qualidade",
		"Bia;B;Processo;Baixa;Compras",
		"Caio;C;Produto;Média;Qualidade",
	))

	var got []string
	for _, r := range mustList(t, svc, "nao_conformidades") {
		got = append(got, r.String("numero"))
		if r.String("status") != "Aberta" {
			t.Errorf("status = %q, want Aberta", r.String("status"))
		}
	}
	sort.Strings(got)

	year := time.Now().Year()
	want := []string{
		fmt.Sprintf("NC-%d-001", year),
		fmt.Sprintf("NC-%d-002", year),
		fmt.Sprintf("NC-%d-003", year),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("numbers mismatch (-want +got):\n%s", diff)
	}
}

func TestImport_WriteErrorReleasesRow(t *testing.T) {
	svc, store := newService(t)
	store.SetInsertHook(func(table string, rec core.Record) error {
		if table == "toners" && rec.String("modelo") == "BAD" {
			return errors.New("connection reset by peer")
		}
		return nil
	})

	report := mustImport(t, svc, "toners", csvFile(tonerHeader,
		"BAD;1;1;;;;100;;1",
		"GOOD;1;1;;;;100;;1",
	))

	wantCounts(t, report, 1, 0, 1)
	if got := report.Outcomes[0]; got.State != core.StateWriteError || !strings.Contains(got.Reason, "connection reset by peer") {
		t.Errorf("outcome = %+v, want write error", got)
	}
}

func TestImport_SameKeyRetriedAfterFailedWrite(t *testing.T) {
	svc, store := newService(t)

	var once sync.Once
	store.SetInsertHook(func(table string, rec core.Record) error {
		if table != "unidades" {
			return nil
		}
		var err error
		once.Do(func() {
			time.Sleep(50 * time.Millisecond)
			err = errors.New("connection reset by peer")
		})
		return err
	})

	report := mustImport(t, svc, "unidades", csvFile("Unidade", "Matriz", "Matriz"))

	wantCounts(t, report, 1, 0, 1)
	if n := store.Count("unidades"); n != 1 {
		t.Errorf("unidades stored = %d, want 1", n)
	}
	for _, reason := range report.Reasons {
		if strings.Contains(reason, "duplicate") {
			t.Errorf("reason %q reports a duplicate that was never stored", reason)
		}
	}
}

func TestImport_NestedCollections(t *testing.T) {
	svc, store := newService(t)

	report := mustImport(t, svc, "tcos", csvFile(
		"Modelo;Preço Impressora;PIS;IPI;Custo Operacional 1 - Título;Custo Operacional 1 - Valor;Custo Operacional 2 - Título;Custo Operacional 2 - Valor;Custo Indireto 1 - Título;Custo Indireto 1 - Valor",
		"M-1;1.000,00;10;20;Toner;150;Manutenção;80,5;Energia;12",
	))
	wantCounts(t, report, 1, 0, 0)
	if report.Total == nil || *report.Total != 1030 {
		t.Errorf("Total = %v, want 1030", report.Total)
	}

	recs := mustList(t, svc, "tcos")
	wantOps := []core.LineItem{{Title: "Toner", Value: 150}, {Title: "Manutenção", Value: 80.5}}
	if diff := cmp.Diff(wantOps, recs[0].Items("custos_operacionais")); diff != "" {
		t.Errorf("custos_operacionais mismatch (-want +got):\n%s", diff)
	}
	if got := store.Count("tco_custos_indiretos"); got != 1 {
		t.Errorf("custos indiretos stored = %d, want 1", got)
	}

	if err := svc.DeleteRecord(context.Background(), "tcos", recs[0].ID()); err != nil {
		t.Fatalf("DeleteRecord() error = %v", err)
	}
	if n := store.Count("tco_custos_operacionais") + store.Count("tco_custos_indiretos"); n != 0 {
		t.Errorf("child rows left = %d, want 0", n)
	}
}

func TestPreview_WritesNothing(t *testing.T) {
	svc, store := newService(t)

	report, err := svc.Preview(context.Background(), "toners", "t.csv", csvFile(tonerHeader,
		"TN-1;1;1;;;;100;;1",
		";1;1;;;;100;;1",
	))
	if err != nil {
		t.Fatalf("Preview() error = %v", err)
	}

	wantCounts(t, report, 1, 0, 1)
	if !report.DryRun {
		t.Error("DryRun = false")
	}
	if n := store.Count("toners") + store.Count(core.AuditTable); n != 0 {
		t.Errorf("stored rows = %d, want 0", n)
	}
}

func TestImport_RejectedInputs(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Import(ctx, "nope", "x.csv", csvFile("A", "1"))
	if !errors.Is(err, core.ErrUnknownEntity) {
		t.Errorf("unknown entity error = %v", err)
	}

	_, err = svc.Import(ctx, "toners", "x.csv", csvFile(tonerHeader))
	var empty *core.EmptyBatchError
	if !errors.As(err, &empty) {
		t.Errorf("header-only error = %v, want *EmptyBatchError", err)
	}

	_, err = svc.Import(ctx, "toners", "x.xlsx", []byte("PK\x03\x04garbage"))
	var format *core.FormatError
	if !errors.As(err, &format) {
		t.Errorf("corrupt file error = %v, want *FormatError", err)
	}
}

func TestImport_WrongFileWritesNothing(t *testing.T) {
	ole2 := append([]byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}, []byte("\x00\x01garbage\n\x02\x00more\n")...)

	tests := []struct {
		name     string
		entity   string
		fileName string
		data     []byte
	}{
		{"legacy xls", "garantias", "garantias.xls", ole2},
		{"binary without extension", "garantias", "upload", []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\n")},
		{"another entity's sheet", "garantias", "unidades.csv", csvFile("Unidade", "Matriz", "Filial")},
		{"unrelated headers", "toners", "toners.csv", csvFile("Nome;Idade", "Ana;30")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store := newService(t)

			report, err := svc.Import(context.Background(), tt.entity, tt.fileName, tt.data)
			var format *core.FormatError
			if !errors.As(err, &format) {
				t.Fatalf("Import() = %v, error %v; want *FormatError", report, err)
			}
			if n := store.Count(tt.entity); n != 0 {
				t.Errorf("%s stored = %d, want 0", tt.entity, n)
			}
		})
	}
}

func TestImport_Audited(t *testing.T) {
	svc, store := newService(t)
	ctx := core.ContextWithIdentity(context.Background(), core.Identity{UserID: "u-7", Name: "Ana"})

	if _, err := svc.Import(ctx, "unidades", "u.csv", csvFile("Unidade", "Matriz")); err != nil {
		t.Fatal(err)
	}

	entries, _ := store.SelectAll(ctx, core.AuditTable, nil)
	if len(entries) != 1 {
		t.Fatalf("audit entries = %d, want 1", len(entries))
	}
	e := entries[0]
	if e.String("action") != "import" || e.String("user_id") != "u-7" || e.Number("rows_imported") != 1 {
		t.Errorf("audit entry = %v", e)
	}

	unidades := mustList(t, svc, "unidades")
	if got := unidades[0].String("created_by"); got != "u-7" {
		t.Errorf("created_by = %q, want u-7", got)
	}
}

func TestImport_ConcurrentDisjointBatches(t *testing.T) {
	svc, store := newService(t)

	const batches, rows = 3, 25
	var wg sync.WaitGroup
	reports := make([]*core.Report, batches)
	errs := make([]error, batches)
	for b := 0; b < batches; b++ {
		lines := []string{tonerHeader}
		for r := 0; r < rows; r++ {
			lines = append(lines, fmt.Sprintf("B%d-%d;1;1;;;;100;;1", b, r))
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			reports[b], errs[b] = svc.Import(context.Background(), "toners", "t.csv", csvFile(lines...))
		}()
	}
	wg.Wait()

	for b := 0; b < batches; b++ {
		if errs[b] != nil {
			t.Fatalf("batch %d error = %v", b, errs[b])
		}
		wantCounts(t, reports[b], rows, 0, 0)
	}
	if n := store.Count("toners"); n != batches*rows {
		t.Errorf("toners stored = %d, want %d", n, batches*rows)
	}
}

func TestExport_RoundTrip(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		entity string
		sortBy string
		file   []byte
	}{
		{
			entity: "toners",
			sortBy: "modelo",
			file: csvFile(tonerHeader,
				"TN-1060;850;150;HP 1020, HP 1018;Black;5%;2600;Compatível;199,90",
				"TN-2000;1.200,5;300;;Cyan;2,5%;10000;Original;1.234,56",
			),
		},
		{
			entity: "tcos",
			sortBy: "modelo",
			file: csvFile(
				"Modelo;Fabricante;Preço Impressora;ICMS;Custo Operacional 1 - Título;Custo Operacional 1 - Valor;Custo Indireto 1 - Título;Custo Indireto 1 - Valor;Custo Indireto 2 - Título;Custo Indireto 2 - Valor",
				"M-1;Brother;1500;270;Toner;150;Energia;12,5;Espaço;30",
				"M-2;HP;800;;;;Energia;9;;",
			),
		},
		{
			entity: "garantias",
			sortBy: "numero_serie",
			file: csvFile(
				"Solicitante;Data Solicitação;Número Série;Chave NF Compra;Status;Quantidade;Valor Total",
				"Ana;15/03/2025;SN-1;35250312345678000190550010000012341000012345;Em análise;2;450,00",
				"Bia;;SN-2;;;;",
			),
		},
	}

	for _, tt := range tests {
		t.Run(tt.entity, func(t *testing.T) {
			first, _ := newService(t)
			wantCounts(t, mustImport(t, first, tt.entity, tt.file), 2, 0, 0)

			exported, err := first.Export(ctx, tt.entity)
			if err != nil {
				t.Fatalf("Export() error = %v", err)
			}

			second, _ := newService(t)
			report, err := second.Import(ctx, tt.entity, tt.entity+".xlsx", exported)
			if err != nil {
				t.Fatalf("re-Import() error = %v", err)
			}
			wantCounts(t, report, 2, 0, 0)

			want := stripManaged(mustList(t, first, tt.entity), tt.sortBy)
			got := stripManaged(mustList(t, second, tt.entity), tt.sortBy)
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestExportAll_OneSheetPerEntity(t *testing.T) {
	svc, _ := newService(t)
	seedRetornadoRefs(t, svc)

	data, err := svc.ExportAll(context.Background())
	if err != nil {
		t.Fatalf("ExportAll() error = %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()

	var want []string
	for _, def := range core.All() {
		want = append(want, def.Info.Sheet)
	}
	if diff := cmp.Diff(want, f.GetSheetList()); diff != "" {
		t.Errorf("sheets mismatch (-want +got):\n%s", diff)
	}

	// The first sheet is the first registered entity.
	table, err := core.ReadTable("all.xlsx", data)
	if err != nil {
		t.Fatalf("ReadTable() error = %v", err)
	}
	first := core.All()[0]
	if len(table.Headers) != len(first.Columns) {
		t.Errorf("first sheet headers = %v, want %d columns of %s", table.Headers, len(first.Columns), first.Info.Key)
	}
}

func TestUpdateRecord(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	mustImport(t, svc, "toners", csvFile(tonerHeader, "TN-1;800;200;;;;2600;;120"))
	id := mustList(t, svc, "toners")[0].ID()

	updated, err := svc.UpdateRecord(ctx, "toners", id, core.Record{"preco": "260,00", "peso_vazio": 900.0})
	if err != nil {
		t.Fatalf("UpdateRecord() error = %v", err)
	}
	if got := updated.Number("preco_folha"); got != 0.1 {
		t.Errorf("preco_folha = %v, want 0.1", got)
	}

	listed := mustList(t, svc, "toners")[0]
	if listed.Number("preco") != 260 || listed.Number("gramatura") != -100 {
		t.Errorf("listed = preco %v gramatura %v, want 260 and -100", listed.Number("preco"), listed.Number("gramatura"))
	}

	tests := []struct {
		name  string
		patch core.Record
		want  error
	}{
		{"read-only field", core.Record{"id": "x"}, core.ErrInvalidField},
		{"unknown field", core.Record{"nope": 1.0}, core.ErrInvalidField},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.UpdateRecord(ctx, "toners", id, tt.patch); !errors.Is(err, tt.want) {
				t.Errorf("UpdateRecord() error = %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := svc.UpdateRecord(ctx, "toners", "missing", core.Record{"preco": 1.0}); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("UpdateRecord(missing) error = %v, want ErrNotFound", err)
	}
}

func TestUpdateRecord_Reference(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	seedRetornadoRefs(t, svc)
	mustImport(t, svc, "toners", csvFile(tonerHeader, "TN-2;800;200;;;;1000;;200"))
	mustImport(t, svc, "retornados", csvFile("Modelo;Unidade;Destino", "TN-1;Matriz;Estoque"))

	var tn2 string
	for _, r := range mustList(t, svc, "toners") {
		if r.String("modelo") == "TN-2" {
			tn2 = r.ID()
		}
	}
	ret := mustList(t, svc, "retornados")[0]

	updated, err := svc.UpdateRecord(ctx, "retornados", ret.ID(), core.Record{"toner_id": tn2})
	if err != nil {
		t.Fatalf("UpdateRecord() error = %v", err)
	}
	if got := updated.Number("valor_recuperado"); got != 2000 {
		t.Errorf("valor_recuperado = %v, want 2000", got)
	}

	var resolution *core.ResolutionError
	if _, err := svc.UpdateRecord(ctx, "retornados", ret.ID(), core.Record{"toner_id": "missing"}); !errors.As(err, &resolution) {
		t.Errorf("UpdateRecord(bad ref) error = %v, want *ResolutionError", err)
	}
}

func TestDeleteRecord_Cascades(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()
	seedRetornadoRefs(t, svc)
	mustImport(t, svc, "retornados", csvFile("Modelo;Unidade", "TN-1;Matriz", "TN-1;Matriz"))

	toner := mustList(t, svc, "toners")[0]
	if err := svc.DeleteRecord(ctx, "toners", toner.ID()); err != nil {
		t.Fatalf("DeleteRecord() error = %v", err)
	}

	if n := store.Count("toners") + store.Count("retornados"); n != 0 {
		t.Errorf("rows left = %d, want 0", n)
	}
	if n := store.Count("unidades"); n != 1 {
		t.Errorf("unidades = %d, want 1", n)
	}

	if err := svc.DeleteRecord(ctx, "toners", toner.ID()); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("second DeleteRecord() error = %v, want ErrNotFound", err)
	}
}

func TestEntities(t *testing.T) {
	svc, _ := newService(t)

	var retornados core.EntitySummary
	for _, e := range svc.Entities() {
		if e.Key == "retornados" {
			retornados = e
		}
	}

	want := core.EntitySummary{
		Key:        "retornados",
		Label:      "Retornados",
		Sheet:      "Retornados",
		Policy:     "always_insert",
		Columns:    []string{"ID Cliente", "Peso Retornado", "Destino", "Modelo", "Unidade"},
		Required:   []string{"Modelo", "Unidade"},
		References: []string{"toners", "unidades"},
	}
	if diff := cmp.Diff(want, retornados); diff != "" {
		t.Errorf("summary mismatch (-want +got):\n%s", diff)
	}
}
