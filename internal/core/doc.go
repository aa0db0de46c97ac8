// Package core provides the tabular exchange engine behind the quality
// records service.
//
// It converts between spreadsheet files and stored records, independent of
// any transport. Web handlers and the CLI both drive it through [Service].
//
// # Entities
//
// Entities are registered at init time using [Register]. Each
// [EntityDefinition] declares the column labels it reads, the references it
// resolves by natural key, its derived fields, and its duplicate policy:
//
//	core.Register(core.EntityDefinition{
//	    Info: core.EntityInfo{Key: "unidades", Table: "unidades", Label: "Unidades",
//	        NaturalKey: "unidade", NaturalKeyLabel: "Unidade"},
//	    Fields: []core.FieldSpec{
//	        {Label: "Unidade", Field: "unidade", Kind: core.KindString, Required: true},
//	    },
//	    Policy: core.RejectByNaturalKey,
//	})
//
// # Import Pipeline
//
// [Service.Import] reads the first worksheet (or a CSV file) and drives every
// row through the same stages:
//
//  1. [RowMapper] looks up columns by exact label and coerces values
//  2. [ForeignKeyResolver] replaces natural keys with referenced ids
//  3. the entity's DeriveFunc computes derived fields
//  4. [DuplicateGuard] applies the duplicate policy
//  5. [BatchWriter] inserts the record with one store call
//
// Each row ends Imported, Skipped, or Failed (see [RowState]) and never
// affects its siblings. Rows run on a bounded worker pool; outcomes are
// stored by row index so the [Report] does not depend on completion order.
// Only unreadable or empty files fail the whole call.
//
// # Export
//
// [Service.Export] and [Service.ExportAll] load records with references
// attached, recompute derived fields, and write one worksheet per entity.
// Currency, percent, and date formatting happen only here.
//
// # Persistence
//
// The engine talks to storage only through [Store]: select with an equality
// filter and order, insert one, update one, delete one. No multi-statement
// transactions are issued.
//
// # Error Handling
//
// Technical errors are mapped to user-facing messages with support codes
// using [MapError]:
//
//   - IMP001-IMP006: Import errors (format, empty, missing, unresolved, busy)
//   - ENT001-ENT003: Entity and record errors
//   - DB001-DB006: Store errors
//   - REQ001-REQ005: Request errors
package core
