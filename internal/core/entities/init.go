// Package entities registers the quality-record entities with the core
// registry. Import it for side effects to make them available:
//
//	import _ "github.com/JonMunkholm/sgq/internal/core/entities"
package entities

// Each entity file registers its definition from init(). Registration order
// is export order: toners, unidades, retornados, garantias,
// nao_conformidades, tcos.
