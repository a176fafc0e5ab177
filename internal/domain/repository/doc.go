// Package repository define los contratos de persistencia del núcleo de identidad.
//
// Las interfaces son independientes del almacenamiento; las implementaciones
// viven en internal/store/pg y internal/store/memory.
//
//	┌─────────────────────────────────────────────┐
//	│   identity (resolver, guard) / auth (login) │
//	└─────────────────────────────────────────────┘
//	                      │
//	                      ▼
//	┌─────────────────────────────────────────────┐
//	│ domain/repository (interfaces + Transactor) │
//	└─────────────────────────────────────────────┘
//	              │                 │
//	              ▼                 ▼
//	      ┌─────────────┐   ┌─────────────┐
//	      │  store/pg   │   │ store/memory│
//	      └─────────────┘   └─────────────┘
//
// Convenciones:
//   - Context siempre es el primer parámetro.
//   - Dentro de Transactor.InTx, los repositorios usan el ctx recibido por fn
//     para participar de la misma transacción.
//   - Las violaciones de unicidad se reportan como ErrConflict; quien llama
//     decide si reintenta.
package repository
