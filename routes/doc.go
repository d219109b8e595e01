// Package routes loads the precomputed static stop/route dataset and serves
// O(1) stop lookups.
//
// The dataset is produced offline from the agency GTFS archive and is never
// regenerated at runtime. Once loaded the cache is read-only and safe for
// concurrent use.
package routes
