// Package pg implementa repository.Store sobre PostgreSQL (pgx/v5).
//
// Los índices únicos sobre lower(email) y (provider, subject_id) son los que
// arbitran las carreras entre resoluciones concurrentes: una violación
// (SQLSTATE 23505) se reporta como repository.ErrConflict.
package pg
