package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// Helpers compartidos por los cuatro repositorios de documentos. Cada
// tipo tiene su tabla de cabecera y su tabla de líneas, pero con la
// misma forma: las funciones reciben los nombres de tabla. Los nombres
// vienen de constantes del paquete, nunca de entrada del usuario.

// insertLines inserta las líneas de un documento preservando el orden.
func insertLines(q Querier, table, documentID string, lines []entity.DocumentLine) error {
	query := `
		INSERT INTO ` + table + ` (document_id, line_no, product_id, quantity, unit_price, reason)
		VALUES ($1, $2, $3, $4, $5, $6)`
	for i, line := range lines {
		_, err := q.Exec(context.Background(), query,
			documentID, i+1, line.ProductID, line.Quantity, line.UnitPrice, line.Reason,
		)
		if err != nil {
			return fmt.Errorf("insert %s: %w", table, err)
		}
	}
	return nil
}

// loadLines carga las líneas de un documento en orden.
func loadLines(q Querier, table, documentID string) ([]entity.DocumentLine, error) {
	query := `
		SELECT product_id, quantity, unit_price, reason
		FROM ` + table + ` WHERE document_id = $1 ORDER BY line_no`
	rows, err := q.Query(context.Background(), query, documentID)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", table, err)
	}
	defer rows.Close()
	var lines []entity.DocumentLine
	for rows.Next() {
		var line entity.DocumentLine
		if err := rows.Scan(&line.ProductID, &line.Quantity, &line.UnitPrice, &line.Reason); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

// markValidated fija el estado terminal, validated_by y validation_date.
func markValidated(q Querier, table, id, status, validatedBy string, at time.Time) error {
	query := `
		UPDATE ` + table + ` SET status = $2, validated_by = $3, validation_date = $4, updated_at = now()
		WHERE id = $1`
	cmd, err := q.Exec(context.Background(), query, id, status, validatedBy, at)
	if err != nil {
		return fmt.Errorf("mark validated %s: %w", table, err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// updateStatus cambia solo el estado (cancelación).
func updateStatus(q Querier, table, id, status string) error {
	query := `UPDATE ` + table + ` SET status = $2, updated_at = now() WHERE id = $1`
	cmd, err := q.Exec(context.Background(), query, id, status)
	if err != nil {
		return fmt.Errorf("update status %s: %w", table, err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// deleteDocument borra la cabecera; las líneas caen por ON DELETE CASCADE.
func deleteDocument(q Querier, table, id string) error {
	cmd, err := q.Exec(context.Background(), `DELETE FROM `+table+` WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", table, err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// maxDocumentNumber devuelve el mayor document_number numérico del tipo
// (0 si no hay ninguno). Los números manuales no numéricos se ignoran.
func maxDocumentNumber(q Querier, table string) (int64, error) {
	query := `
		SELECT COALESCE(MAX(document_number::bigint), 0)
		FROM ` + table + ` WHERE document_number ~ '^[0-9]+$'`
	var max int64
	if err := q.QueryRow(context.Background(), query).Scan(&max); err != nil {
		return 0, fmt.Errorf("max document number %s: %w", table, err)
	}
	return max, nil
}
