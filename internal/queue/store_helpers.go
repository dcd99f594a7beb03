package queue

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"markerid/internal/fields"
)

const artifactColumns = "id, source, tokens_json, fields_json, status, record_index, score, label, reason, note, review_position, created_at, updated_at"

func scanArtifact(scanner interface{ Scan(dest ...any) error }) (*Artifact, error) {
	var (
		id          string
		source      sql.NullString
		tokensRaw   sql.NullString
		fieldsRaw   sql.NullString
		statusStr   string
		recordIndex sql.NullInt64
		score       sql.NullFloat64
		label       sql.NullString
		reason      sql.NullString
		note        sql.NullString
		position    sql.NullInt64
		createdRaw  sql.NullString
		updatedRaw  sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&source,
		&tokensRaw,
		&fieldsRaw,
		&statusStr,
		&recordIndex,
		&score,
		&label,
		&reason,
		&note,
		&position,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	artifact := &Artifact{
		ID:          id,
		Source:      source.String,
		Status:      Status(statusStr),
		RecordIndex: -1,
		Score:       score.Float64,
		Label:       label.String,
		Reason:      reason.String,
		Note:        note.String,
	}
	if recordIndex.Valid {
		artifact.RecordIndex = int(recordIndex.Int64)
	}
	if position.Valid {
		artifact.ReviewPosition = position.Int64
	}
	if tokensRaw.String != "" {
		if err := json.Unmarshal([]byte(tokensRaw.String), &artifact.Tokens); err != nil {
			return nil, fmt.Errorf("decode tokens for %s: %w", id, err)
		}
	}
	if fieldsRaw.String != "" {
		if err := json.Unmarshal([]byte(fieldsRaw.String), &artifact.Fields); err != nil {
			return nil, fmt.Errorf("decode fields for %s: %w", id, err)
		}
	}

	if created, err := parseTimeString(createdRaw.String); err == nil {
		artifact.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		artifact.UpdatedAt = updated
	}
	return artifact, nil
}

func encodeTokens(tokens []string) (string, error) {
	if tokens == nil {
		tokens = []string{}
	}
	data, err := json.Marshal(tokens)
	if err != nil {
		return "", fmt.Errorf("encode tokens: %w", err)
	}
	return string(data), nil
}

func encodeFields(fs fields.FieldSet) (string, error) {
	data, err := json.Marshal(fs)
	if err != nil {
		return "", fmt.Errorf("encode fields: %w", err)
	}
	return string(data), nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
