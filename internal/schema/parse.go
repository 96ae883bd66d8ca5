package schema

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fleetops/fleetquery/internal/domain/entity"
)

// Upstream document shapes. The canonical schema is a JSON array of
// table objects; a legacy name-keyed mapping form is also accepted and
// normalized identically.

type tableDoc struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Platforms   []string      `json:"platforms"`
	Evented     bool          `json:"evented"`
	Columns     []columnDoc   `json:"columns"`
	Examples    examplesField `json:"examples"`
	Notes       *string       `json:"notes"`
}

type columnDoc struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
}

// examplesField accepts either a single string (split on newlines) or a
// list of strings.
type examplesField []string

func (e *examplesField) UnmarshalJSON(raw []byte) error {
	var single string

	err := json.Unmarshal(raw, &single)
	if err == nil {
		*e = nil

		for _, line := range strings.Split(single, "\n") {
			line = strings.TrimSpace(line)
			if line != "" {
				*e = append(*e, line)
			}
		}

		return nil
	}

	var list []string

	err = json.Unmarshal(raw, &list)
	if err != nil {
		// Tolerate anything else (null, number, object): advisory data.
		*e = nil

		return nil
	}

	*e = list

	return nil
}

// ParseDocument normalizes an upstream schema document into the
// registry shape. Entries without a name are skipped, never inserted
// empty.
func ParseDocument(raw []byte) (map[string]entity.TableSchema, error) {
	var docs []tableDoc

	err := json.Unmarshal(raw, &docs)
	if err != nil {
		var byName map[string]tableDoc

		mapErr := json.Unmarshal(raw, &byName)
		if mapErr != nil {
			return nil, fmt.Errorf("document is neither a table list nor a table mapping: %w", err)
		}

		docs = make([]tableDoc, 0, len(byName))

		for name, doc := range byName {
			if doc.Name == "" {
				doc.Name = name
			}

			docs = append(docs, doc)
		}
	}

	ret := make(map[string]entity.TableSchema, len(docs))

	for _, doc := range docs {
		if doc.Name == "" {
			continue
		}

		ret[doc.Name] = normalizeTable(doc)
	}

	return ret, nil
}

func normalizeTable(doc tableDoc) entity.TableSchema {
	columns := make([]string, 0, len(doc.Columns))
	details := make(map[string]entity.ColumnDetail, len(doc.Columns))

	for _, col := range doc.Columns {
		if col.Name == "" {
			continue
		}

		if _, seen := details[col.Name]; !seen {
			columns = append(columns, col.Name)
		}

		colType := col.Type
		if colType == "" {
			colType = "TEXT"
		}

		details[col.Name] = entity.ColumnDetail{
			Type:        colType,
			Description: col.Description,
			Required:    col.Required,
		}
	}

	notes := ""
	if doc.Notes != nil {
		notes = strings.TrimSpace(*doc.Notes)
	}

	return entity.TableSchema{
		Name:          doc.Name,
		Description:   strings.TrimSpace(doc.Description),
		Platforms:     doc.Platforms,
		Evented:       doc.Evented,
		Columns:       columns,
		ColumnDetails: details,
		Examples:      doc.Examples,
		Notes:         notes,
	}
}
