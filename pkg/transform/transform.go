// Package transform reshapes raw character records into tabular rows and
// moves them into CSV files and Postgres.
package transform

import (
	"encoding/json"
	"fmt"
)

// CharacterRow is the tabular projection of a character record: identity,
// portrait URL and the number of comics the character appears in.
type CharacterRow struct {
	ID     int    `db:"id" json:"id"`
	Name   string `db:"name" json:"name"`
	Img    string `db:"img" json:"img"`
	Comics int    `db:"comics" json:"comics"`
}

// characterRecord mirrors the fields of a raw character record that the
// tabular projection uses.
type characterRecord struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Thumbnail struct {
		Path      string `json:"path"`
		Extension string `json:"extension"`
	} `json:"thumbnail"`
	Comics struct {
		Available int `json:"available"`
	} `json:"comics"`
}

// CharacterFromRecord projects a raw character record onto a CharacterRow.
func CharacterFromRecord(record json.RawMessage) (CharacterRow, error) {
	var rec characterRecord
	if err := json.Unmarshal(record, &rec); err != nil {
		return CharacterRow{}, fmt.Errorf("decode character record: %w", err)
	}
	if rec.ID == 0 {
		return CharacterRow{}, fmt.Errorf("character record has no id")
	}

	img := ""
	if rec.Thumbnail.Path != "" {
		img = rec.Thumbnail.Path + "." + rec.Thumbnail.Extension
	}

	return CharacterRow{
		ID:     rec.ID,
		Name:   rec.Name,
		Img:    img,
		Comics: rec.Comics.Available,
	}, nil
}

// Rows projects a batch of raw character records onto CharacterRows.
func Rows(records []json.RawMessage) ([]CharacterRow, error) {
	rows := make([]CharacterRow, 0, len(records))

	for i, record := range records {
		row, err := CharacterFromRecord(record)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		rows = append(rows, row)
	}

	return rows, nil
}
