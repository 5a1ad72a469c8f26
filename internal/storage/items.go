package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kaedesrs/kotoba/internal/apperr"
	"github.com/kaedesrs/kotoba/internal/domain"
)

// encodeMeanings/decodeMeanings implement spec.md §6's canonical,
// lossless encoding for the language->meanings map stored in a TEXT column.
func encodeMeanings(m map[domain.Language][]string) (string, error) {
	raw := make(map[string][]string, len(m))
	for lang, meanings := range m {
		raw[string(lang)] = meanings
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func decodeMeanings(s string) (map[domain.Language][]string, error) {
	var raw map[string][]string
	if s == "" {
		return map[domain.Language][]string{}, nil
	}
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		return nil, err
	}
	out := make(map[domain.Language][]string, len(raw))
	for lang, meanings := range raw {
		out[domain.Language(lang)] = meanings
	}
	return out, nil
}

func encodeStrings(ss []string) (string, error) {
	if ss == nil {
		ss = []string{}
	}
	data, err := json.Marshal(ss)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func decodeStrings(s string) ([]string, error) {
	if s == "" {
		return nil, nil
	}
	var ss []string
	if err := json.Unmarshal([]byte(s), &ss); err != nil {
		return nil, err
	}
	return ss, nil
}

// CreateVocabItem inserts a new vocabulary item, assigning its ID.
func (db *DB) CreateVocabItem(item *domain.VocabItem) error {
	tagsJSON, err := encodeStrings(item.Tags)
	if err != nil {
		return apperr.Wrap(apperr.Backend, "encode tags", err)
	}
	meaningsJSON, err := encodeMeanings(item.Meanings)
	if err != nil {
		return apperr.Wrap(apperr.Backend, "encode meanings", err)
	}

	res, err := db.conn.Exec(
		`INSERT INTO vocabulary (jlpt_level, surface, reading, sino_viet, part_of_speech, tags, meanings, notes)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		item.JLPT.String(), item.Surface, item.Reading, item.SinoViet, item.PartOfSp, tagsJSON, meaningsJSON, item.Notes,
	)
	if err != nil {
		return translateErr(err, "vocabulary item not found")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return apperr.Wrap(apperr.Backend, "read inserted vocabulary id", err)
	}
	item.ID = int(id)
	item.CreatedAt = time.Now()
	item.UpdatedAt = item.CreatedAt
	return nil
}

// CreateKanjiItem inserts a new kanji item, assigning its ID.
func (db *DB) CreateKanjiItem(item *domain.KanjiItem) error {
	onJSON, err := encodeStrings(item.OnReadings)
	if err != nil {
		return apperr.Wrap(apperr.Backend, "encode on-readings", err)
	}
	kunJSON, err := encodeStrings(item.KunReadings)
	if err != nil {
		return apperr.Wrap(apperr.Backend, "encode kun-readings", err)
	}
	meaningsJSON, err := encodeMeanings(item.Meanings)
	if err != nil {
		return apperr.Wrap(apperr.Backend, "encode meanings", err)
	}

	res, err := db.conn.Exec(
		`INSERT INTO kanji (jlpt_level, surface, on_readings, kun_readings, sino_viet, stroke_count, radical, meanings, notes)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.JLPT.String(), item.Surface, onJSON, kunJSON, item.SinoViet, item.StrokeCount, item.Radical, meaningsJSON, item.Notes,
	)
	if err != nil {
		return translateErr(err, "kanji item not found")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return apperr.Wrap(apperr.Backend, "read inserted kanji id", err)
	}
	item.ID = int(id)
	item.CreatedAt = time.Now()
	item.UpdatedAt = item.CreatedAt
	return nil
}

func (db *DB) vocabFromRow(row *sql.Row) (*domain.VocabItem, error) {
	var r VocabRow
	var jlpt string
	if err := row.Scan(&r.ID, &jlpt, &r.Surface, &r.Reading, &r.SinoViet, &r.PartOfSp, &r.TagsJSON, &r.MeaningsJSON, &r.Notes, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, translateErr(err, "vocabulary item not found")
	}
	return mapVocabRow(r, jlpt)
}

func mapVocabRow(r VocabRow, jlptRaw string) (*domain.VocabItem, error) {
	jlpt, err := domain.ParseJLPTLevel(jlptRaw)
	if err != nil {
		return nil, apperr.Wrap(apperr.Integrity, "decode vocabulary jlpt level", err)
	}
	tags, err := decodeStrings(r.TagsJSON)
	if err != nil {
		return nil, apperr.Wrap(apperr.Integrity, "decode vocabulary tags", err)
	}
	meanings, err := decodeMeanings(r.MeaningsJSON)
	if err != nil {
		return nil, apperr.Wrap(apperr.Integrity, "decode vocabulary meanings", err)
	}
	return &domain.VocabItem{
		ID: r.ID, JLPT: jlpt, Surface: r.Surface, Reading: r.Reading,
		SinoViet: deref(r.SinoViet), PartOfSp: r.PartOfSp, Tags: tags,
		Meanings: meanings, Notes: r.Notes, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}, nil
}

func mapKanjiRow(r KanjiRow, jlptRaw string) (*domain.KanjiItem, error) {
	jlpt, err := domain.ParseJLPTLevel(jlptRaw)
	if err != nil {
		return nil, apperr.Wrap(apperr.Integrity, "decode kanji jlpt level", err)
	}
	onReadings, err := decodeStrings(r.OnReadingsJSON)
	if err != nil {
		return nil, apperr.Wrap(apperr.Integrity, "decode on-readings", err)
	}
	kunReadings, err := decodeStrings(r.KunReadingsJSON)
	if err != nil {
		return nil, apperr.Wrap(apperr.Integrity, "decode kun-readings", err)
	}
	meanings, err := decodeMeanings(r.MeaningsJSON)
	if err != nil {
		return nil, apperr.Wrap(apperr.Integrity, "decode kanji meanings", err)
	}
	return &domain.KanjiItem{
		ID: r.ID, JLPT: jlpt, Surface: r.Surface, OnReadings: onReadings, KunReadings: kunReadings,
		SinoViet: deref(r.SinoViet), StrokeCount: r.StrokeCount, Radical: r.Radical,
		Meanings: meanings, Notes: r.Notes, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// GetItem retrieves an item by id and kind.
func (db *DB) GetItem(id int, kind domain.ItemKind) (domain.Item, error) {
	switch kind {
	case domain.KindVocab:
		row := db.conn.QueryRow(
			`SELECT id, jlpt_level, surface, reading, sino_viet, part_of_speech, tags, meanings, notes, created_at, updated_at
			 FROM vocabulary WHERE id = ?`, id)
		item, err := db.vocabFromRow(row)
		if err != nil {
			return nil, err
		}
		return item, nil
	case domain.KindKanji:
		var r KanjiRow
		var jlpt string
		err := db.conn.QueryRow(
			`SELECT id, jlpt_level, surface, on_readings, kun_readings, sino_viet, stroke_count, radical, meanings, notes, created_at, updated_at
			 FROM kanji WHERE id = ?`, id,
		).Scan(&r.ID, &jlpt, &r.Surface, &r.OnReadingsJSON, &r.KunReadingsJSON, &r.SinoViet, &r.StrokeCount, &r.Radical, &r.MeaningsJSON, &r.Notes, &r.CreatedAt, &r.UpdatedAt)
		if err != nil {
			return nil, translateErr(err, "kanji item not found")
		}
		item, err := mapKanjiRow(r, jlpt)
		if err != nil {
			return nil, err
		}
		return item, nil
	default:
		return nil, apperr.New(apperr.Invalid, fmt.Sprintf("unknown item kind %q", kind))
	}
}

// UpdateItem bumps updated_at and rewrites an item's mutable fields. Per
// spec.md §3, edits never touch review streaks.
func (db *DB) UpdateItem(item domain.Item) error {
	switch v := item.(type) {
	case *domain.VocabItem:
		tagsJSON, err := encodeStrings(v.Tags)
		if err != nil {
			return apperr.Wrap(apperr.Backend, "encode tags", err)
		}
		meaningsJSON, err := encodeMeanings(v.Meanings)
		if err != nil {
			return apperr.Wrap(apperr.Backend, "encode meanings", err)
		}
		_, err = db.conn.Exec(
			`UPDATE vocabulary SET jlpt_level=?, surface=?, reading=?, sino_viet=?, part_of_speech=?, tags=?, meanings=?, notes=?, updated_at=datetime('now')
			 WHERE id=?`,
			v.JLPT.String(), v.Surface, v.Reading, v.SinoViet, v.PartOfSp, tagsJSON, meaningsJSON, v.Notes, v.ID,
		)
		if err != nil {
			return translateErr(err, "vocabulary item not found")
		}
		return nil
	case *domain.KanjiItem:
		onJSON, err := encodeStrings(v.OnReadings)
		if err != nil {
			return apperr.Wrap(apperr.Backend, "encode on-readings", err)
		}
		kunJSON, err := encodeStrings(v.KunReadings)
		if err != nil {
			return apperr.Wrap(apperr.Backend, "encode kun-readings", err)
		}
		meaningsJSON, err := encodeMeanings(v.Meanings)
		if err != nil {
			return apperr.Wrap(apperr.Backend, "encode meanings", err)
		}
		_, err = db.conn.Exec(
			`UPDATE kanji SET jlpt_level=?, surface=?, on_readings=?, kun_readings=?, sino_viet=?, stroke_count=?, radical=?, meanings=?, notes=?, updated_at=datetime('now')
			 WHERE id=?`,
			v.JLPT.String(), v.Surface, onJSON, kunJSON, v.SinoViet, v.StrokeCount, v.Radical, meaningsJSON, v.Notes, v.ID,
		)
		if err != nil {
			return translateErr(err, "kanji item not found")
		}
		return nil
	default:
		return apperr.New(apperr.Invalid, "unknown item variant")
	}
}

// ListItems is the catalog read API of spec.md §6, consumed by the
// generator's distractor strategies and the due-review display layer.
// Filters compose conjunctively.
func (db *DB) ListItems(filter ListItemsFilter) ([]domain.Item, error) {
	switch filter.Kind {
	case string(domain.KindVocab):
		return db.listVocab(filter)
	case string(domain.KindKanji):
		return db.listKanji(filter)
	default:
		return nil, apperr.New(apperr.Invalid, fmt.Sprintf("unknown item kind %q", filter.Kind))
	}
}

func (db *DB) listVocab(filter ListItemsFilter) ([]domain.Item, error) {
	query := `SELECT id, jlpt_level, surface, reading, sino_viet, part_of_speech, tags, meanings, notes, created_at, updated_at FROM vocabulary WHERE 1=1`
	var args []any

	if filter.JLPTLevel != nil {
		query += ` AND jlpt_level = ?`
		args = append(args, *filter.JLPTLevel)
	}
	if filter.ReadingPrefix != nil {
		query += ` AND reading LIKE ?`
		args = append(args, *filter.ReadingPrefix+"%")
	}
	if filter.MeaningSubstring != nil {
		if filter.Language != "" {
			query += ` AND json_extract(meanings, '$.' || ?) LIKE ?`
			args = append(args, filter.Language, "%"+*filter.MeaningSubstring+"%")
		} else {
			query += ` AND meanings LIKE ?`
			args = append(args, "%"+*filter.MeaningSubstring+"%")
		}
	}
	for _, id := range filter.ExcludeIDs {
		query += ` AND id != ?`
		args = append(args, id)
	}
	query += ` ORDER BY id`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, apperr.Wrap(apperr.Backend, "list vocabulary", err)
	}
	defer rows.Close()

	var out []domain.Item
	for rows.Next() {
		var r VocabRow
		var jlpt string
		if err := rows.Scan(&r.ID, &jlpt, &r.Surface, &r.Reading, &r.SinoViet, &r.PartOfSp, &r.TagsJSON, &r.MeaningsJSON, &r.Notes, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, apperr.Wrap(apperr.Backend, "scan vocabulary row", err)
		}
		item, err := mapVocabRow(r, jlpt)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

func (db *DB) listKanji(filter ListItemsFilter) ([]domain.Item, error) {
	query := `SELECT id, jlpt_level, surface, on_readings, kun_readings, sino_viet, stroke_count, radical, meanings, notes, created_at, updated_at FROM kanji WHERE 1=1`
	var args []any

	if filter.JLPTLevel != nil {
		query += ` AND jlpt_level = ?`
		args = append(args, *filter.JLPTLevel)
	}
	if filter.MeaningSubstring != nil {
		if filter.Language != "" {
			query += ` AND json_extract(meanings, '$.' || ?) LIKE ?`
			args = append(args, filter.Language, "%"+*filter.MeaningSubstring+"%")
		} else {
			query += ` AND meanings LIKE ?`
			args = append(args, "%"+*filter.MeaningSubstring+"%")
		}
	}
	if filter.Radical != nil {
		query += ` AND radical = ?`
		args = append(args, *filter.Radical)
	}
	if filter.StrokeCountMin != nil {
		query += ` AND stroke_count >= ?`
		args = append(args, *filter.StrokeCountMin)
	}
	if filter.StrokeCountMax != nil {
		query += ` AND stroke_count <= ?`
		args = append(args, *filter.StrokeCountMax)
	}
	for _, id := range filter.ExcludeIDs {
		query += ` AND id != ?`
		args = append(args, id)
	}
	query += ` ORDER BY id`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, apperr.Wrap(apperr.Backend, "list kanji", err)
	}
	defer rows.Close()

	var out []domain.Item
	for rows.Next() {
		var r KanjiRow
		var jlpt string
		if err := rows.Scan(&r.ID, &jlpt, &r.Surface, &r.OnReadingsJSON, &r.KunReadingsJSON, &r.SinoViet, &r.StrokeCount, &r.Radical, &r.MeaningsJSON, &r.Notes, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, apperr.Wrap(apperr.Backend, "scan kanji row", err)
		}
		item, err := mapKanjiRow(r, jlpt)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}
