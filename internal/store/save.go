package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/the4estate/t4e/internal/calendar"
	"github.com/the4estate/t4e/internal/cet"
	"github.com/the4estate/t4e/internal/leads"
)

// ErrNoSave means the requested slot holds no save.
var ErrNoSave = errors.New("no save in slot")

// SaveState is the complete persisted shape of one simulation.
type SaveState struct {
	Date              calendar.Date
	RNGState          uint32
	AgencyCredibility int
	News              []string
	Leads             []string
	Sources           []string
	Flags             map[string]int
	FiredKeys         []string
	Queue             []cet.TimelineItem
	Progress          []leads.LeadRecord
}

// Save writes state into slot, replacing whatever the slot held. The
// write is one transaction: a crash mid-save leaves the previous save
// intact.
func (s *Store) Save(ctx context.Context, slot string, state SaveState) error {
	if slot == "" {
		return errors.New("save: empty slot name")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save %s: begin: %w", slot, err)
	}
	defer tx.Rollback()

	// Cascades clear every dependent table for the slot.
	if _, err := tx.ExecContext(ctx, `DELETE FROM saves WHERE slot = ?`, slot); err != nil {
		return fmt.Errorf("save %s: clear: %w", slot, err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO saves (slot, year, week, day, segment, rng_state, agency_credibility)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		slot, state.Date.Year, state.Date.Week, int(state.Date.Day), int(state.Date.Segment),
		int64(state.RNGState), state.AgencyCredibility)
	if err != nil {
		return fmt.Errorf("save %s: meta: %w", slot, err)
	}

	if err := insertIDs(ctx, tx, `INSERT INTO save_news (slot, news_id) VALUES (?, ?)`, slot, state.News); err != nil {
		return fmt.Errorf("save %s: news: %w", slot, err)
	}
	if err := insertIDs(ctx, tx, `INSERT INTO save_leads (slot, lead_id) VALUES (?, ?)`, slot, state.Leads); err != nil {
		return fmt.Errorf("save %s: leads: %w", slot, err)
	}
	if err := insertIDs(ctx, tx, `INSERT INTO save_sources (slot, source_id) VALUES (?, ?)`, slot, state.Sources); err != nil {
		return fmt.Errorf("save %s: sources: %w", slot, err)
	}
	if err := insertIDs(ctx, tx, `INSERT INTO save_fired (slot, fired_key) VALUES (?, ?)`, slot, state.FiredKeys); err != nil {
		return fmt.Errorf("save %s: fired: %w", slot, err)
	}

	for key, value := range state.Flags {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO save_flags (slot, key, value) VALUES (?, ?, ?)`, slot, key, value); err != nil {
			return fmt.Errorf("save %s: flags: %w", slot, err)
		}
	}

	for i, item := range state.Queue {
		spawnNews, err := json.Marshal(emptyIfNil(item.SpawnNewsIDs))
		if err != nil {
			return fmt.Errorf("save %s: queue spawn news: %w", slot, err)
		}
		spawnLead, err := json.Marshal(emptyIfNil(item.SpawnLeadIDs))
		if err != nil {
			return fmt.Errorf("save %s: queue spawn leads: %w", slot, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO save_queue (slot, position, item_id, year, week, day, segment, payload, spawn_news, spawn_lead)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			slot, i, item.ID, item.When.Year, item.When.Week, int(item.When.Day), int(item.When.Segment),
			item.PayloadKind, string(spawnNews), string(spawnLead))
		if err != nil {
			return fmt.Errorf("save %s: queue: %w", slot, err)
		}
	}

	for _, rec := range state.Progress {
		completed := 0
		if rec.Completed {
			completed = 1
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO save_lead_progress (slot, lead_id, completed) VALUES (?, ?, ?)`,
			slot, rec.LeadID, completed); err != nil {
			return fmt.Errorf("save %s: progress: %w", slot, err)
		}
		for i, ev := range rec.Evidence {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO save_lead_evidence (slot, lead_id, position, evidence_type, evidence_id)
				VALUES (?, ?, ?, ?, ?)`,
				slot, rec.LeadID, i, ev.Type, ev.ID); err != nil {
				return fmt.Errorf("save %s: evidence: %w", slot, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save %s: commit: %w", slot, err)
	}
	return nil
}

// Load reads the save in slot. ErrNoSave when the slot is empty.
func (s *Store) Load(ctx context.Context, slot string) (SaveState, error) {
	state := SaveState{Flags: make(map[string]int)}

	var day, segment int
	var rngState int64
	err := s.db.QueryRowContext(ctx, `
		SELECT year, week, day, segment, rng_state, agency_credibility
		FROM saves WHERE slot = ?`, slot).
		Scan(&state.Date.Year, &state.Date.Week, &day, &segment, &rngState, &state.AgencyCredibility)
	if errors.Is(err, sql.ErrNoRows) {
		return SaveState{}, fmt.Errorf("load %s: %w", slot, ErrNoSave)
	}
	if err != nil {
		return SaveState{}, fmt.Errorf("load %s: meta: %w", slot, err)
	}
	state.Date.Day = calendar.Weekday(day)
	state.Date.Segment = calendar.Segment(segment)
	state.RNGState = uint32(rngState)

	if state.News, err = selectIDs(ctx, s.db, `SELECT news_id FROM save_news WHERE slot = ? ORDER BY news_id`, slot); err != nil {
		return SaveState{}, fmt.Errorf("load %s: news: %w", slot, err)
	}
	if state.Leads, err = selectIDs(ctx, s.db, `SELECT lead_id FROM save_leads WHERE slot = ? ORDER BY lead_id`, slot); err != nil {
		return SaveState{}, fmt.Errorf("load %s: leads: %w", slot, err)
	}
	if state.Sources, err = selectIDs(ctx, s.db, `SELECT source_id FROM save_sources WHERE slot = ? ORDER BY source_id`, slot); err != nil {
		return SaveState{}, fmt.Errorf("load %s: sources: %w", slot, err)
	}
	if state.FiredKeys, err = selectIDs(ctx, s.db, `SELECT fired_key FROM save_fired WHERE slot = ? ORDER BY fired_key`, slot); err != nil {
		return SaveState{}, fmt.Errorf("load %s: fired: %w", slot, err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM save_flags WHERE slot = ?`, slot)
	if err != nil {
		return SaveState{}, fmt.Errorf("load %s: flags: %w", slot, err)
	}
	defer rows.Close()
	for rows.Next() {
		var key string
		var value int
		if err := rows.Scan(&key, &value); err != nil {
			return SaveState{}, fmt.Errorf("load %s: flags: %w", slot, err)
		}
		state.Flags[key] = value
	}
	if err := rows.Err(); err != nil {
		return SaveState{}, fmt.Errorf("load %s: flags: %w", slot, err)
	}

	if state.Queue, err = s.loadQueue(ctx, slot); err != nil {
		return SaveState{}, err
	}
	if state.Progress, err = s.loadProgress(ctx, slot); err != nil {
		return SaveState{}, err
	}
	return state, nil
}

// Slots lists the occupied save slots in name order.
func (s *Store) Slots(ctx context.Context) ([]string, error) {
	return selectIDs(ctx, s.db, `SELECT slot FROM saves ORDER BY slot`)
}

// Delete removes a slot and all its rows. Deleting an empty slot is a
// no-op.
func (s *Store) Delete(ctx context.Context, slot string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM saves WHERE slot = ?`, slot); err != nil {
		return fmt.Errorf("delete %s: %w", slot, err)
	}
	return nil
}

func (s *Store) loadQueue(ctx context.Context, slot string) ([]cet.TimelineItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT item_id, year, week, day, segment, payload, spawn_news, spawn_lead
		FROM save_queue WHERE slot = ? ORDER BY position`, slot)
	if err != nil {
		return nil, fmt.Errorf("load %s: queue: %w", slot, err)
	}
	defer rows.Close()

	var out []cet.TimelineItem
	for rows.Next() {
		var item cet.TimelineItem
		var day, segment int
		var spawnNews, spawnLead string
		if err := rows.Scan(&item.ID, &item.When.Year, &item.When.Week, &day, &segment,
			&item.PayloadKind, &spawnNews, &spawnLead); err != nil {
			return nil, fmt.Errorf("load %s: queue: %w", slot, err)
		}
		item.When.Day = calendar.Weekday(day)
		item.When.Segment = calendar.Segment(segment)
		if err := json.Unmarshal([]byte(spawnNews), &item.SpawnNewsIDs); err != nil {
			return nil, fmt.Errorf("load %s: queue spawn news: %w", slot, err)
		}
		if err := json.Unmarshal([]byte(spawnLead), &item.SpawnLeadIDs); err != nil {
			return nil, fmt.Errorf("load %s: queue spawn leads: %w", slot, err)
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func (s *Store) loadProgress(ctx context.Context, slot string) ([]leads.LeadRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT lead_id, completed FROM save_lead_progress WHERE slot = ? ORDER BY lead_id`, slot)
	if err != nil {
		return nil, fmt.Errorf("load %s: progress: %w", slot, err)
	}
	defer rows.Close()

	var out []leads.LeadRecord
	for rows.Next() {
		var rec leads.LeadRecord
		var completed int
		if err := rows.Scan(&rec.LeadID, &completed); err != nil {
			return nil, fmt.Errorf("load %s: progress: %w", slot, err)
		}
		rec.Completed = completed != 0
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load %s: progress: %w", slot, err)
	}

	for i := range out {
		evRows, err := s.db.QueryContext(ctx, `
			SELECT evidence_type, evidence_id FROM save_lead_evidence
			WHERE slot = ? AND lead_id = ? ORDER BY position`, slot, out[i].LeadID)
		if err != nil {
			return nil, fmt.Errorf("load %s: evidence: %w", slot, err)
		}
		for evRows.Next() {
			var ev leads.Evidence
			if err := evRows.Scan(&ev.Type, &ev.ID); err != nil {
				evRows.Close()
				return nil, fmt.Errorf("load %s: evidence: %w", slot, err)
			}
			out[i].Evidence = append(out[i].Evidence, ev)
		}
		if err := evRows.Err(); err != nil {
			evRows.Close()
			return nil, fmt.Errorf("load %s: evidence: %w", slot, err)
		}
		evRows.Close()
	}
	return out, nil
}

func insertIDs(ctx context.Context, tx *sql.Tx, query, slot string, ids []string) error {
	for _, id := range ids {
		if _, err := tx.ExecContext(ctx, query, slot, id); err != nil {
			return err
		}
	}
	return nil
}

func selectIDs(ctx context.Context, db *sql.DB, query string, args ...any) ([]string, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func emptyIfNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
