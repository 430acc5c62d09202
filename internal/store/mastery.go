package store

import (
	"context"
	"database/sql"
	"fmt"
	"slices"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/arbor/paesdiag/internal/mastery"
)

// SaveMastery inserts records in batches inside one transaction. Rows that
// already exist for a (user, atom) pair are left untouched, so a retried
// save is a no-op. It returns the number of rows actually inserted.
func (s *Store) SaveMastery(ctx context.Context, records []mastery.Record) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	b := s.builder()
	inserted := 0
	err := s.tx(ctx, func(tx dialect.Tx) error {
		for chunk := range slices.Chunk(records, batchSize) {
			ins := b.Insert(tableMastery).Columns(
				"user_id", "atom_id", "status", "is_mastered", "source",
				"mastery_source", "mastered_at", "updated_at",
			)
			for _, r := range chunk {
				var masteredAt sql.NullTime
				if r.MasteredAt != nil {
					masteredAt = sql.NullTime{Time: *r.MasteredAt, Valid: true}
				}
				ins.Values(r.UserID, r.AtomID, string(r.Status), r.IsMastered, string(r.Source),
					nullString(r.Origin), masteredAt, r.UpdatedAt)
			}
			q, args := ins.OnConflict(entsql.ConflictColumns("user_id", "atom_id"), entsql.DoNothing()).Query()
			res, err := exec(ctx, tx, q, args)
			if err != nil {
				return fmt.Errorf("insert mastery batch: %w", err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("rows affected: %w", err)
			}
			inserted += int(n)
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("save mastery: %w", err)
	}

	byStatus := make(map[mastery.Status]int)
	for _, r := range records {
		byStatus[r.Status]++
	}
	for status, n := range byStatus {
		s.metrics.AddMasteryRecords(string(status), n)
	}
	s.logger.Debug("mastery saved", "records", len(records), "inserted", inserted)
	return inserted, nil
}

// MasteryFor returns the stored mastery rows of userID ordered by atom id.
func (s *Store) MasteryFor(ctx context.Context, userID string) ([]mastery.Record, error) {
	var out []mastery.Record
	q, args := s.builder().Select(
		"user_id", "atom_id", "status", "is_mastered", "source",
		"mastery_source", "mastered_at", "updated_at",
	).
		From(entsql.Table(tableMastery)).
		Where(entsql.EQ("user_id", userID)).
		OrderBy("atom_id").
		Query()
	err := query(ctx, s.drv, q, args, func(rows *entsql.Rows) error {
		var (
			r              mastery.Record
			status, source string
			origin         sql.NullString
			masteredAt     sql.NullTime
		)
		if err := rows.Scan(&r.UserID, &r.AtomID, &status, &r.IsMastered, &source, &origin, &masteredAt, &r.UpdatedAt); err != nil {
			return err
		}
		r.Status = mastery.Status(status)
		r.Source = mastery.Source(source)
		r.Origin = origin.String
		if masteredAt.Valid {
			t := masteredAt.Time
			r.MasteredAt = &t
		}
		out = append(out, r)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query mastery: %w", err)
	}
	return out, nil
}
