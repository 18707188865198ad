package store

import (
	"context"
	"fmt"

	"github.com/pavelanni/hinter/internal/model"
)

// ExportAll builds an export of every live session and every stored snapshot.
func (s *Store) ExportAll(ctx context.Context) (model.HistoryExport, error) {
	export := model.HistoryExport{
		ExportedAt: s.now().UTC(),
		Sessions:   []model.SessionHistory{},
		Snapshots:  []model.StoredSnapshot{},
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, problem_id FROM coh_sessions ORDER BY user_id, problem_id`)
	if err != nil {
		return export, fmt.Errorf("list sessions: %w", err)
	}
	type key struct{ user, problem string }
	var keys []key
	for rows.Next() {
		var k key
		if err := rows.Scan(&k.user, &k.problem); err != nil {
			rows.Close()
			return export, err
		}
		keys = append(keys, k)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return export, err
	}

	for _, k := range keys {
		sess, err := s.GetSession(ctx, k.user, k.problem)
		if err != nil {
			return export, fmt.Errorf("get session %s/%s: %w", k.user, k.problem, err)
		}
		if sess.Preset == "" {
			continue // expired
		}
		export.Sessions = append(export.Sessions, sess)
	}

	snaps, err := s.ListSnapshots(ctx, "", "")
	if err != nil {
		return export, fmt.Errorf("list snapshots: %w", err)
	}
	if snaps != nil {
		export.Snapshots = snaps
	}
	return export, nil
}
