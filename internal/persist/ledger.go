package persist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/fleetsim/fleetsim/internal/combat"
	"github.com/fleetsim/fleetsim/internal/mission"
)

// ErrMissionNotFound is returned by LoadMission for an unknown id.
var ErrMissionNotFound = errors.New("mission not found")

// MissionRow is the stored snapshot of a mission's money state.
type MissionRow struct {
	ID             uuid.UUID
	Commander      string
	Rank           string
	MaxShips       int
	MaxSpend       uint
	Spend          uint
	WinThreshold   uint
	EnemyFleetCost uint
	SavedMoney     uint
	Won            bool
	UpdatedAt      time.Time
}

// MissionRowOf snapshots m.
func MissionRowOf(m *mission.Mission) MissionRow {
	c := m.Commander()
	return MissionRow{
		ID:             m.ID(),
		Commander:      c.Name,
		Rank:           c.Rank,
		MaxShips:       m.MaxShips(),
		MaxSpend:       m.MaxSpend(),
		Spend:          m.Spend(),
		WinThreshold:   m.WinThreshold(),
		EnemyFleetCost: m.EnemyFleetCost(),
		SavedMoney:     m.SavedMoney(),
		Won:            m.Won(),
	}
}

// LedgerRepo writes the mission journal and battle results.
type LedgerRepo struct {
	db *DB
}

func NewLedgerRepo(db *DB) *LedgerRepo {
	return &LedgerRepo{db: db}
}

// SaveMission inserts or refreshes the mission snapshot.
func (r *LedgerRepo) SaveMission(ctx context.Context, row MissionRow) error {
	_, err := r.db.Pool.Exec(ctx,
		`INSERT INTO missions (id, commander, rank, max_ships, max_spend, spend,
		                       win_threshold, enemy_fleet_cost, saved_money, won)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 ON CONFLICT (id) DO UPDATE SET
		   commander = EXCLUDED.commander,
		   rank = EXCLUDED.rank,
		   max_ships = EXCLUDED.max_ships,
		   max_spend = EXCLUDED.max_spend,
		   spend = EXCLUDED.spend,
		   win_threshold = EXCLUDED.win_threshold,
		   enemy_fleet_cost = EXCLUDED.enemy_fleet_cost,
		   saved_money = EXCLUDED.saved_money,
		   won = EXCLUDED.won,
		   updated_at = now()`,
		row.ID, row.Commander, row.Rank, row.MaxShips,
		int64(row.MaxSpend), int64(row.Spend), int64(row.WinThreshold),
		int64(row.EnemyFleetCost), int64(row.SavedMoney), row.Won,
	)
	if err != nil {
		return fmt.Errorf("save mission %s: %w", row.ID, err)
	}
	return nil
}

// LoadMission reads a mission snapshot back.
func (r *LedgerRepo) LoadMission(ctx context.Context, id uuid.UUID) (MissionRow, error) {
	var (
		row                                          MissionRow
		maxSpend, spend, threshold, enemyCost, saved int64
	)
	err := r.db.Pool.QueryRow(ctx,
		`SELECT id, commander, rank, max_ships, max_spend, spend, win_threshold,
		        enemy_fleet_cost, saved_money, won, updated_at
		 FROM missions WHERE id = $1`, id,
	).Scan(&row.ID, &row.Commander, &row.Rank, &row.MaxShips, &maxSpend, &spend,
		&threshold, &enemyCost, &saved, &row.Won, &row.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return MissionRow{}, fmt.Errorf("load mission %s: %w", id, ErrMissionNotFound)
		}
		return MissionRow{}, fmt.Errorf("load mission %s: %w", id, err)
	}
	row.MaxSpend = uint(maxSpend)
	row.Spend = uint(spend)
	row.WinThreshold = uint(threshold)
	row.EnemyFleetCost = uint(enemyCost)
	row.SavedMoney = uint(saved)
	return row, nil
}

// WriteJournal appends entries for a mission in a single transaction.
// The mission row must already exist.
func (r *LedgerRepo) WriteJournal(ctx context.Context, missionID uuid.UUID, entries []mission.JournalEntry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("journal begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, e := range entries {
		_, err := tx.Exec(ctx,
			`INSERT INTO mission_journal (mission_id, kind, ship, item, amount, spend_after, recorded_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			missionID, string(e.Kind), e.Ship, e.Item, e.Amount, int64(e.SpendAfter), e.At,
		)
		if err != nil {
			return fmt.Errorf("journal %s %s: %w", e.Kind, e.Ship, err)
		}
	}

	return tx.Commit(ctx)
}

// LoadJournal returns a mission's entries in the order they were written.
func (r *LedgerRepo) LoadJournal(ctx context.Context, missionID uuid.UUID) ([]mission.JournalEntry, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT kind, ship, item, amount, spend_after, recorded_at
		 FROM mission_journal WHERE mission_id = $1 ORDER BY id`, missionID,
	)
	if err != nil {
		return nil, fmt.Errorf("load journal %s: %w", missionID, err)
	}
	defer rows.Close()

	var result []mission.JournalEntry
	for rows.Next() {
		var (
			e          mission.JournalEntry
			kind       string
			spendAfter int64
		)
		if err := rows.Scan(&kind, &e.Ship, &e.Item, &e.Amount, &spendAfter, &e.At); err != nil {
			return nil, fmt.Errorf("scan journal: %w", err)
		}
		e.Kind = mission.EntryKind(kind)
		e.SpendAfter = uint(spendAfter)
		result = append(result, e)
	}
	return result, rows.Err()
}

// SaveBattle stores a finished battle under its mission.
func (r *LedgerRepo) SaveBattle(ctx context.Context, missionID uuid.UUID, res combat.Result) error {
	_, err := r.db.Pool.Exec(ctx,
		`INSERT INTO battles (id, mission_id, winner, rounds, damage_attackers, damage_defenders,
		                      attackers_afloat, defenders_afloat, started_at, finished_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		res.ID, missionID, string(res.Winner), res.Rounds,
		int64(res.DamageByAttackers), int64(res.DamageByDefenders),
		res.AttackersAfloat, res.DefendersAfloat, res.StartedAt, res.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("save battle %s: %w", res.ID, err)
	}
	return nil
}

// LoadBattles returns a mission's battles, oldest first.
func (r *LedgerRepo) LoadBattles(ctx context.Context, missionID uuid.UUID) ([]combat.Result, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT id, winner, rounds, damage_attackers, damage_defenders,
		        attackers_afloat, defenders_afloat, started_at, finished_at
		 FROM battles WHERE mission_id = $1 ORDER BY started_at`, missionID,
	)
	if err != nil {
		return nil, fmt.Errorf("load battles %s: %w", missionID, err)
	}
	defer rows.Close()

	var result []combat.Result
	for rows.Next() {
		var (
			res      combat.Result
			winner   string
			byA, byD int64
		)
		if err := rows.Scan(&res.ID, &winner, &res.Rounds, &byA, &byD,
			&res.AttackersAfloat, &res.DefendersAfloat, &res.StartedAt, &res.FinishedAt); err != nil {
			return nil, fmt.Errorf("scan battle: %w", err)
		}
		res.Winner = combat.Winner(winner)
		res.DamageByAttackers = uint(byA)
		res.DamageByDefenders = uint(byD)
		result = append(result, res)
	}
	return result, rows.Err()
}
