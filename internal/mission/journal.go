package mission

import "time"

// EntryKind names a journaled mission command.
type EntryKind string

const (
	KindEnemy      EntryKind = "enemy"
	KindBuyShip    EntryKind = "buy_ship"
	KindSellShip   EntryKind = "sell_ship"
	KindBuyWeapon  EntryKind = "buy_weapon"
	KindSellWeapon EntryKind = "sell_weapon"
	KindBuyPlane   EntryKind = "buy_plane"
	KindSellPlane  EntryKind = "sell_plane"
	KindMovePlane  EntryKind = "move_plane"
)

// JournalEntry records one successful command. Amount is signed: purchases
// are positive, refunds negative, moves and enemy additions carry the unit's
// cost without touching spend.
type JournalEntry struct {
	Kind       EntryKind
	Ship       string
	Item       string // weapon or plane name; empty for ship-level entries
	Amount     int64
	SpendAfter uint
	At         time.Time
}

func (m *Mission) record(kind EntryKind, ship, item string, amount int64) {
	m.journal = append(m.journal, JournalEntry{
		Kind:       kind,
		Ship:       ship,
		Item:       item,
		Amount:     amount,
		SpendAfter: m.spend,
		At:         m.now(),
	})
}

// Journal returns a copy of the entries not yet drained.
func (m *Mission) Journal() []JournalEntry {
	return append([]JournalEntry(nil), m.journal...)
}

// DrainJournal hands over pending entries and clears the journal.
func (m *Mission) DrainJournal() []JournalEntry {
	out := m.journal
	m.journal = nil
	return out
}
