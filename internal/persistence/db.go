// Package persistence provides SQLite-based world state storage.
package persistence

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/candymarket/internal/agents"
	"github.com/talgya/candymarket/internal/economy"
	"github.com/talgya/candymarket/internal/engine"
	"github.com/talgya/candymarket/internal/world"
)

// DB wraps a SQLite connection for world state persistence.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS agents (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		pos_x REAL NOT NULL,
		pos_y REAL NOT NULL,
		personality INTEGER NOT NULL,
		mood INTEGER NOT NULL,
		trade_cooldown REAL NOT NULL,
		bloc_id INTEGER,
		inventory_json TEXT NOT NULL,
		beliefs_json TEXT NOT NULL,
		preferences_json TEXT NOT NULL,
		trust_json TEXT NOT NULL,
		recent_trades_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS trades (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		candy TEXT NOT NULL,
		price REAL NOT NULL,
		buyer_id INTEGER NOT NULL,
		seller_id INTEGER NOT NULL,
		timestamp REAL NOT NULL
	);

	CREATE TABLE IF NOT EXISTS rumors (
		id TEXT PRIMARY KEY,
		kind INTEGER NOT NULL,
		content TEXT NOT NULL,
		origin_id INTEGER NOT NULL,
		believability REAL NOT NULL,
		age REAL NOT NULL,
		spread_count INTEGER NOT NULL,
		mutations INTEGER NOT NULL,
		target_candy TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS blocs (
		id INTEGER PRIMARY KEY,
		members_json TEXT NOT NULL,
		shared_beliefs_json TEXT NOT NULL,
		internal_trades INTEGER NOT NULL,
		external_trades INTEGER NOT NULL,
		total_profit REAL NOT NULL,
		strength REAL NOT NULL,
		formed_at REAL NOT NULL
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tick INTEGER NOT NULL,
		description TEXT NOT NULL,
		category TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS world_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_tick ON events(tick);
	CREATE INDEX IF NOT EXISTS idx_trades_candy ON trades(candy);
	CREATE INDEX IF NOT EXISTS idx_trades_timestamp ON trades(timestamp);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveAgents writes all agents to the database (full replace).
func (db *DB) SaveAgents(agentList []*agents.Agent) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM agents"); err != nil {
		return err
	}

	stmt, err := tx.Preparex(`INSERT INTO agents
		(id, name, pos_x, pos_y, personality, mood, trade_cooldown, bloc_id,
		 inventory_json, beliefs_json, preferences_json, trust_json, recent_trades_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, a := range agentList {
		invJSON, _ := json.Marshal(a.Inventory())
		beliefsJSON, _ := json.Marshal(a.Beliefs())
		prefsJSON, _ := json.Marshal(a.Preferences())
		trustJSON, _ := json.Marshal(a.TrustLevels())
		tradesJSON, _ := json.Marshal(a.RecentTrades)

		_, err := stmt.Exec(
			a.ID, a.Name, a.Position.X, a.Position.Y,
			a.Personality, a.Mood, a.TradeCooldown, a.BlocID,
			string(invJSON), string(beliefsJSON), string(prefsJSON),
			string(trustJSON), string(tradesJSON),
		)
		if err != nil {
			return fmt.Errorf("insert agent %d: %w", a.ID, err)
		}
	}

	return tx.Commit()
}

type agentRow struct {
	ID            uint64  `db:"id"`
	Name          string  `db:"name"`
	PosX          float64 `db:"pos_x"`
	PosY          float64 `db:"pos_y"`
	Personality   uint8   `db:"personality"`
	Mood          uint8   `db:"mood"`
	TradeCooldown float64 `db:"trade_cooldown"`
	BlocID        *uint64 `db:"bloc_id"`
	InventoryJSON string  `db:"inventory_json"`
	BeliefsJSON   string  `db:"beliefs_json"`
	PrefsJSON     string  `db:"preferences_json"`
	TrustJSON     string  `db:"trust_json"`
	TradesJSON    string  `db:"recent_trades_json"`
}

// LoadAgents rehydrates the saved population. Malformed JSON blobs are
// skipped per field with a warning rather than failing the whole load.
func (db *DB) LoadAgents() ([]*agents.Agent, error) {
	var rows []agentRow
	if err := db.conn.Select(&rows, "SELECT * FROM agents ORDER BY id"); err != nil {
		return nil, fmt.Errorf("load agents: %w", err)
	}

	out := make([]*agents.Agent, 0, len(rows))
	for _, row := range rows {
		a := agents.NewAgent(agents.AgentID(row.ID), row.Name, world.Vec2{X: row.PosX, Y: row.PosY})
		a.Personality = agents.Personality(row.Personality)
		a.Mood = agents.Mood(row.Mood)
		a.TradeCooldown = row.TradeCooldown
		a.BlocID = row.BlocID

		var inv map[economy.CandyType]int
		var beliefs, prefs map[economy.CandyType]float64
		var trust map[agents.AgentID]float64
		if err := json.Unmarshal([]byte(row.InventoryJSON), &inv); err != nil {
			slog.Warn("skipping malformed agent blob", "agent", row.ID, "field", "inventory", "err", err)
		}
		if err := json.Unmarshal([]byte(row.BeliefsJSON), &beliefs); err != nil {
			slog.Warn("skipping malformed agent blob", "agent", row.ID, "field", "beliefs", "err", err)
		}
		if err := json.Unmarshal([]byte(row.PrefsJSON), &prefs); err != nil {
			slog.Warn("skipping malformed agent blob", "agent", row.ID, "field", "preferences", "err", err)
		}
		if err := json.Unmarshal([]byte(row.TrustJSON), &trust); err != nil {
			slog.Warn("skipping malformed agent blob", "agent", row.ID, "field", "trust", "err", err)
		}
		a.RestoreState(inv, beliefs, prefs, trust)

		if err := json.Unmarshal([]byte(row.TradesJSON), &a.RecentTrades); err != nil {
			slog.Warn("skipping malformed agent blob", "agent", row.ID, "field", "recent_trades", "err", err)
		}

		out = append(out, a)
	}
	return out, nil
}

// SaveTrades writes the market's current trade window (full replace).
func (db *DB) SaveTrades(history []economy.Trade) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM trades"); err != nil {
		return err
	}

	for _, t := range history {
		_, err := tx.Exec(
			"INSERT INTO trades (candy, price, buyer_id, seller_id, timestamp) VALUES (?, ?, ?, ?, ?)",
			t.Candy, t.Price, t.BuyerID, t.SellerID, t.Timestamp,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// LoadTrades returns the saved trade history, oldest first.
func (db *DB) LoadTrades() ([]economy.Trade, error) {
	var trades []economy.Trade
	err := db.conn.Select(&trades,
		"SELECT candy, price, buyer_id, seller_id, timestamp FROM trades ORDER BY id")
	return trades, err
}

// SaveRumors writes the active rumors (full replace).
func (db *DB) SaveRumors(rumors []rumorRowSource) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM rumors"); err != nil {
		return err
	}

	for _, r := range rumors {
		_, err := tx.Exec(`INSERT INTO rumors
			(id, kind, content, origin_id, believability, age, spread_count, mutations, target_candy)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			r.ID, r.Kind, r.Content, r.OriginID, r.Believability,
			r.Age, r.SpreadCount, r.Mutations, string(r.TargetCandy),
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// SaveBlocs writes the active trading blocs (full replace).
func (db *DB) SaveBlocs(blocs []blocRowSource) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM blocs"); err != nil {
		return err
	}

	for _, b := range blocs {
		membersJSON, _ := json.Marshal(b.Members)
		beliefsJSON, _ := json.Marshal(b.SharedBeliefs)
		_, err := tx.Exec(`INSERT INTO blocs
			(id, members_json, shared_beliefs_json, internal_trades, external_trades,
			 total_profit, strength, formed_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			b.ID, string(membersJSON), string(beliefsJSON),
			b.InternalTrades, b.ExternalTrades, b.TotalProfit, b.Strength, b.FormedAt,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// SaveEvents writes the current event window (full replace).
func (db *DB) SaveEvents(events []engine.Event) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM events"); err != nil {
		return err
	}

	for _, e := range events {
		_, err := tx.Exec(
			"INSERT INTO events (tick, description, category) VALUES (?, ?, ?)",
			e.Tick, e.Description, e.Category,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// SaveMeta stores a key-value pair in world metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO world_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM world_meta WHERE key = ?", key)
	return value, err
}

// HasWorldState reports whether a saved population exists.
func (db *DB) HasWorldState() bool {
	var count int
	if err := db.conn.Get(&count, "SELECT COUNT(*) FROM agents"); err != nil {
		return false
	}
	return count > 0
}

// SaveWorldState performs a full save from a world snapshot. The caller
// takes the snapshot; everything here works on the copies.
func (db *DB) SaveWorldState(snap engine.WorldSnapshot) error {
	slog.Info("saving world state", "agents", len(snap.Agents))

	if err := db.SaveAgents(snap.Agents); err != nil {
		return fmt.Errorf("save agents: %w", err)
	}
	if err := db.SaveTrades(snap.Trades); err != nil {
		return fmt.Errorf("save trades: %w", err)
	}

	rumorRows := make([]rumorRowSource, 0)
	for _, r := range snap.Rumors {
		rumorRows = append(rumorRows, rumorRowSource{
			ID: r.ID, Kind: uint8(r.Kind), Content: r.Content,
			OriginID: uint64(r.OriginID), Believability: r.Believability,
			Age: r.Age, SpreadCount: r.SpreadCount, Mutations: r.Mutations,
			TargetCandy: r.TargetCandy,
		})
	}
	if err := db.SaveRumors(rumorRows); err != nil {
		return fmt.Errorf("save rumors: %w", err)
	}

	blocRows := make([]blocRowSource, 0)
	for _, b := range snap.Blocs {
		members := make([]uint64, 0, len(b.Members))
		for _, id := range b.Members {
			members = append(members, uint64(id))
		}
		blocRows = append(blocRows, blocRowSource{
			ID: b.ID, Members: members, SharedBeliefs: b.SharedBeliefs,
			InternalTrades: b.InternalTrades, ExternalTrades: b.ExternalTrades,
			TotalProfit: b.TotalProfit, Strength: b.Strength, FormedAt: b.FormedAt,
		})
	}
	if err := db.SaveBlocs(blocRows); err != nil {
		return fmt.Errorf("save blocs: %w", err)
	}

	if err := db.SaveEvents(snap.Events); err != nil {
		return fmt.Errorf("save events: %w", err)
	}
	if err := db.SaveMeta("last_tick", fmt.Sprintf("%d", snap.Tick)); err != nil {
		return fmt.Errorf("save meta: %w", err)
	}

	slog.Info("world state saved")
	return nil
}

// RecentEvents returns the most recent N events.
func (db *DB) RecentEvents(limit int) ([]engine.Event, error) {
	var events []engine.Event
	err := db.conn.Select(&events,
		"SELECT tick, description, category FROM events ORDER BY id DESC LIMIT ?",
		limit,
	)
	return events, err
}

// rumorRowSource and blocRowSource flatten the live structs for storage
// without this package importing their home packages' mutation surface.
type rumorRowSource struct {
	ID            string
	Kind          uint8
	Content       string
	OriginID      uint64
	Believability float64
	Age           float64
	SpreadCount   int
	Mutations     int
	TargetCandy   economy.CandyType
}

type blocRowSource struct {
	ID             uint64
	Members        []uint64
	SharedBeliefs  map[economy.CandyType]float64
	InternalTrades int
	ExternalTrades int
	TotalProfit    float64
	Strength       float64
	FormedAt       float64
}
