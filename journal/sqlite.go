package journal

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/profitx/profitx/funding"
	"github.com/profitx/profitx/ledger"
	"github.com/profitx/profitx/market"
)

// SQLite persists the venue in a single database file.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (creating if needed) the database at path and
// ensures the schema exists.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) Close() error {
	return j.db.Close()
}

// SaveAccount upserts the account row and appends any positions and
// trades not yet persisted. Both slices are append-only, so rows
// already present are left alone.
func (j *SQLite) SaveAccount(acct ledger.Account) error {
	tx, err := j.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`
		INSERT INTO accounts (id, phone, credential, balance, created_at, last_login)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET balance = excluded.balance,
		                              last_login = excluded.last_login`,
		acct.ID, acct.Phone, acct.Credential, acct.Balance,
		acct.CreatedAt, acct.LastLogin,
	); err != nil {
		return err
	}

	for _, p := range acct.Positions {
		if _, err := tx.Exec(`
			INSERT OR IGNORE INTO positions
			(id, account_id, symbol, side, size, entry_price, current_price, amount, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID, acct.ID, p.Symbol, p.Side.String(), p.Size,
			p.EntryPrice, p.CurrentPrice, p.Amount, p.CreatedAt,
		); err != nil {
			return err
		}
	}

	for _, t := range acct.Trades {
		if _, err := tx.Exec(`
			INSERT OR IGNORE INTO trades
			(id, account_id, symbol, side, size, price, amount, time)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			t.ID, acct.ID, t.Symbol, t.Side.String(), t.Size,
			t.Price, t.Amount, t.Time,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// SaveRequest upserts one funding request.
func (j *SQLite) SaveRequest(req funding.Request) error {
	resolvedAt := sql.NullTime{Time: req.ResolvedAt, Valid: !req.ResolvedAt.IsZero()}

	_, err := j.db.Exec(`
		INSERT INTO requests
		(id, kind, account_id, phone, amount, method, details, status, created_at, resolved_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET status = excluded.status,
		                              resolved_at = excluded.resolved_at`,
		req.ID, req.Kind.String(), req.AccountID, req.Phone, req.Amount,
		req.Method, req.Details, req.Status.String(), req.CreatedAt, resolvedAt,
	)
	return err
}

// SeedAssets inserts the initial asset rows if they are not present
// yet. Existing rows (a restarted venue) are left untouched.
func (j *SQLite) SeedAssets(seeds []market.Seed) error {
	tx, err := j.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, seed := range seeds {
		if _, err := tx.Exec(`
			INSERT OR IGNORE INTO assets (symbol, name, price, change, mode, last_update)
			VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)`,
			seed.Symbol, seed.Name, seed.Price, seed.Change, seed.Mode.String(),
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// SaveAssetMode records an operator mode change.
func (j *SQLite) SaveAssetMode(symbol string, mode market.Mode) error {
	_, err := j.db.Exec(
		`UPDATE assets SET mode = ? WHERE symbol = ?`,
		mode.String(), symbol,
	)
	return err
}

// RecordTick persists one simulation tick: the asset's new price and
// its candle. Candles beyond the in-memory history cap are pruned so
// the table mirrors what the store serves.
func (j *SQLite) RecordTick(symbol string, tick market.Tick) error {
	tx, err := j.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`
		UPDATE assets SET price = ?, change = ?, last_update = ?
		WHERE symbol = ?`,
		tick.Price, tick.Change, tick.Candle.Time, symbol,
	); err != nil {
		return err
	}

	if _, err := tx.Exec(`
		INSERT INTO candles (symbol, time, open, high, low, close)
		VALUES (?, ?, ?, ?, ?, ?)`,
		symbol, tick.Candle.Time, tick.Candle.Open, tick.Candle.High,
		tick.Candle.Low, tick.Candle.Close,
	); err != nil {
		return err
	}

	if _, err := tx.Exec(`
		DELETE FROM candles WHERE symbol = ? AND time NOT IN (
			SELECT time FROM candles WHERE symbol = ?
			ORDER BY time DESC LIMIT 100
		)`,
		symbol, symbol,
	); err != nil {
		return err
	}

	return tx.Commit()
}

// LoadAccounts reads every account with its positions and trades.
func (j *SQLite) LoadAccounts() ([]ledger.Account, error) {
	rows, err := j.db.Query(`
		SELECT id, phone, credential, balance, created_at, last_login
		FROM accounts ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	accounts := make([]ledger.Account, 0)
	for rows.Next() {
		acct := ledger.Account{
			Positions: []ledger.Position{},
			Trades:    []ledger.TradeRecord{},
		}
		if err := rows.Scan(
			&acct.ID, &acct.Phone, &acct.Credential, &acct.Balance,
			&acct.CreatedAt, &acct.LastLogin,
		); err != nil {
			return nil, err
		}

		accounts = append(accounts, acct)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range accounts {
		if accounts[i].Positions, err = j.loadPositions(accounts[i].ID); err != nil {
			return nil, err
		}
		if accounts[i].Trades, err = j.loadTrades(accounts[i].ID); err != nil {
			return nil, err
		}
	}

	return accounts, nil
}

func (j *SQLite) loadPositions(accountID string) ([]ledger.Position, error) {
	rows, err := j.db.Query(`
		SELECT id, symbol, side, size, entry_price, current_price, amount, created_at
		FROM positions WHERE account_id = ? ORDER BY id`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	positions := make([]ledger.Position, 0)
	for rows.Next() {
		var p ledger.Position
		var side string
		if err := rows.Scan(
			&p.ID, &p.Symbol, &side, &p.Size,
			&p.EntryPrice, &p.CurrentPrice, &p.Amount, &p.CreatedAt,
		); err != nil {
			return nil, err
		}
		if p.Side, err = ledger.ParseSide(side); err != nil {
			return nil, err
		}

		positions = append(positions, p)
	}

	return positions, rows.Err()
}

func (j *SQLite) loadTrades(accountID string) ([]ledger.TradeRecord, error) {
	rows, err := j.db.Query(`
		SELECT id, symbol, side, size, price, amount, time
		FROM trades WHERE account_id = ? ORDER BY id`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	trades := make([]ledger.TradeRecord, 0)
	for rows.Next() {
		var t ledger.TradeRecord
		var side string
		if err := rows.Scan(
			&t.ID, &t.Symbol, &side, &t.Size, &t.Price, &t.Amount, &t.Time,
		); err != nil {
			return nil, err
		}
		if t.Side, err = ledger.ParseSide(side); err != nil {
			return nil, err
		}

		trades = append(trades, t)
	}

	return trades, rows.Err()
}

// LoadRequests reads every funding request.
func (j *SQLite) LoadRequests() ([]funding.Request, error) {
	rows, err := j.db.Query(`
		SELECT id, kind, account_id, phone, amount, method, details, status, created_at, resolved_at
		FROM requests ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	requests := make([]funding.Request, 0)
	for rows.Next() {
		var req funding.Request
		var kind, status string
		var resolvedAt sql.NullTime
		if err := rows.Scan(
			&req.ID, &kind, &req.AccountID, &req.Phone, &req.Amount,
			&req.Method, &req.Details, &status, &req.CreatedAt, &resolvedAt,
		); err != nil {
			return nil, err
		}

		switch kind {
		case funding.Deposit.String():
			req.Kind = funding.Deposit
		case funding.Withdrawal.String():
			req.Kind = funding.Withdrawal
		default:
			return nil, fmt.Errorf("unknown request kind: %q", kind)
		}

		if req.Status, err = funding.ParseStatus(status); err != nil {
			return nil, err
		}
		if resolvedAt.Valid {
			req.ResolvedAt = resolvedAt.Time
		}

		requests = append(requests, req)
	}

	return requests, rows.Err()
}

// LoadAssets reads the persisted market state, candle history
// included, as store seeds. Returns nil when no assets have been
// seeded yet.
func (j *SQLite) LoadAssets() ([]market.Seed, error) {
	rows, err := j.db.Query(`SELECT symbol, name, price, change, mode FROM assets`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seeds := make([]market.Seed, 0)
	for rows.Next() {
		var seed market.Seed
		var mode string
		if err := rows.Scan(
			&seed.Symbol, &seed.Name, &seed.Price, &seed.Change, &mode,
		); err != nil {
			return nil, err
		}
		if seed.Mode, err = market.ParseMode(mode); err != nil {
			return nil, err
		}

		seeds = append(seeds, seed)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range seeds {
		if seeds[i].History, err = j.loadCandles(seeds[i].Symbol); err != nil {
			return nil, err
		}
	}

	if len(seeds) == 0 {
		return nil, nil
	}

	return seeds, nil
}

func (j *SQLite) loadCandles(symbol string) ([]market.Candle, error) {
	rows, err := j.db.Query(`
		SELECT time, open, high, low, close
		FROM candles WHERE symbol = ? ORDER BY time`, symbol)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	candles := make([]market.Candle, 0)
	for rows.Next() {
		var c market.Candle
		if err := rows.Scan(&c.Time, &c.Open, &c.High, &c.Low, &c.Close); err != nil {
			return nil, err
		}

		candles = append(candles, c)
	}

	return candles, rows.Err()
}
