package journal

const schema = `
CREATE TABLE IF NOT EXISTS accounts (
	id TEXT PRIMARY KEY,
	phone TEXT NOT NULL UNIQUE,
	credential TEXT NOT NULL,
	balance REAL NOT NULL,
	created_at DATETIME NOT NULL,
	last_login DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS positions (
	id TEXT PRIMARY KEY,
	account_id TEXT NOT NULL,
	symbol TEXT NOT NULL,
	side TEXT NOT NULL,
	size REAL NOT NULL,
	entry_price REAL NOT NULL,
	current_price REAL NOT NULL,
	amount REAL NOT NULL,
	created_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS trades (
	id TEXT PRIMARY KEY,
	account_id TEXT NOT NULL,
	symbol TEXT NOT NULL,
	side TEXT NOT NULL,
	size REAL NOT NULL,
	price REAL NOT NULL,
	amount REAL NOT NULL,
	time DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS requests (
	id TEXT PRIMARY KEY,
	kind TEXT NOT NULL,
	account_id TEXT NOT NULL,
	phone TEXT NOT NULL,
	amount REAL NOT NULL,
	method TEXT NOT NULL,
	details TEXT NOT NULL,
	status TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	resolved_at DATETIME
);

CREATE TABLE IF NOT EXISTS assets (
	symbol TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	price REAL NOT NULL,
	change REAL NOT NULL,
	mode TEXT NOT NULL,
	last_update DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS candles (
	symbol TEXT NOT NULL,
	time DATETIME NOT NULL,
	open REAL NOT NULL,
	high REAL NOT NULL,
	low REAL NOT NULL,
	close REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_positions_account ON positions(account_id);
CREATE INDEX IF NOT EXISTS idx_trades_account ON trades(account_id);
CREATE INDEX IF NOT EXISTS idx_requests_status ON requests(kind, status);
CREATE INDEX IF NOT EXISTS idx_candles_symbol_time ON candles(symbol, time);
`
