package journal

const Schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id TEXT PRIMARY KEY,
	strategy TEXT NOT NULL,
	symbol TEXT NOT NULL,
	start_date DATETIME NOT NULL,
	end_date DATETIME NOT NULL,
	initial_cash REAL NOT NULL,
	final_nav REAL,
	num_trades INTEGER NOT NULL,
	annual_return REAL,
	annual_vol REAL,
	sharpe REAL,
	max_drawdown REAL,
	created DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS trades (
	trade_id TEXT PRIMARY KEY,
	run_id TEXT NOT NULL,
	order_id TEXT NOT NULL,
	symbol TEXT NOT NULL,
	side TEXT NOT NULL,
	qty REAL NOT NULL,
	price REAL NOT NULL,
	timestamp DATETIME NOT NULL,
	commission REAL NOT NULL,
	fill_cost REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS equity (
	run_id TEXT NOT NULL,
	timestamp DATETIME NOT NULL,
	cash REAL NOT NULL,
	nav REAL NOT NULL,
	positions TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created);
CREATE INDEX IF NOT EXISTS idx_trades_run ON trades(run_id);
CREATE INDEX IF NOT EXISTS idx_equity_run ON equity(run_id, timestamp);
`
