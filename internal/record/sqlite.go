// Package record stores the per-round port states of a simulation run in a
// SQLite database.
package record

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	// Need to use SQLite connections.
	_ "github.com/mattn/go-sqlite3"

	"github.com/rs/xid"

	"github.com/MrT-Stephens/STP-Network-Simulation/internal/logger"
	"github.com/MrT-Stephens/STP-Network-Simulation/internal/stp"
)

const defaultBatchSize = 1000

// ErrNotInitialised is returned when reading from a recorder before Init
var ErrNotInitialised = errors.New("recorder is not initialised")

// PortRow is one recorded port state.
type PortRow struct {
	RunID    string
	Round    int
	Bridge   string
	BridgeID string
	RootID   string
	Port     uint16
	Role     string
	Status   string
	// CostToRoot is only valid when HasCost is set
	CostToRoot uint32
	HasCost    bool
}

// SQLiteRecorder is a stp.Hook that writes a row for every port at boot and
// after every round. Rows are buffered and written in batches.
type SQLiteRecorder struct {
	*sql.DB
	runStatement  *sql.Stmt
	portStatement *sql.Stmt

	mu        sync.Mutex
	path      string
	runID     string
	pending   []PortRow
	batchSize int
}

// NewSQLiteRecorder creates a recorder writing to path. An empty path
// names the database after the run id.
func NewSQLiteRecorder(path string) *SQLiteRecorder {
	r := &SQLiteRecorder{
		path:      path,
		runID:     xid.New().String(),
		batchSize: defaultBatchSize,
	}
	return r
}

// RunID returns the id every row of this recorder carries
func (r *SQLiteRecorder) RunID() string { return r.runID }

// Path returns the database file
func (r *SQLiteRecorder) Path() string { return r.path }

// SetBatchSize sets how many rows are buffered before a flush
func (r *SQLiteRecorder) SetBatchSize(n int) {
	if n < 1 {
		n = 1
	}
	r.batchSize = n
}

// Init opens the database, creates the tables and registers the run.
func (r *SQLiteRecorder) Init(topology string, schedule stp.Schedule) error {
	if r.path == "" {
		r.path = "stp_run_" + r.runID + ".sqlite3"
	}

	db, err := sql.Open("sqlite3", r.path)
	if err != nil {
		return fmt.Errorf("open %s: %w", r.path, err)
	}
	r.DB = db

	if err := r.createTables(); err != nil {
		return err
	}
	if err := r.prepareStatements(); err != nil {
		return err
	}

	_, err = r.runStatement.Exec(r.runID, topology, schedule.String(),
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("register run: %w", err)
	}

	logger.LogInfo("Recorder: run %s is collected in %s", r.runID, r.path)
	return nil
}

func (r *SQLiteRecorder) createTables() error {
	stmts := []string{`
		CREATE TABLE IF NOT EXISTS runs
		(
			run_id     VARCHAR(20)  NOT NULL PRIMARY KEY,
			topology   VARCHAR(200) NOT NULL,
			schedule   VARCHAR(20)  NOT NULL,
			started_at VARCHAR(40)  NOT NULL
		);
	`, `
		CREATE TABLE IF NOT EXISTS port_states
		(
			run_id       VARCHAR(20)  NOT NULL,
			round        INTEGER      NOT NULL,
			bridge       VARCHAR(200) NOT NULL,
			bridge_id    VARCHAR(20)  NOT NULL,
			root_id      VARCHAR(20)  NOT NULL,
			port         INTEGER      NOT NULL,
			role         VARCHAR(20)  NOT NULL,
			status       VARCHAR(20)  NOT NULL,
			cost_to_root INTEGER      NULL
		);
	`, `
		CREATE INDEX IF NOT EXISTS port_states_run_round_index
			ON port_states (run_id, round);
	`}

	for _, s := range stmts {
		if _, err := r.Exec(s); err != nil {
			return fmt.Errorf("create tables: %w", err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) prepareStatements() error {
	var err error

	r.runStatement, err = r.Prepare(
		`INSERT INTO runs (run_id, topology, schedule, started_at) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare run statement: %w", err)
	}

	r.portStatement, err = r.Prepare(`INSERT INTO port_states
		(run_id, round, bridge, bridge_id, root_id, port, role, status, cost_to_root)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare port statement: %w", err)
	}
	return nil
}

// Func implements stp.Hook
func (r *SQLiteRecorder) Func(ctx stp.HookCtx) {
	switch ctx.Pos {
	case stp.HookPosBoot:
		r.write(0, ctx.Item.(stp.Snapshot))
	case stp.HookPosRoundEnd:
		r.write(ctx.Item.(stp.RoundInfo).Round, ctx.Detail.(stp.Snapshot))
	}
}

func (r *SQLiteRecorder) write(round int, s stp.Snapshot) {
	r.mu.Lock()
	for _, b := range s.Bridges {
		for _, p := range b.Ports {
			r.pending = append(r.pending, PortRow{
				RunID:      r.runID,
				Round:      round,
				Bridge:     b.Label,
				BridgeID:   b.ID.String(),
				RootID:     b.RootID.String(),
				Port:       p.Number,
				Role:       p.Role.String(),
				Status:     p.Status.String(),
				CostToRoot: p.CostToRoot,
				HasCost:    p.HasCost,
			})
		}
	}
	full := len(r.pending) >= r.batchSize
	r.mu.Unlock()

	if full {
		if err := r.Flush(); err != nil {
			logger.LogError("Recorder: %v", err)
		}
	}
}

// Flush writes all the buffered rows to the database.
func (r *SQLiteRecorder) Flush() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.pending) == 0 || r.DB == nil {
		return nil
	}

	tx, err := r.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	stmt := tx.Stmt(r.portStatement)
	for _, row := range r.pending {
		var cost interface{}
		if row.HasCost {
			cost = int64(row.CostToRoot)
		}
		_, err := stmt.Exec(row.RunID, row.Round, row.Bridge, row.BridgeID,
			row.RootID, int(row.Port), row.Role, row.Status, cost)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert port state %s:%d round %d: %w",
				row.Bridge, row.Port, row.Round, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	logger.LogDebug("Recorder: flushed %d rows", len(r.pending))
	r.pending = nil
	return nil
}

// Close flushes and closes the database
func (r *SQLiteRecorder) Close() error {
	if err := r.Flush(); err != nil {
		return err
	}
	if r.DB == nil {
		return nil
	}
	return r.DB.Close()
}

// Rows reads back the rows of a run in round and insertion order.
func (r *SQLiteRecorder) Rows(runID string) ([]PortRow, error) {
	if r.DB == nil {
		return nil, ErrNotInitialised
	}
	rows, err := r.Query(`SELECT run_id, round, bridge, bridge_id, root_id, port,
			role, status, cost_to_root
		FROM port_states WHERE run_id = ?
		ORDER BY round, rowid`, runID)
	if err != nil {
		return nil, fmt.Errorf("query port states: %w", err)
	}
	defer rows.Close()

	var out []PortRow
	for rows.Next() {
		var (
			row  PortRow
			port int
			cost sql.NullInt64
		)
		err := rows.Scan(&row.RunID, &row.Round, &row.Bridge, &row.BridgeID,
			&row.RootID, &port, &row.Role, &row.Status, &cost)
		if err != nil {
			return nil, fmt.Errorf("scan port state: %w", err)
		}
		row.Port = uint16(port)
		if cost.Valid {
			row.CostToRoot = uint32(cost.Int64)
			row.HasCost = true
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// Runs lists the recorded run ids in insertion order.
func (r *SQLiteRecorder) Runs() ([]string, error) {
	if r.DB == nil {
		return nil, ErrNotInitialised
	}
	rows, err := r.Query(`SELECT run_id FROM runs ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// String describes the row the way the shell prints it
func (p PortRow) String() string {
	cost := "-"
	if p.HasCost {
		cost = strconv.FormatUint(uint64(p.CostToRoot), 10)
	}
	return fmt.Sprintf("round %d %s:%d %s %s cost %s", p.Round, p.Bridge, p.Port, p.Role, p.Status, cost)
}
