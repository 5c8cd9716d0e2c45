package transaction

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// txIDCounter is an atomic counter for ordering executions within a process
var txIDCounter uint64

// ChangeType represents the type of modification
type ChangeType string

const (
	ChangeTypeInsert ChangeType = "INSERT"
	ChangeTypeUpdate ChangeType = "UPDATE"
	ChangeTypeDelete ChangeType = "DELETE"
	ChangeTypeReload ChangeType = "RELOAD"
)

// Change records one table replaced during an execution
type Change struct {
	Type  ChangeType
	Table string
	Rows  int64 // rows affected, or rows loaded for RELOAD
}

// Transaction is the tracing context of one statement execution or reload.
// It carries no rollback capability; the tabular path never partially applies.
type Transaction struct {
	ID        string    // UUID used to correlate lifecycle events and logs
	Seq       uint64    // process-local sequence number
	Active    bool      // Whether transaction is currently active
	StartTime time.Time // When the transaction began
	Changes   []Change  // Modifications made
}

// NewTransaction creates a new transaction with a unique ID
func NewTransaction() *Transaction {
	return &Transaction{
		ID:        uuid.New().String(),
		Seq:       atomic.AddUint64(&txIDCounter, 1),
		Active:    true,
		StartTime: time.Now(),
		Changes:   make([]Change, 0),
	}
}

// Record appends a change
func (tx *Transaction) Record(kind ChangeType, table string, rows int64) {
	tx.Changes = append(tx.Changes, Change{Type: kind, Table: table, Rows: rows})
}

// Elapsed returns the time since the transaction began
func (tx *Transaction) Elapsed() time.Duration {
	return time.Since(tx.StartTime)
}

// Close marks the transaction as inactive
func (tx *Transaction) Close() {
	tx.Active = false
}
