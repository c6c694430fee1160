// Пакет wal — журнал намерений для операций над записями.
// Загрузка и удаление затрагивают два ресурса (аудиофайл и дневной журнал),
// поэтому перед операцией фиксируется транзакция, а после — её исход.
// Каждая транзакция — отдельный файл {tx_id}.wal.json в SR_WAL_DIR.
package wal

import (
	"time"
)

// OperationType — тип операции над записью.
type OperationType string

const (
	// OpRecordingCreate — сохранение аудиофайла и добавление строки в журнал
	OpRecordingCreate OperationType = "recording_create"
	// OpRecordingDelete — удаление аудиофайла и строки журнала
	OpRecordingDelete OperationType = "recording_delete"
)

// TransactionStatus — статус транзакции.
type TransactionStatus string

const (
	StatusPending    TransactionStatus = "pending"
	StatusCommitted  TransactionStatus = "committed"
	StatusRolledBack TransactionStatus = "rolled_back"
)

// Entry — транзакция над одной записью.
type Entry struct {
	TransactionID string            `json:"transactionId"`
	Operation     OperationType     `json:"operation"`
	Status        TransactionStatus `json:"status"`

	// Filename — имя аудиофайла, над которым выполняется операция
	Filename string `json:"filename"`

	// LedgerDate — дата файла журнала, затронутого операцией.
	// Заполняется при коммите, если журнал был изменён.
	LedgerDate string `json:"ledgerDate,omitempty"`

	StartedAt   time.Time  `json:"startedAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// Done сообщает, завершена ли транзакция (коммит или откат).
func (e *Entry) Done() bool {
	return e.Status == StatusCommitted || e.Status == StatusRolledBack
}

const fileSuffix = ".wal.json"

func walFileName(txID string) string {
	return txID + fileSuffix
}
