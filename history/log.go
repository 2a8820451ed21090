package history

import (
	"go-token-swap"
)

// MaxRecords capacity of a Log. Appending beyond it evicts the oldest records.
const MaxRecords = 50

// Log an immutable, bounded sequence of swap records, newest first.
// The zero value is an empty log.
type Log struct {
	records []swap.Record
}

// NewLog builds a log from records ordered newest first.
// Records beyond MaxRecords are dropped from the end.
func NewLog(records []swap.Record) Log {
	n := len(records)
	if n > MaxRecords {
		n = MaxRecords
	}
	l := Log{records: make([]swap.Record, n)}
	copy(l.records, records)
	return l
}

// Append returns a new log with r at index 0. The receiver is unchanged.
// At capacity the oldest record is evicted.
func (l Log) Append(r swap.Record) Log {
	n := len(l.records) + 1
	if n > MaxRecords {
		n = MaxRecords
	}
	records := make([]swap.Record, n)
	records[0] = r
	copy(records[1:], l.records)
	return Log{records: records}
}

// Clear returns an empty log
func (l Log) Clear() Log {
	return Log{}
}

// Len number of records
func (l Log) Len() int {
	return len(l.records)
}

// Records a copy of the records, newest first
func (l Log) Records() []swap.Record {
	result := make([]swap.Record, len(l.records))
	copy(result, l.records)
	return result
}
