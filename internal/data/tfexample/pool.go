package tfexample

import (
	"sync"
)

var (
	pooledRecord = newRecordPool()
)

func GetRecordPool() *RecordPool {
	return pooledRecord
}

type RecordPool struct {
	pool sync.Pool
}

func newRecordPool() *RecordPool {
	return &RecordPool{
		pool: sync.Pool{
			New: func() interface{} {
				record := &Record{example: New()}
				record.Builder = &RecordBuilder{record: record}
				return record
			},
		},
	}
}

func (p *RecordPool) Get() *Record {
	return p.pool.Get().(*Record)
}

func (p *RecordPool) Put(r *Record) {
	r.Clear()
	p.pool.Put(r)
}
