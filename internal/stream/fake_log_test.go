package stream

import (
	"context"
	"strconv"
	"sync"
	"time"
)

// fakeLog is an in-memory single partition. Fetch blocks until a record is appended.
type fakeLog struct {
	mu       sync.Mutex
	parts    []int
	partsErr error
	endErr   error
	fetchErr error
	partID   int
	records  []Record
	pos      int64
	seeks    []int64
	closes   int
	appended chan struct{}
}

func newFakeLog(values ...string) *fakeLog {
	f := &fakeLog{parts: []int{0}, appended: make(chan struct{}, 1)}
	for _, v := range values {
		f.append(v)
	}
	return f
}

func (f *fakeLog) append(value string) {
	f.mu.Lock()
	f.records = append(f.records, Record{
		Partition: f.partID,
		Offset:    int64(len(f.records)),
		Value:     []byte(value),
		Time:      time.Unix(int64(len(f.records)), 0),
	})
	f.mu.Unlock()
	select {
	case f.appended <- struct{}{}:
	default:
	}
}

func (f *fakeLog) failFetch(err error) {
	f.mu.Lock()
	f.fetchErr = err
	f.mu.Unlock()
	select {
	case f.appended <- struct{}{}:
	default:
	}
}

func (f *fakeLog) Partitions(context.Context) ([]int, error) {
	return f.parts, f.partsErr
}

func (f *fakeLog) EndOffset(_ context.Context, partition int) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.partID = partition
	return int64(len(f.records)), f.endErr
}

func (f *fakeLog) Seek(_ context.Context, _ int, offset int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pos = offset
	f.seeks = append(f.seeks, offset)
	return nil
}

func (f *fakeLog) Fetch(ctx context.Context) (Record, error) {
	for {
		f.mu.Lock()
		if f.fetchErr != nil {
			err := f.fetchErr
			f.mu.Unlock()
			return Record{}, err
		}
		if f.pos < int64(len(f.records)) {
			rec := f.records[f.pos]
			f.pos++
			f.mu.Unlock()
			return rec, nil
		}
		f.mu.Unlock()

		select {
		case <-ctx.Done():
			return Record{}, ctx.Err()
		case <-f.appended:
		}
	}
}

func (f *fakeLog) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closes++
	return nil
}

func jsonValues(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = `{"n":` + strconv.Itoa(i) + `}`
	}
	return out
}
