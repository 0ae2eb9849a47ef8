package server

import (
	"bytes"
	"encoding/json"
	"sync"
	"testing"

	"github.com/rs/zerolog"
)

func TestStats_Record(t *testing.T) {
	s := NewStats()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			status := 200
			if i%4 == 0 {
				status = 404
			}
			s.record(status, 10)
		}(i)
	}
	wg.Wait()
	s.accepted.Add(3)

	snap := s.Snapshot()
	if snap.Requests != 20 {
		t.Errorf("Requests = %d, want 20", snap.Requests)
	}
	if snap.Bytes != 200 {
		t.Errorf("Bytes = %d, want 200", snap.Bytes)
	}
	if snap.Accepted != 3 {
		t.Errorf("Accepted = %d, want 3", snap.Accepted)
	}
	if snap.Statuses[200] != 15 || snap.Statuses[404] != 5 {
		t.Errorf("Statuses = %v, want 200:15 404:5", snap.Statuses)
	}
}

func TestSnapshot_MarshalZerologObject(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)
	snap := Snapshot{Accepted: 2, Requests: 3, Bytes: 99, Statuses: map[int]int64{200: 2, 304: 1}}
	log.Info().Object("stats", snap).Msg("")

	var got struct {
		Stats struct {
			Accepted int64            `json:"accepted"`
			Requests int64            `json:"requests"`
			Bytes    int64            `json:"bytes"`
			Statuses map[string]int64 `json:"statuses"`
		} `json:"stats"`
	}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("log line %q: %v", buf.String(), err)
	}
	if got.Stats.Accepted != 2 || got.Stats.Requests != 3 || got.Stats.Bytes != 99 {
		t.Errorf("stats = %+v", got.Stats)
	}
	if got.Stats.Statuses["200"] != 2 || got.Stats.Statuses["304"] != 1 {
		t.Errorf("statuses = %v", got.Stats.Statuses)
	}
}
