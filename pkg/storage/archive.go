// Package storage persists received auction instances and produced solutions
// for offline inspection and replay.
package storage

import (
	"encoding/json"
	"fmt"

	"github.com/cockroachdb/pebble"

	"github.com/minjcho/cowlick/pkg/schema"
)

// Archive is a pebble-backed store of auction instances and their solutions,
// keyed by auction id.
type Archive struct {
	db *pebble.DB
}

func NewArchive(path string) (*Archive, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, err
	}
	return &Archive{db: db}, nil
}

func (a *Archive) Close() error { return a.db.Close() }

// keys: i:<auction-id> raw instance, s:<auction-id> solution
func kInstance(id string) []byte { return append([]byte("i:"), id...) }
func kSolution(id string) []byte { return append([]byte("s:"), id...) }

func keyUpperBound(prefix []byte) []byte {
	end := make([]byte, len(prefix))
	copy(end, prefix)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}

// SaveInstance persists the raw wire instance as received.
func (a *Archive) SaveInstance(id string, raw []byte) error {
	if err := a.db.Set(kInstance(id), raw, pebble.Sync); err != nil {
		return fmt.Errorf("save instance <%s>: %w", id, err)
	}
	return nil
}

// LoadInstance returns the raw instance, or false if the id is unknown.
func (a *Archive) LoadInstance(id string) ([]byte, bool, error) {
	val, closer, err := a.db.Get(kInstance(id))
	if err == pebble.ErrNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load instance <%s>: %w", id, err)
	}
	defer closer.Close()
	out := make([]byte, len(val))
	copy(out, val)
	return out, true, nil
}

// SaveSolution persists the solution produced for an auction.
func (a *Archive) SaveSolution(id string, resp *schema.SolveResponse) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("marshal solution <%s>: %w", id, err)
	}
	if err := a.db.Set(kSolution(id), data, pebble.Sync); err != nil {
		return fmt.Errorf("save solution <%s>: %w", id, err)
	}
	return nil
}

// LoadSolution returns the archived solution, or false if the id is unknown.
func (a *Archive) LoadSolution(id string) (*schema.SolveResponse, bool, error) {
	val, closer, err := a.db.Get(kSolution(id))
	if err == pebble.ErrNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load solution <%s>: %w", id, err)
	}
	defer closer.Close()
	var out schema.SolveResponse
	if err := json.Unmarshal(val, &out); err != nil {
		return nil, false, fmt.Errorf("unmarshal solution <%s>: %w", id, err)
	}
	return &out, true, nil
}

// ListInstanceIDs returns the ids of all archived instances.
func (a *Archive) ListInstanceIDs() ([]string, error) {
	prefix := []byte("i:")
	iter, err := a.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: keyUpperBound(prefix),
	})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var ids []string
	for iter.First(); iter.Valid(); iter.Next() {
		ids = append(ids, string(iter.Key()[len(prefix):]))
	}
	return ids, iter.Error()
}
