package archive

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path"
	"strings"

	"github.com/hindsightlab/hindsight/internal/backtest"
	"github.com/hindsightlab/hindsight/internal/core"
)

// Store is a flat blob store for archived run results.
type Store interface {
	// Put stores data under the given key.
	Put(ctx context.Context, key string, data []byte) error

	// Get retrieves the data stored under the given key.
	Get(ctx context.Context, key string) ([]byte, error)

	// List returns all keys matching the prefix.
	List(ctx context.Context, prefix string) ([]string, error)

	// Delete removes the data stored under the given key.
	Delete(ctx context.Context, key string) error

	// Exists reports whether a key holds data.
	Exists(ctx context.Context, key string) (bool, error)
}

const runPrefix = "runs"

func runKey(runID string) string {
	return path.Join(runPrefix, runID+".json")
}

// WriteResult archives a run result as JSON under runs/<run-id>.json.
func WriteResult(ctx context.Context, s Store, res *backtest.Result) error {
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return core.WrapError(core.ErrArchiveFailed, err)
	}
	if err := s.Put(ctx, runKey(res.RunID), data); err != nil {
		return core.WrapError(core.ErrArchiveFailed, err)
	}
	return nil
}

// ReadResult loads an archived run result by ID.
func ReadResult(ctx context.Context, s Store, runID string) (*backtest.Result, error) {
	data, err := s.Get(ctx, runKey(runID))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, core.WrapError(core.ErrRunNotFound, err)
		}
		return nil, core.WrapError(core.ErrArchiveFailed, err)
	}

	var res backtest.Result
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, core.WrapError(core.ErrArchiveFailed, err)
	}
	return &res, nil
}

// ListRuns returns the IDs of all archived runs.
func ListRuns(ctx context.Context, s Store) ([]string, error) {
	keys, err := s.List(ctx, runPrefix)
	if err != nil {
		return nil, core.WrapError(core.ErrArchiveFailed, err)
	}

	ids := make([]string, 0, len(keys))
	for _, k := range keys {
		base := path.Base(k)
		if strings.HasSuffix(base, ".json") {
			ids = append(ids, strings.TrimSuffix(base, ".json"))
		}
	}
	return ids, nil
}
