package ledger

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"
)

// LatestSnapshot returns the path of the most recently modified .json file in dir.
// It returns "" when dir is missing or holds no snapshot.
func LatestSnapshot(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("failed to list %s: %w", dir, err)
	}

	var (
		latest    string
		latestMod time.Time
	)
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".json") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if latest == "" || info.ModTime().After(latestMod) {
			latest = filepath.Join(dir, entry.Name())
			latestMod = info.ModTime()
		}
	}

	return latest, nil
}

// IsDuplicateSnapshot reports whether candidate deep-equals the payload of the
// newest snapshot in dir. extract pulls the comparable payload out of a decoded
// snapshot file. Any difference, including order, counts as changed. An empty
// directory, an unreadable latest file or an empty prior payload are never
// duplicates.
func IsDuplicateSnapshot[T any](dir string, candidate T, extract func(data []byte) (T, error)) (bool, error) {
	path, err := LatestSnapshot(dir)
	if err != nil {
		return false, err
	}
	if path == "" {
		return false, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return false, nil
	}

	previous, err := extract(data)
	if err != nil {
		return false, nil
	}

	if isEmpty(previous) {
		return false, nil
	}

	return reflect.DeepEqual(previous, candidate), nil
}

// DecodeJSON is an extract function for snapshots stored as a bare JSON value
func DecodeJSON[T any](data []byte) (T, error) {
	var v T
	err := json.Unmarshal(data, &v)
	return v, err
}

func isEmpty(v interface{}) bool {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return true
	}
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array, reflect.String:
		return rv.Len() == 0
	case reflect.Ptr, reflect.Interface:
		return rv.IsNil()
	}
	return rv.IsZero()
}
