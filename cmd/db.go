package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gigscope/gigscope/internal/utils"
	"github.com/gigscope/gigscope/pkg/storage"
)

// openDB resolves the database path from flags and opens it. When lock is
// true the cross-process write lock is taken first; the returned release
// func must be called (it is a no-op for read-only opens).
func openDB(cmd *cobra.Command, lock bool) (*storage.DB, func(), error) {
	dbPath, _ := cmd.Flags().GetString("dbpath")
	absPath, err := utils.GetAbsDBPath(dbPath)
	if err != nil {
		return nil, nil, err
	}
	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return nil, nil, err
	}

	release := func() {}
	if lock {
		dbLock, err := utils.NewDBLock(absPath)
		if err != nil {
			return nil, nil, err
		}
		if err := dbLock.Lock(); err != nil {
			return nil, nil, err
		}
		release = func() {
			if err := dbLock.Unlock(); err != nil {
				utils.Log.Warnf("Failed to release db lock: %v", err)
			}
		}
	}

	db, err := storage.Open(absPath)
	if err != nil {
		release()
		return nil, nil, err
	}
	return db, release, nil
}
