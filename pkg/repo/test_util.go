package repo

import (
	"testing"
)

func MockRepo(t testing.TB) *Repo {
	repoRoot := t.TempDir()
	cfg := DefaultConfig()
	cfg.Storage.KvType = KVStorageTypeMemory
	cfg.Log.Level = "debug"
	return &Repo{
		RepoRoot: repoRoot,
		Config:   cfg,
	}
}
