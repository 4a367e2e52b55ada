package main

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"
)

// backupMeta records the fingerprints that guard a backup. OriginalHash is
// the storage file as it was when the backup was taken; ModifiedHash tracks
// the last content this tool wrote. When the live file's hash no longer
// matches ModifiedHash someone else rewrote it (a driver update, usually) and
// the backup must not be restored.
type backupMeta struct {
	OriginalHash string    `json:"original_hash"`
	ModifiedHash string    `json:"modified_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

func backupPath(path string) string {
	return path + ".backup"
}

func metaPath(path string) string {
	return path + ".backup.meta"
}

// fingerprintBytes hashes in-memory content with SHA-256.
func fingerprintBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// fingerprintFile hashes a file's content in chunks.
func fingerprintFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func loadBackupMeta(path string) (*backupMeta, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var meta backupMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	if meta.OriginalHash == "" || meta.ModifiedHash == "" {
		return nil, fmt.Errorf("backup meta %s is incomplete", path)
	}
	return &meta, nil
}

func saveBackupMeta(path string, meta *backupMeta) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	return writeFileAtomic(path, data, 0o644)
}

// createBackup snapshots the current storage content and records its hash as
// both the original and the last-written state.
func createBackup(opts Options, data []byte, log *Logger) (*backupMeta, error) {
	if err := writeFileAtomic(opts.BackupPath, data, 0o644); err != nil {
		return nil, err
	}
	h := fingerprintBytes(data)
	meta := &backupMeta{
		OriginalHash: h,
		ModifiedHash: h,
		CreatedAt:    time.Now().UTC(),
	}
	if err := saveBackupMeta(opts.MetaPath, meta); err != nil {
		return nil, err
	}
	log.Info().Str("backup", opts.BackupPath).Msg("backup created")
	return meta, nil
}

// ensureBackup returns a backup record that is valid for the given storage
// content, creating a fresh one when the previous record is missing, corrupt,
// or was invalidated by an external rewrite. A stale record is never reused:
// the current file becomes the new baseline.
func ensureBackup(opts Options, data []byte, log *Logger) (*backupMeta, error) {
	if _, err := os.Stat(opts.BackupPath); err != nil {
		return createBackup(opts, data, log)
	}
	meta, err := loadBackupMeta(opts.MetaPath)
	if err != nil {
		log.Warn().Err(err).Msg("backup meta unreadable, taking fresh backup")
		return createBackup(opts, data, log)
	}
	if fingerprintBytes(data) != meta.ModifiedHash {
		log.Info().Msg("external update detected, current file becomes the new baseline")
		return createBackup(opts, data, log)
	}
	return meta, nil
}
