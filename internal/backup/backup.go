// Package backup snapshots every key of a store into timestamped files and
// restores them. Snapshots are backend-neutral, so a sqlite snapshot can be
// restored into redis.
package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/julianstephens/habitflow/internal/logger"
	"github.com/julianstephens/habitflow/internal/storage"
	"github.com/julianstephens/habitflow/internal/utils"
)

const (
	// MaxBackups is the maximum number of backups to keep
	MaxBackups = 14
	// BackupDirName is the name of the backup directory
	BackupDirName = "backups"
	// BackupFilePrefix is the prefix for backup files
	BackupFilePrefix = "habitflow-"
	// BackupFileSuffix is the suffix for backup files
	BackupFileSuffix = ".json"

	snapshotVersion = 1
)

// BackupInfo contains information about a backup file
type BackupInfo struct {
	Path      string
	Timestamp time.Time
	Size      int64
}

// Snapshot is the on-disk backup document
type Snapshot struct {
	Version   int               `json:"version"`
	CreatedAt time.Time         `json:"createdAt"`
	Source    string            `json:"source"`
	Data      map[string]string `json:"data"`
}

// Manager handles backup operations
type Manager struct {
	kv        storage.Store
	backupDir string
	clock     utils.Clock
}

// NewManager creates a backup manager writing under configDir/backups
func NewManager(kv storage.Store, configDir string, clock utils.Clock) *Manager {
	if clock == nil {
		clock = utils.SystemClock(nil)
	}
	return &Manager{
		kv:        kv,
		backupDir: filepath.Join(configDir, BackupDirName),
		clock:     clock,
	}
}

// GetBackupDir returns the backup directory path
func (m *Manager) GetBackupDir() string {
	return m.backupDir
}

// CreateBackup writes a snapshot of the store and rotates old backups
func (m *Manager) CreateBackup(ctx context.Context) (string, error) {
	return m.createBackup(ctx, false)
}

// skipRotation keeps a pre-restore snapshot from evicting the one being restored
func (m *Manager) createBackup(ctx context.Context, skipRotation bool) (string, error) {
	if err := os.MkdirAll(m.backupDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	snap, err := m.snapshot(ctx)
	if err != nil {
		return "", err
	}

	backupPath, err := m.uniquePath(snap.CreatedAt)
	if err != nil {
		return "", err
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to serialize backup: %w", err)
	}
	if err := writeFileAtomic(backupPath, data); err != nil {
		return "", fmt.Errorf("failed to write backup: %w", err)
	}
	logger.Info("Backup created", "path", backupPath, "keys", len(snap.Data))

	if !skipRotation {
		if err := m.rotateBackups(); err != nil {
			logger.Warn("Failed to rotate old backups", "error", err)
		}
	}
	return backupPath, nil
}

func (m *Manager) snapshot(ctx context.Context) (Snapshot, error) {
	keys, err := m.kv.ListKeys(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to list keys: %w", err)
	}
	snap := Snapshot{
		Version:   snapshotVersion,
		CreatedAt: m.clock(),
		Source:    m.kv.Describe(),
		Data:      make(map[string]string, len(keys)),
	}
	for _, key := range keys {
		value, found, err := m.kv.Get(ctx, key)
		if err != nil {
			return Snapshot{}, fmt.Errorf("failed to read %s: %w", key, err)
		}
		if found {
			snap.Data[key] = value
		}
	}
	return snap, nil
}

// uniquePath names the backup by minute, falling back to seconds and then a
// counter when the name is taken.
func (m *Manager) uniquePath(t time.Time) (string, error) {
	name := func(stamp string) string {
		return filepath.Join(m.backupDir, BackupFilePrefix+stamp+BackupFileSuffix)
	}

	backupPath := name(t.Format("20060102-1504"))
	if !exists(backupPath) {
		return backupPath, nil
	}
	stamp := t.Format("20060102-150405")
	backupPath = name(stamp)
	for counter := 1; exists(backupPath); counter++ {
		if counter > 100 {
			return "", fmt.Errorf("failed to generate unique backup filename")
		}
		backupPath = name(fmt.Sprintf("%s-%d", stamp, counter))
	}
	return backupPath, nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// ListBackups returns all available backups, newest first
func (m *Manager) ListBackups() ([]BackupInfo, error) {
	entries, err := os.ReadDir(m.backupDir)
	if os.IsNotExist(err) {
		return []BackupInfo{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	var backups []BackupInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasPrefix(name, BackupFilePrefix) || !strings.HasSuffix(name, BackupFileSuffix) {
			continue
		}
		timestamp, ok := parseStamp(strings.TrimSuffix(strings.TrimPrefix(name, BackupFilePrefix), BackupFileSuffix))
		if !ok {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		backups = append(backups, BackupInfo{
			Path:      filepath.Join(m.backupDir, name),
			Timestamp: timestamp,
			Size:      info.Size(),
		})
	}

	sort.SliceStable(backups, func(i, j int) bool {
		if backups[i].Timestamp.Equal(backups[j].Timestamp) {
			return backups[i].Path > backups[j].Path
		}
		return backups[i].Timestamp.After(backups[j].Timestamp)
	})
	return backups, nil
}

// parseStamp accepts YYYYMMDD-HHMM, YYYYMMDD-HHMMSS and either with a -N counter
func parseStamp(stamp string) (time.Time, bool) {
	parts := strings.Split(stamp, "-")
	if len(parts) == 3 {
		stamp = parts[0] + "-" + parts[1]
	}
	for _, layout := range []string{"20060102-1504", "20060102-150405"} {
		if t, err := time.Parse(layout, stamp); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// rotateBackups removes old backups beyond the retention limit
func (m *Manager) rotateBackups() error {
	backups, err := m.ListBackups()
	if err != nil {
		return err
	}
	for i := MaxBackups; i < len(backups); i++ {
		if err := os.Remove(backups[i].Path); err != nil {
			return fmt.Errorf("failed to remove old backup %s: %w", backups[i].Path, err)
		}
	}
	return nil
}

// ReadSnapshot loads and checks a backup file
func ReadSnapshot(path string) (Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("backup file does not exist: %s", path)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("backup file is corrupted or invalid: %w", err)
	}
	if snap.Version != snapshotVersion {
		return Snapshot{}, fmt.Errorf("unsupported backup version %d", snap.Version)
	}
	if snap.Data == nil {
		snap.Data = map[string]string{}
	}
	return snap, nil
}

// RestoreBackup replaces the store's contents with the snapshot at
// backupPath. The current contents are backed up first. It returns the path
// of that safety backup.
func (m *Manager) RestoreBackup(ctx context.Context, backupPath string) (string, error) {
	snap, err := ReadSnapshot(backupPath)
	if err != nil {
		return "", err
	}

	current, err := m.createBackup(ctx, true)
	if err != nil {
		return "", fmt.Errorf("failed to backup current data before restore: %w", err)
	}

	keys, err := m.kv.ListKeys(ctx)
	if err != nil {
		return current, fmt.Errorf("failed to list keys: %w", err)
	}
	var ops []storage.Op
	for _, key := range keys {
		if _, keep := snap.Data[key]; !keep {
			ops = append(ops, storage.RemoveOp(key))
		}
	}
	restored := make([]string, 0, len(snap.Data))
	for key := range snap.Data {
		restored = append(restored, key)
	}
	sort.Strings(restored)
	for _, key := range restored {
		ops = append(ops, storage.SetOp(key, snap.Data[key]))
	}

	if err := storage.Apply(ctx, m.kv, ops...); err != nil {
		return current, fmt.Errorf("failed to restore backup: %w", err)
	}
	logger.Info("Backup restored", "path", backupPath, "keys", len(snap.Data))
	return current, nil
}

// Resolve finds a backup by path or by file name inside the backup directory
func (m *Manager) Resolve(name string) (string, error) {
	if !filepath.IsAbs(name) {
		if candidate := filepath.Join(m.backupDir, name); exists(candidate) {
			return candidate, nil
		}
	}
	if !exists(name) {
		return "", fmt.Errorf("backup file not found: %s", name)
	}
	return name, nil
}

// writeFileAtomic writes through a temp file and rename
func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		if removeErr := os.Remove(tmp); removeErr != nil {
			logger.Warn("Failed to remove temporary file", "path", tmp, "error", removeErr)
		}
		return err
	}
	return nil
}
