package repository

import (
	stderrors "errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"mibank/internal/domain"
	"mibank/internal/errors"
)

// FileCodec stores the account set as a JSON array in a single file.
type FileCodec struct {
	path   string
	logger *slog.Logger
}

func NewFileCodec(path string, logger *slog.Logger) *FileCodec {
	return &FileCodec{
		path:   path,
		logger: loggerOrDiscard(logger),
	}
}

// Load reads the store file. A missing file is the first-run case and yields
// an empty set.
func (c *FileCodec) Load() ([]domain.Account, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			c.logger.Info("Store file not found, starting empty", "path", c.path)
			return []domain.Account{}, nil
		}
		c.logger.Error("Failed to read store file", "path", c.path, "error", err)
		return nil, errors.NewIOError("read store file", err).WithDetails(c.path)
	}

	accounts, err := decodeAccounts(data)
	if err != nil {
		c.logger.Error("Store file is corrupt", "path", c.path, "error", err)
		return nil, err
	}
	return accounts, nil
}

// Save writes the set to a temp file in the same directory, syncs it and
// renames it over the store file, so the previous copy survives any failure
// before the rename.
func (c *FileCodec) Save(accounts []domain.Account) error {
	data, err := encodeAccounts(accounts)
	if err != nil {
		return errors.NewIOError("encode account set", err)
	}

	dir := filepath.Dir(c.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(c.path)+".*.tmp")
	if err != nil {
		c.logger.Error("Failed to create temp file", "dir", dir, "error", err)
		return errors.NewIOError("create temp file", err).WithDetails(dir)
	}
	tmpName := tmp.Name()

	if err := writeAndSync(tmp, data); err != nil {
		os.Remove(tmpName)
		c.logger.Error("Failed to write temp file", "path", tmpName, "error", err)
		return errors.NewIOError("write store file", err).WithDetails(tmpName)
	}

	if err := os.Rename(tmpName, c.path); err != nil {
		os.Remove(tmpName)
		c.logger.Error("Failed to replace store file", "path", c.path, "error", err)
		return errors.NewIOError("replace store file", err).WithDetails(c.path)
	}

	if err := syncDir(dir); err != nil {
		// The rename already happened; the new copy is in place but may not
		// survive a power loss.
		c.logger.Warn("Failed to sync store directory", "dir", dir, "error", err)
	}

	c.logger.Debug("Store file saved", "path", c.path, "accounts", len(accounts))
	return nil
}

func writeAndSync(f *os.File, data []byte) error {
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer d.Close()
	return d.Sync()
}
