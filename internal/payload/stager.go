package payload

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/silvermoth/bg3loader/internal/domain"
)

// Stager materializes the embedded loader into the system temp directory as
// loader-<hash>.dll. Staging is idempotent: concurrent tool instances may
// race to create the file, but the hash guarantees byte-identical content, so
// whoever wins the race produces the same artifact.
type Stager struct {
	tempDir string
	logger  *zap.Logger
}

// NewStager creates a stager using the system temp directory.
func NewStager(logger *zap.Logger) *Stager {
	return &Stager{tempDir: os.TempDir(), logger: logger}
}

// NewStagerIn creates a stager rooted at an explicit directory.
func NewStagerIn(dir string, logger *zap.Logger) *Stager {
	return &Stager{tempDir: dir, logger: logger}
}

// Stage returns the staged loader path, decompressing the embedded image only
// when no prior materialization exists. The file is never deleted by this
// tool; other tooling may rely on the stable hash-addressed path.
func (s *Stager) Stage() (string, error) {
	if _, err := os.Stat(s.tempDir); err != nil {
		return "", &domain.EnvironmentError{
			Op:  "stage loader",
			Err: errors.Wrapf(err, "temp dir %s does not exist", s.tempDir),
		}
	}

	hash, err := Hash()
	if err != nil {
		return "", &domain.EnvironmentError{Op: "stage loader", Err: err}
	}

	dest := filepath.Join(s.tempDir, fmt.Sprintf("loader-%s.dll", hash))

	if _, err := os.Stat(dest); err == nil {
		s.logger.Debug("loader already staged", zap.String("path", dest))
		return dest, nil
	}

	if err := s.write(dest); err != nil {
		return "", &domain.EnvironmentError{Op: "stage loader", Err: err}
	}

	s.logger.Info("staged loader", zap.String("path", dest), zap.String("hash", hash))
	return dest, nil
}

func (s *Stager) write(dest string) error {
	zr, err := gzip.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return errors.Wrap(err, "open embedded loader")
	}
	defer zr.Close()

	out, err := os.Create(dest)
	if err != nil {
		return errors.Wrap(err, "create staged loader")
	}
	defer out.Close()

	if _, err := io.Copy(out, zr); err != nil {
		return errors.Wrap(err, "decompress loader")
	}
	return nil
}

var _ domain.Stager = (*Stager)(nil)
