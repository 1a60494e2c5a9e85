package transfer

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
)

// SFTP downloads over an already-established SSH connection, for native
// mode where shelling out to scp is not wanted. Like scp -p it preserves
// modification times; unlike rsync it is not resumable.
type SFTP struct {
	client *sftp.Client
}

// NewSFTP opens an sftp channel on conn.
func NewSFTP(conn *ssh.Client) (*SFTP, error) {
	client, err := sftp.NewClient(conn)
	if err != nil {
		return nil, fmt.Errorf("open sftp channel: %w", err)
	}
	return &SFTP{client: client}, nil
}

func (s *SFTP) Close() error { return s.client.Close() }

// Download fetches the requested path into the destination directory,
// recursing when the request names a directory.
func (s *SFTP) Download(req Request) error {
	if err := os.MkdirAll(req.LocalDest, 0o755); err != nil {
		return fmt.Errorf("create destination %s: %w", req.LocalDest, err)
	}

	local := filepath.Join(req.LocalDest, path.Base(req.RemotePath))
	if req.Dir {
		return s.downloadDir(req.RemotePath, local)
	}
	return s.downloadFile(req.RemotePath, local)
}

func (s *SFTP) downloadDir(remoteDir, localDir string) error {
	if err := os.MkdirAll(localDir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", localDir, err)
	}

	entries, err := s.client.ReadDir(remoteDir)
	if err != nil {
		return fmt.Errorf("read remote dir %s: %w", remoteDir, err)
	}

	for _, entry := range entries {
		remotePath := path.Join(remoteDir, entry.Name())
		localPath := filepath.Join(localDir, entry.Name())
		if entry.IsDir() {
			if err := s.downloadDir(remotePath, localPath); err != nil {
				return err
			}
			continue
		}
		if err := s.downloadFile(remotePath, localPath); err != nil {
			return err
		}
	}
	return nil
}

func (s *SFTP) downloadFile(remotePath, localPath string) error {
	src, err := s.client.Open(remotePath)
	if err != nil {
		return fmt.Errorf("open remote file %s: %w", remotePath, err)
	}
	defer src.Close()

	dst, err := os.Create(localPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", localPath, err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return fmt.Errorf("copy %s: %w", remotePath, err)
	}
	if err := dst.Close(); err != nil {
		return fmt.Errorf("close %s: %w", localPath, err)
	}

	if info, err := src.Stat(); err == nil {
		_ = os.Chtimes(localPath, info.ModTime(), info.ModTime())
	}
	return nil
}
