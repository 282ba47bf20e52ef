// Package ssh writes files to remote hosts over SSH and SFTP.
package ssh

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"

	"github.com/pkg/sftp"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/ssh"
)

// Client is a connected SSH client.
type Client struct {
	config *Config
	client *ssh.Client
}

// Dial validates config and connects to the remote host.
func Dial(ctx context.Context, config *Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	clientConfig, err := config.BuildSSHClientConfig()
	if err != nil {
		return nil, &TransportError{
			Op:          "connect",
			Err:         err,
			IsTemporary: false,
			IsAuthError: true,
		}
	}

	address := config.Address()
	log.Debug().Str("address", address).Msg("establishing SSH connection")

	connChan := make(chan *ssh.Client, 1)
	errChan := make(chan error, 1)

	go func() {
		client, err := ssh.Dial("tcp", address, clientConfig)
		if err != nil {
			errChan <- err
			return
		}
		connChan <- client
	}()

	select {
	case <-ctx.Done():
		// Close a connection that completes after cancellation.
		go func() {
			select {
			case client := <-connChan:
				_ = client.Close()
			case <-errChan:
			}
		}()
		return nil, &TransportError{
			Op:          "connect",
			Err:         ctx.Err(),
			IsTemporary: true,
		}
	case err := <-errChan:
		return nil, &TransportError{
			Op:          "connect",
			Err:         err,
			IsTemporary: true,
		}
	case client := <-connChan:
		log.Debug().Str("address", address).Msg("SSH connection established")
		return &Client{config: config, client: client}, nil
	}
}

// Close closes the connection.
func (c *Client) Close() error {
	if c.client == nil {
		return nil
	}
	err := c.client.Close()
	c.client = nil
	if err != nil {
		return &TransportError{Op: "disconnect", Err: err}
	}
	return nil
}

func (c *Client) sftpClient() (*sftp.Client, error) {
	if c.client == nil {
		return nil, &TransportError{Op: "sftp-init", Err: fmt.Errorf("not connected")}
	}
	sftpClient, err := sftp.NewClient(c.client)
	if err != nil {
		return nil, &TransportError{
			Op:          "sftp-init",
			Err:         fmt.Errorf("failed to create SFTP client: %w", err),
			IsTemporary: true,
		}
	}
	return sftpClient, nil
}

// WriteFile writes content to remotePath. The content is uploaded to a
// temporary file next to the target and renamed over it, so readers never
// see a partial file. Parent directories are created.
func (c *Client) WriteFile(ctx context.Context, remotePath string, content []byte, mode os.FileMode) error {
	sftpClient, err := c.sftpClient()
	if err != nil {
		return err
	}
	defer sftpClient.Close()

	dir := path.Dir(remotePath)
	if err := sftpClient.MkdirAll(dir); err != nil {
		return &TransportError{
			Op:  "upload",
			Err: fmt.Errorf("failed to create remote directory: %w", err),
		}
	}

	tmpPath := path.Join(dir, "."+path.Base(remotePath)+".tmp")
	remoteFile, err := sftpClient.Create(tmpPath)
	if err != nil {
		return &TransportError{
			Op:          "upload",
			Err:         fmt.Errorf("failed to create remote file: %w", err),
			IsTemporary: true,
		}
	}

	written, err := copyWithContext(ctx, remoteFile, content)
	if closeErr := remoteFile.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = sftpClient.Remove(tmpPath)
		return &TransportError{
			Op:          "upload",
			Err:         fmt.Errorf("failed to write remote file: %w", err),
			IsTemporary: true,
		}
	}

	if mode > 0 {
		if err := sftpClient.Chmod(tmpPath, mode); err != nil {
			log.Warn().Err(err).Str("remote", tmpPath).Msg("failed to set file permissions")
		}
	}

	if err := c.rename(sftpClient, tmpPath, remotePath); err != nil {
		_ = sftpClient.Remove(tmpPath)
		return &TransportError{
			Op:  "upload",
			Err: fmt.Errorf("failed to replace remote file: %w", err),
		}
	}

	log.Debug().
		Str("host", c.config.Host).
		Str("remote", remotePath).
		Int64("bytes", written).
		Msg("file uploaded")

	return nil
}

// rename replaces newname with oldname. Servers without the posix-rename
// extension refuse to rename over an existing file, so the target is
// removed first.
func (c *Client) rename(sftpClient *sftp.Client, oldname, newname string) error {
	if err := sftpClient.PosixRename(oldname, newname); err == nil {
		return nil
	}
	if err := sftpClient.Remove(newname); err != nil && !os.IsNotExist(err) {
		log.Debug().Err(err).Str("remote", newname).Msg("failed to remove previous file")
	}
	return sftpClient.Rename(oldname, newname)
}

// ReadFile reads the content of remotePath.
func (c *Client) ReadFile(ctx context.Context, remotePath string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sftpClient, err := c.sftpClient()
	if err != nil {
		return nil, err
	}
	defer sftpClient.Close()

	remoteFile, err := sftpClient.Open(remotePath)
	if err != nil {
		return nil, &TransportError{Op: "download", Err: err}
	}
	defer remoteFile.Close()

	data, err := io.ReadAll(remoteFile)
	if err != nil {
		return nil, &TransportError{Op: "download", Err: err, IsTemporary: true}
	}
	return data, nil
}

// copyWithContext writes content in chunks, checking for cancellation
// between chunks.
func copyWithContext(ctx context.Context, dst io.Writer, content []byte) (int64, error) {
	const chunk = 32 * 1024
	var written int64

	for len(content) > 0 {
		select {
		case <-ctx.Done():
			return written, ctx.Err()
		default:
		}

		n := chunk
		if n > len(content) {
			n = len(content)
		}
		nw, err := dst.Write(content[:n])
		written += int64(nw)
		if err != nil {
			return written, err
		}
		if nw != n {
			return written, io.ErrShortWrite
		}
		content = content[n:]
	}

	return written, nil
}
