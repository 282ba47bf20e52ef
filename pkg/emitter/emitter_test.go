package emitter

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/sabinadams/aurora/pkg/config"
	"github.com/sabinadams/aurora/pkg/transports/ssh"
)

var schema = []byte("enum Color {\n  RED\n}\n")

func remoteConfig() config.RemoteConfig {
	return config.Default().Remote
}

func TestEmitStdout(t *testing.T) {
	for _, target := range []string{"", "-"} {
		var out bytes.Buffer
		e := New(zerolog.Nop(), remoteConfig(), WithStdout(&out))

		require.NoError(t, e.Emit(context.Background(), target, schema))
		require.Equal(t, string(schema), out.String())
	}
}

func TestEmitFileCreatesParents(t *testing.T) {
	target := filepath.Join(t.TempDir(), "prisma", "generated", "schema.prisma")
	e := New(zerolog.Nop(), remoteConfig())

	require.NoError(t, e.Emit(context.Background(), target, schema))

	got, err := os.ReadFile(target)
	require.NoError(t, err)
	require.Equal(t, schema, got)

	info, err := os.Stat(target)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}

func TestEmitFileReplacesAtomically(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "schema.prisma")
	require.NoError(t, os.WriteFile(target, []byte("old"), 0o600))

	e := New(zerolog.Nop(), remoteConfig())
	require.NoError(t, e.Emit(context.Background(), target, schema))

	got, err := os.ReadFile(target)
	require.NoError(t, err)
	require.Equal(t, schema, got)

	info, err := os.Stat(target)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm(), "existing permissions are kept")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "no temporary files are left behind")
}

func TestEmitFileIntoDirectoryFails(t *testing.T) {
	dir := t.TempDir()
	e := New(zerolog.Nop(), remoteConfig())

	err := e.Emit(context.Background(), dir, schema)
	require.Error(t, err)
	require.Contains(t, err.Error(), "is a directory")
}

func TestCheckFile(t *testing.T) {
	target := filepath.Join(t.TempDir(), "schema.prisma")
	e := New(zerolog.Nop(), remoteConfig())
	ctx := context.Background()

	upToDate, err := e.Check(ctx, target, schema)
	require.NoError(t, err)
	require.False(t, upToDate, "missing output is drift")

	require.NoError(t, e.Emit(ctx, target, schema))

	upToDate, err = e.Check(ctx, target, schema)
	require.NoError(t, err)
	require.True(t, upToDate)

	upToDate, err = e.Check(ctx, target, append([]byte("/// changed\n"), schema...))
	require.NoError(t, err)
	require.False(t, upToDate)
}

func TestCheckStdout(t *testing.T) {
	e := New(zerolog.Nop(), remoteConfig())

	_, err := e.Check(context.Background(), "-", schema)
	require.ErrorIs(t, err, ErrCheckStdout)
}

type fakeRemote struct {
	files  map[string][]byte
	closed int
}

func (f *fakeRemote) WriteFile(_ context.Context, remotePath string, content []byte, _ os.FileMode) error {
	f.files[remotePath] = append([]byte(nil), content...)
	return nil
}

func (f *fakeRemote) ReadFile(_ context.Context, remotePath string) ([]byte, error) {
	content, ok := f.files[remotePath]
	if !ok {
		return nil, &ssh.TransportError{Op: "download", Err: os.ErrNotExist}
	}
	return content, nil
}

func (f *fakeRemote) Close() error {
	f.closed++
	return nil
}

func TestEmitRemote(t *testing.T) {
	remote := &fakeRemote{files: map[string][]byte{}}
	var dialed *ssh.Config

	e := New(zerolog.Nop(), config.RemoteConfig{
		PrivateKeyPath:        "/keys/id_ed25519",
		KnownHostsPath:        "/keys/known_hosts",
		StrictHostKeyChecking: true,
		Timeout:               "5s",
	}, WithDialer(func(_ context.Context, cfg *ssh.Config) (RemoteFS, error) {
		dialed = cfg
		return remote, nil
	}))
	ctx := context.Background()
	target := "sftp://deploy@db.internal:2222/srv/app/schema.prisma"

	upToDate, err := e.Check(ctx, target, schema)
	require.NoError(t, err)
	require.False(t, upToDate)

	require.NoError(t, e.Emit(ctx, target, schema))
	require.Equal(t, schema, remote.files["/srv/app/schema.prisma"])

	upToDate, err = e.Check(ctx, target, schema)
	require.NoError(t, err)
	require.True(t, upToDate)

	require.Equal(t, 3, remote.closed)
	require.Equal(t, "db.internal", dialed.Host)
	require.Equal(t, 2222, dialed.Port)
	require.Equal(t, "deploy", dialed.User)
	require.Equal(t, "/keys/id_ed25519", dialed.PrivateKeyPath)
	require.True(t, dialed.StrictHostKeyChecking)
}

func TestEmitRemoteDialFailure(t *testing.T) {
	e := New(zerolog.Nop(), remoteConfig(), WithDialer(func(context.Context, *ssh.Config) (RemoteFS, error) {
		return nil, errors.New("connection refused")
	}))

	err := e.Emit(context.Background(), "sftp://deploy@db.internal/schema.prisma", schema)
	require.Error(t, err)
	require.Contains(t, err.Error(), "connection refused")
}

func TestEmitRemoteBadTarget(t *testing.T) {
	e := New(zerolog.Nop(), remoteConfig())

	err := e.Emit(context.Background(), "sftp://deploy@db.internal", schema)
	require.Error(t, err)
	require.Contains(t, err.Error(), "path is required")
}
