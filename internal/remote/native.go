package remote

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
	"golang.org/x/crypto/ssh/knownhosts"
)

// NativeRunner executes remote commands over a direct crypto/ssh
// connection instead of shelling out to the ssh binary. One connection is
// dialed per process and reused for every command and for sftp transfers.
type NativeRunner struct {
	client *ssh.Client
}

// DialNative connects to host, given as user@host[:port]. The user
// defaults to the current user and the port to 22. Authentication tries
// the SSH agent first, then the default key files; the host key is
// verified against ~/.ssh/known_hosts.
//
// Unlike ExecRunner, ssh config aliases are not resolved here, so the
// configured host must be a real hostname or address.
func DialNative(host string) (*NativeRunner, error) {
	username, addr := splitHostAddr(host)

	auth := authMethods()
	if len(auth) == 0 {
		return nil, fmt.Errorf("no usable SSH auth for %s: no agent and no default keys", addr)
	}

	hostKeyCallback, err := knownHostsCallback()
	if err != nil {
		return nil, err
	}

	client, err := ssh.Dial("tcp", addr, &ssh.ClientConfig{
		User:            username,
		Auth:            auth,
		HostKeyCallback: hostKeyCallback,
	})
	if err != nil {
		return nil, fmt.Errorf("ssh dial %s: %w", addr, err)
	}
	return &NativeRunner{client: client}, nil
}

// Execute runs command in a fresh session on the shared connection.
func (r *NativeRunner) Execute(ctx context.Context, command string) (string, error) {
	session, err := r.client.NewSession()
	if err != nil {
		return "", fmt.Errorf("ssh session: %w", err)
	}
	defer session.Close()

	var stdout, stderr bytes.Buffer
	session.Stdout = &stdout
	session.Stderr = &stderr

	if err := session.Run(command); err != nil {
		return "", &CommandError{Command: command, Stderr: stderr.String(), Err: err}
	}
	return stdout.String(), nil
}

// Client exposes the underlying connection so the sftp transfer strategy
// can reuse it.
func (r *NativeRunner) Client() *ssh.Client { return r.client }

func (r *NativeRunner) Close() error { return r.client.Close() }

// splitHostAddr splits user@host[:port] into the SSH username and the dial
// address, filling in the current user and port 22 where omitted.
func splitHostAddr(host string) (string, string) {
	var username string
	if at := strings.Index(host, "@"); at >= 0 {
		username = host[:at]
		host = host[at+1:]
	}
	if username == "" {
		if u, err := user.Current(); err == nil {
			username = u.Username
		}
	}
	if !strings.Contains(host, ":") {
		host = net.JoinHostPort(host, "22")
	}
	return username, host
}

// authMethods assembles the non-interactive auth chain: agent identities
// first, then any parseable default key files.
func authMethods() []ssh.AuthMethod {
	var methods []ssh.AuthMethod

	if sock := os.Getenv("SSH_AUTH_SOCK"); sock != "" {
		if conn, err := net.Dial("unix", sock); err == nil {
			methods = append(methods, ssh.PublicKeysCallback(agent.NewClient(conn).Signers))
		}
	}

	for _, keyPath := range defaultKeyPaths() {
		key, err := os.ReadFile(keyPath)
		if err != nil {
			continue
		}
		// Passphrase-protected keys are skipped; use the agent for those.
		signer, err := ssh.ParsePrivateKey(key)
		if err != nil {
			continue
		}
		methods = append(methods, ssh.PublicKeys(signer))
	}

	return methods
}

func defaultKeyPaths() []string {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	return []string{
		filepath.Join(home, ".ssh", "id_ed25519"),
		filepath.Join(home, ".ssh", "id_rsa"),
	}
}

func knownHostsCallback() (ssh.HostKeyCallback, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	callback, err := knownhosts.New(filepath.Join(home, ".ssh", "known_hosts"))
	if err != nil {
		return nil, fmt.Errorf("load known_hosts: %w", err)
	}
	return callback, nil
}
