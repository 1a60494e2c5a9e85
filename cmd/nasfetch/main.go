// Package main implements nasfetch, an interactive NAS browser and
// downloader driven by ssh, fzf, and rsync/scp.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/taigrr/nasfetch/internal/browse"
	"github.com/taigrr/nasfetch/internal/config"
	"github.com/taigrr/nasfetch/internal/picker"
	"github.com/taigrr/nasfetch/internal/remote"
	"github.com/taigrr/nasfetch/internal/transfer"
)

var flags struct {
	configPath string
	host       string
	root       string
	dest       string
	rsync      bool
	nativeSSH  bool
	verbose    bool
}

func main() {
	cmd := &cobra.Command{
		Use:   "nasfetch",
		Short: "Browse a NAS over SSH and download files with fzf",
		Long: `nasfetch opens an fzf picker on a remote directory tree reached over
SSH. Enter descends into a directory or downloads a file, Ctrl-D
downloads a whole directory, and Esc quits. Downloads run through rsync
(resumable) or scp, into a configurable local destination.`,
		Example: `  nasfetch
  nasfetch --host mynas --root /srv/media --dest ~/incoming
  nasfetch --rsync=false`,
		Args: cobra.NoArgs,
		RunE: runBrowse,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "config file (default ~/.config/nasfetch/config.yaml)")
	pf.StringVar(&flags.host, "host", "", "NAS host: ssh config alias or user@host")
	pf.StringVar(&flags.root, "root", "", "remote directory to start browsing in")
	pf.StringVar(&flags.dest, "dest", "", "local download destination")
	pf.BoolVar(&flags.rsync, "rsync", true, "download with rsync instead of scp")
	pf.BoolVar(&flags.nativeSSH, "native-ssh", false, "use the built-in SSH client instead of the ssh binary")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "log executed commands to stderr")

	cmd.AddCommand(newMCPCommand())

	if err := fang.Execute(
		context.Background(),
		cmd,
		fang.WithVersion(version),
		fang.WithoutCompletions(),
		fang.WithoutManpage(),
	); err != nil {
		os.Exit(1)
	}
}

// loadConfig overlays the config file on the defaults, then the
// command-line flags on top of that.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path := flags.configPath
	if path == "" {
		path = config.Path()
	}

	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}

	if flags.host != "" {
		cfg.NASHost = flags.host
	}
	if flags.root != "" {
		cfg.RemoteRoot = flags.root
	}
	if flags.dest != "" {
		cfg.LocalDest = flags.dest
	}
	if cmd.Flags().Changed("rsync") {
		cfg.UseRsync = flags.rsync
	}
	if cmd.Flags().Changed("native-ssh") {
		cfg.NativeSSH = flags.nativeSSH
	}
	if flags.verbose {
		cfg.Verbose = true
	}

	if err := cfg.Finalize(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func setupLogging(verbose bool) {
	if verbose {
		log.SetFlags(log.Ltime)
		return
	}
	log.SetOutput(io.Discard)
}

// newRunner picks the remote execution path. In native mode the returned
// NativeRunner is non-nil and owns a live connection the caller must
// close; otherwise the ssh binary is used per command.
func newRunner(cfg config.Config) (remote.Runner, *remote.NativeRunner, error) {
	if cfg.NativeSSH {
		native, err := remote.DialNative(cfg.NASHost)
		if err != nil {
			return nil, nil, err
		}
		return native, native, nil
	}
	return remote.NewExecRunner(cfg.NASHost), nil, nil
}

// download routes the request to the configured strategy: rsync when
// enabled, sftp over the existing native connection, or scp.
func download(cfg config.Config, native *remote.NativeRunner, req transfer.Request) error {
	if !cfg.UseRsync && native != nil {
		s, err := transfer.NewSFTP(native.Client())
		if err != nil {
			return err
		}
		defer s.Close()
		return s.Download(req)
	}

	d := &transfer.Dispatcher{Host: cfg.NASHost, UseRsync: cfg.UseRsync}
	return d.Download(req)
}

func runBrowse(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	setupLogging(cfg.Verbose)

	runner, native, err := newRunner(cfg)
	if err != nil {
		return err
	}
	if native != nil {
		defer native.Close()
	}

	session := browse.NewSession(cfg.RemoteRoot)
	decision, err := browse.Run(cmd.Context(), remote.NewLister(runner), picker.NewFzf(), session)
	if err != nil {
		return err
	}

	switch decision.Action {
	case browse.ActionCancel:
		fmt.Println("No selection, exiting.")
		return nil
	case browse.ActionDownloadFile:
		fmt.Printf("⬇ Downloading file: %s\n", decision.Path)
	case browse.ActionDownloadDir:
		fmt.Printf("⬇ Downloading directory: %s\n", decision.Path)
	}

	req := transfer.Request{
		RemotePath: decision.Path,
		LocalDest:  cfg.LocalDest,
		Dir:        decision.Action == browse.ActionDownloadDir,
	}
	if err := download(cfg, native, req); err != nil {
		return err
	}

	fmt.Println("✅ Done.")
	return nil
}
