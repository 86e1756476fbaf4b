// Copyright 2024 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/jacobsa/fuse"
	"github.com/jacobsa/timeutil"

	"github.com/kubefuse/kubefuse/cfg"
	"github.com/kubefuse/kubefuse/common"
	"github.com/kubefuse/kubefuse/internal/cluster"
	"github.com/kubefuse/kubefuse/internal/fs"
	"github.com/kubefuse/kubefuse/internal/kinds"
	"github.com/kubefuse/kubefuse/internal/logger"
	"github.com/kubefuse/kubefuse/internal/mountsession"
	"github.com/kubefuse/kubefuse/internal/perms"
)

// mount dials the cluster, builds the filesystem server, mounts it at
// mountPoint, and blocks until it is unmounted or the process receives an
// interrupt.
func mount(ctx context.Context, newConfig *cfg.Config, mountPoint string) error {
	logger.Init(logger.Severity(newConfig.Logging.Severity), newConfig.Logging.Format, logFileWriter(newConfig.Logging.LogFile))

	logger.Infof("dialing cluster...")
	client, err := cluster.DialK8s(cluster.Config{
		Kubeconfig:            newConfig.Kubernetes.Kubeconfig,
		Context:               newConfig.Kubernetes.Context,
		InsecureSkipTLSVerify: newConfig.Kubernetes.InsecureSkipTLSVerify,
		QPS:                   newConfig.Kubernetes.QPS,
		Burst:                 newConfig.Kubernetes.Burst,
	})
	if err != nil {
		return fmt.Errorf("dialing cluster: %w", err)
	}

	uid, gid, err := perms.MyUserAndGroup()
	if err != nil {
		return fmt.Errorf("MyUserAndGroup: %w", err)
	}

	if uid == 0 && newConfig.FileSystem.Uid < 0 {
		fmt.Fprintln(os.Stdout, `
WARNING: kubefuse invoked as root. This will cause all files to be owned by
root. If this is not what you intended, invoke kubefuse as the user that will
be interacting with the file system.`)
	}

	if newConfig.FileSystem.Uid >= 0 {
		uid = uint32(newConfig.FileSystem.Uid)
	}
	if newConfig.FileSystem.Gid >= 0 {
		gid = uint32(newConfig.FileSystem.Gid)
	}

	rootTTL := newConfig.FileSystem.RootTTLOverride
	if rootTTL == 0 {
		rootTTL = cfg.DefaultRootTTL
	}

	serverCfg := &fs.ServerConfig{
		Client:                   client,
		Kinds:                    kinds.NewDefaultTable(),
		Clock:                    timeutil.RealClock(),
		Uid:                      uid,
		Gid:                      gid,
		FileMode:                 os.FileMode(newConfig.FileSystem.FileMode),
		DirMode:                  os.FileMode(newConfig.FileSystem.DirMode),
		DirEntryTTL:              newConfig.FileSystem.DirEntryTTL,
		RootTTL:                  rootTTL,
		DirectIO:                 newConfig.FileSystem.DirectIO,
		ExitOnInvariantViolation: newConfig.Debug.ExitOnInvariantViolation,
	}

	logger.Infof("creating filesystem server...")
	server, err := fs.NewServer(serverCfg)
	if err != nil {
		return fmt.Errorf("fs.NewServer: %w", err)
	}

	mountCfg := getFuseMountConfig(newConfig)

	logger.Infof("mounting at %q...", mountPoint)
	session, err := mountsession.Mount(mountPoint, server, mountCfg)
	if err != nil {
		return fmt.Errorf("mount: %w", err)
	}

	shutdown := common.JoinShutdownFunc(
		func(context.Context) error { return session.Unmount() },
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Infof("received interrupt, unmounting...")
		if err := shutdown(context.Background()); err != nil {
			logger.Errorf("unmount: %v", err)
		}
	}()

	return session.Wait()
}

func getFuseMountConfig(newConfig *cfg.Config) *fuse.MountConfig {
	mountCfg := &fuse.MountConfig{
		FSName:     "kubefuse",
		Subtype:    "kubefuse",
		VolumeName: "kubefuse",
		// A cluster listing never mutates another directory's contents as a
		// side effect, so concurrent lookups and readdirs are always safe.
		EnableParallelDirOps: true,
	}

	if newConfig.Logging.Severity.Rank() <= cfg.ErrorLogSeverity.Rank() {
		mountCfg.ErrorLogger = logger.NewStdLogger(logger.SeverityError, "fuse: ")
	}
	if newConfig.Logging.Severity.Rank() <= cfg.TraceLogSeverity.Rank() {
		mountCfg.DebugLogger = logger.NewStdLogger(logger.SeverityTrace, "fuse_debug: ")
	}

	return mountCfg
}

// logFileWriter opens the configured log file, falling back to stderr (via
// a nil writer, which logger.Init interprets as os.Stderr) if none is set.
func logFileWriter(path string) io.Writer {
	if path == "" {
		return nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "opening log file %q: %v\n", path, err)
		return nil
	}
	return f
}
