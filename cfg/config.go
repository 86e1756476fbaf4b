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

package cfg

import (
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config is kubefuse's full runtime configuration, assembled from
// defaults, an optional YAML config file, and command-line flags, in that
// order of increasing precedence (viper's usual layering).
type Config struct {
	Kubernetes KubernetesConfig `yaml:"kubernetes"`
	FileSystem FileSystemConfig `yaml:"file-system"`
	Logging    LoggingConfig    `yaml:"logging"`
	Debug      DebugConfig      `yaml:"debug"`
}

type KubernetesConfig struct {
	Kubeconfig            string  `yaml:"kubeconfig"`
	Context               string  `yaml:"context"`
	InsecureSkipTLSVerify bool    `yaml:"insecure-skip-tls-verify"`
	QPS                   float32 `yaml:"qps"`
	Burst                 int     `yaml:"burst"`
}

type FileSystemConfig struct {
	Uid int `yaml:"uid"`
	Gid int `yaml:"gid"`

	FileMode Octal `yaml:"file-mode"`
	DirMode  Octal `yaml:"dir-mode"`

	DirEntryTTL     time.Duration `yaml:"dir-entry-ttl"`
	RootTTLOverride time.Duration `yaml:"root-ttl-override"`

	// DirectIO defaults to true and is passed through to
	// fs.ServerConfig.DirectIO. Nothing sets a direct-I/O option on the
	// mount or on open replies from it, so it does not change how the
	// kernel caches file reads.
	DirectIO bool `yaml:"direct-io"`
}

type LoggingConfig struct {
	Severity LogSeverity `yaml:"severity"`
	Format   string      `yaml:"format"`
	LogFile  string      `yaml:"log-file"`
}

type DebugConfig struct {
	ExitOnInvariantViolation bool `yaml:"exit-on-invariant-violation"`
}

// BindFlags registers kubefuse's pflag flags on flagSet and binds each
// one into viper, following the teacher's BindFlags-then-viper.Unmarshal
// idiom.
func BindFlags(flagSet *pflag.FlagSet) error {
	flagSet.String("kubeconfig", "", "Path to a kubeconfig file. Defaults to the in-cluster config, then $KUBECONFIG, then ~/.kube/config.")
	if err := viper.BindPFlag("kubernetes.kubeconfig", flagSet.Lookup("kubeconfig")); err != nil {
		return err
	}

	flagSet.String("context", "", "Kubeconfig context to use.")
	if err := viper.BindPFlag("kubernetes.context", flagSet.Lookup("context")); err != nil {
		return err
	}

	flagSet.Bool("insecure-skip-tls-verify", false, "Skip TLS certificate verification when talking to the API server.")
	if err := viper.BindPFlag("kubernetes.insecure-skip-tls-verify", flagSet.Lookup("insecure-skip-tls-verify")); err != nil {
		return err
	}

	flagSet.Float32("qps", 0, "Client-side rate limit, queries per second. 0 uses client-go's default.")
	if err := viper.BindPFlag("kubernetes.qps", flagSet.Lookup("qps")); err != nil {
		return err
	}

	flagSet.Int("burst", 0, "Client-side rate limit burst. 0 uses client-go's default.")
	if err := viper.BindPFlag("kubernetes.burst", flagSet.Lookup("burst")); err != nil {
		return err
	}

	flagSet.Int("uid", -1, "UID owner of all inodes. -1 uses the invoking process's own uid.")
	if err := viper.BindPFlag("file-system.uid", flagSet.Lookup("uid")); err != nil {
		return err
	}

	flagSet.Int("gid", -1, "GID owner of all inodes. -1 uses the invoking process's own gid.")
	if err := viper.BindPFlag("file-system.gid", flagSet.Lookup("gid")); err != nil {
		return err
	}

	flagSet.Int("file-mode", int(DefaultFileMode), "Permission bits for object files, as an integer: plain digits are decimal, a leading 0 marks octal (e.g. 0444).")
	if err := viper.BindPFlag("file-system.file-mode", flagSet.Lookup("file-mode")); err != nil {
		return err
	}

	flagSet.Int("dir-mode", int(DefaultDirMode), "Permission bits for directories, as an integer: plain digits are decimal, a leading 0 marks octal (e.g. 0555).")
	if err := viper.BindPFlag("file-system.dir-mode", flagSet.Lookup("dir-mode")); err != nil {
		return err
	}

	flagSet.Duration("dir-entry-ttl", DefaultDirEntryTTL, "Kernel attribute/entry cache TTL for dynamic directories and files.")
	if err := viper.BindPFlag("file-system.dir-entry-ttl", flagSet.Lookup("dir-entry-ttl")); err != nil {
		return err
	}

	flagSet.Bool("direct-io", true, "Direct-I/O setting carried in the config; not applied to the mount or to opened files.")
	if err := viper.BindPFlag("file-system.direct-io", flagSet.Lookup("direct-io")); err != nil {
		return err
	}

	flagSet.String("log-severity", string(InfoLogSeverity), "Logging severity: TRACE, DEBUG, INFO, WARNING, ERROR, OFF.")
	if err := viper.BindPFlag("logging.severity", flagSet.Lookup("log-severity")); err != nil {
		return err
	}

	flagSet.String("log-format", "text", "Logging output format: text or json.")
	if err := viper.BindPFlag("logging.format", flagSet.Lookup("log-format")); err != nil {
		return err
	}

	flagSet.String("log-file", "", "Path to write logs to. Empty logs to stderr.")
	if err := viper.BindPFlag("logging.log-file", flagSet.Lookup("log-file")); err != nil {
		return err
	}

	flagSet.Bool("debug_invariants", false, "Panic instead of logging when an internal invariant is violated.")
	if err := viper.BindPFlag("debug.exit-on-invariant-violation", flagSet.Lookup("debug_invariants")); err != nil {
		return err
	}

	return nil
}
