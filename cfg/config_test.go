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
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// bindFreshFlags resets viper's global state and binds a fresh flag set,
// mirroring what cmd's init() does once per process.
func bindFreshFlags(t *testing.T) *pflag.FlagSet {
	t.Helper()
	viper.Reset()
	flagSet := pflag.NewFlagSet("kubefuse", pflag.ContinueOnError)
	require.NoError(t, BindFlags(flagSet))
	return flagSet
}

func TestBindFlags_DefaultsUnmarshalCleanly(t *testing.T) {
	flagSet := bindFreshFlags(t)
	require.NoError(t, flagSet.Parse(nil))

	var cfg Config
	require.NoError(t, viper.Unmarshal(&cfg, viper.DecodeHook(DecodeHook())))

	assert.Equal(t, DefaultFileMode, cfg.FileSystem.FileMode)
	assert.Equal(t, DefaultDirMode, cfg.FileSystem.DirMode)
	assert.Equal(t, DefaultDirEntryTTL, cfg.FileSystem.DirEntryTTL)
	assert.Equal(t, InfoLogSeverity, cfg.Logging.Severity)
	assert.Equal(t, -1, cfg.FileSystem.Uid)
	assert.True(t, cfg.FileSystem.DirectIO)
}

func TestBindFlags_OverridesFromArgs(t *testing.T) {
	flagSet := bindFreshFlags(t)
	require.NoError(t, flagSet.Parse([]string{
		"--file-mode=600",
		"--dir-entry-ttl=30s",
		"--log-severity=debug",
		"--uid=42",
	}))

	var cfg Config
	require.NoError(t, viper.Unmarshal(&cfg, viper.DecodeHook(DecodeHook())))

	// file-mode is bound as a decimal int flag (see BindFlags); the digits
	// typed on the command line land in Octal verbatim, unlike the YAML
	// path which goes through Octal.UnmarshalText.
	assert.EqualValues(t, 600, cfg.FileSystem.FileMode)
	assert.Equal(t, 30*time.Second, cfg.FileSystem.DirEntryTTL)
	assert.Equal(t, DebugLogSeverity, cfg.Logging.Severity)
	assert.Equal(t, 42, cfg.FileSystem.Uid)
}

func TestBindFlags_InvalidLogSeverityFailsDecode(t *testing.T) {
	flagSet := bindFreshFlags(t)
	require.NoError(t, flagSet.Parse([]string{"--log-severity=verbose"}))

	var cfg Config
	err := viper.Unmarshal(&cfg, viper.DecodeHook(DecodeHook()))
	assert.Error(t, err)
}
