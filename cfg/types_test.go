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

	"github.com/stretchr/testify/assert"
)

func TestOctal_UnmarshalText(t *testing.T) {
	var o Octal
	assert.NoError(t, o.UnmarshalText([]byte("644")))
	assert.EqualValues(t, 0o644, o)
}

func TestOctal_UnmarshalText_Invalid(t *testing.T) {
	var o Octal
	assert.Error(t, o.UnmarshalText([]byte("not-octal")))
}

func TestOctal_MarshalText_RoundTrip(t *testing.T) {
	o := Octal(0o755)
	text, err := o.MarshalText()
	assert.NoError(t, err)
	assert.Equal(t, "755", string(text))

	var roundTripped Octal
	assert.NoError(t, roundTripped.UnmarshalText(text))
	assert.Equal(t, o, roundTripped)
}

func TestLogSeverity_UnmarshalText_CaseInsensitive(t *testing.T) {
	var l LogSeverity
	assert.NoError(t, l.UnmarshalText([]byte("warning")))
	assert.Equal(t, WarningLogSeverity, l)
}

func TestLogSeverity_UnmarshalText_Invalid(t *testing.T) {
	var l LogSeverity
	assert.Error(t, l.UnmarshalText([]byte("VERBOSE")))
}

func TestLogSeverity_Rank_Ordering(t *testing.T) {
	assert.Less(t, TraceLogSeverity.Rank(), DebugLogSeverity.Rank())
	assert.Less(t, DebugLogSeverity.Rank(), InfoLogSeverity.Rank())
	assert.Less(t, InfoLogSeverity.Rank(), WarningLogSeverity.Rank())
	assert.Less(t, WarningLogSeverity.Rank(), ErrorLogSeverity.Rank())
	assert.Less(t, ErrorLogSeverity.Rank(), OffLogSeverity.Rank())
}

func TestLogSeverity_Rank_Unknown(t *testing.T) {
	assert.Equal(t, -1, LogSeverity("bogus").Rank())
}
