/*
SPDX-License-Identifier: Apache-2.0

Copyright 2024 The HAPI Table Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    https://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetLevel(t *testing.T) {
	for in, want := range map[string]logrus.Level{
		"":      logrus.InfoLevel,
		"DEBUG": logrus.DebugLevel,
		"warn":  logrus.WarnLevel,
		"error": logrus.ErrorLevel,
	} {
		got, err := GetLevel(in)
		require.NoError(t, err)
		assert.Equal(t, want, got, "level %q", in)
	}
	_, err := GetLevel("verbose")
	assert.Error(t, err)
}

func TestConfigureJSON(t *testing.T) {
	var buf bytes.Buffer
	l, err := Configure(&buf, "info", "json")
	require.NoError(t, err)
	defer l.SetOutput(&bytes.Buffer{})

	l.WithField("table", "datasets").Info("loaded")
	l.Debug("hidden")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "loaded", entry["msg"])
	assert.Equal(t, "datasets", entry["table"])
}
