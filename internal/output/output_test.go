// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package output

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestJSONEncodesWithoutError(t *testing.T) {
	require.NoError(t, JSON(map[string]any{"ok": true}))
}
