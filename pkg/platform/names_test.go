// SPDX-License-Identifier: MPL-2.0

package platform

import "testing"

func TestIsWindowsReservedName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		want bool
	}{
		{"CON", true},
		{"con", true},
		{"nul.txt", true},
		{"LPT9", true},
		{"COM10", false},
		{"console", false},
		{"UnityMcpServer", false},
	}

	for _, tt := range tests {
		if got := IsWindowsReservedName(tt.name); got != tt.want {
			t.Errorf("IsWindowsReservedName(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestIsPortableFolderName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		want bool
	}{
		{"mooresUnityMCP", true},
		{"UnityMcpServer", true},
		{"server-v2", true},
		{"", false},
		{".", false},
		{"..", false},
		{"a/b", false},
		{`a\b`, false},
		{"c:", false},
		{"trailing.", false},
		{"trailing ", false},
		{"aux", false},
	}

	for _, tt := range tests {
		if got := IsPortableFolderName(tt.name); got != tt.want {
			t.Errorf("IsPortableFolderName(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}
