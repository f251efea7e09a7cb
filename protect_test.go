package excelstream

import (
	"strings"
	"testing"
)

func TestLegacyPasswordHash(t *testing.T) {
	tests := []struct {
		password string
		want     uint16
	}{
		{"password", 0x83AF},
		{"A", 0xCEC8},
		{"abc", 0xCC1A},
		{"OpenSesame", 0xCF75},
		{"excel123", 0xE1E1},
		{"", 0xCE4B},
	}
	for _, tt := range tests {
		if got := LegacyPasswordHash(tt.password); got != tt.want {
			t.Errorf("LegacyPasswordHash(%q) = %04X, want %04X", tt.password, got, tt.want)
		}
	}
}

func TestProtectionXML(t *testing.T) {
	opts := ProtectionOptions{
		Password:               "password",
		AllowSelectLockedCells: true,
		AllowSort:              true,
	}
	got := string(opts.appendXML(nil))

	if !strings.HasPrefix(got, `<sheetProtection sheet="1"`) {
		t.Errorf("Unexpected prefix: %s", got)
	}
	if !strings.Contains(got, `password="83AF"`) {
		t.Errorf("Expected hashed password attribute, got %s", got)
	}
	if !strings.Contains(got, `selectLockedCells="0"`) {
		t.Errorf("Expected allowed action serialised as 0, got %s", got)
	}
	if !strings.Contains(got, `sort="0"`) {
		t.Errorf("Expected sort attribute, got %s", got)
	}
	if strings.Contains(got, `formatCells`) {
		t.Errorf("Blocked actions must not appear, got %s", got)
	}
}

func TestProtectionXMLNoPassword(t *testing.T) {
	opts := ProtectionOptions{}
	got := string(opts.appendXML(nil))
	if got != `<sheetProtection sheet="1"/>` {
		t.Errorf("Unexpected XML: %s", got)
	}
}
