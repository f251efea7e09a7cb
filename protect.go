package excelstream

import "fmt"

// ProtectionOptions configures a worksheet's protection element. Each Allow
// field names an action that remains permitted while the sheet is locked;
// actions left false are blocked by the consumer.
type ProtectionOptions struct {
	// Password, when non-empty, is hashed with the legacy 16-bit algorithm
	// and written to the password attribute.
	Password string

	AllowSelectLockedCells   bool
	AllowSelectUnlockedCells bool
	AllowFormatCells         bool
	AllowFormatColumns       bool
	AllowFormatRows          bool
	AllowInsertColumns       bool
	AllowInsertRows          bool
	AllowDeleteColumns       bool
	AllowDeleteRows          bool
	AllowSort                bool
	AllowAutoFilter          bool
}

// LegacyPasswordHash implements the 16-bit password hash used by the
// sheetProtection password attribute (ECMA-376 part 4, inherited from the
// BIFF format): fold the characters in reverse order through a 15-bit
// rotate-and-xor, then mix in the length and the constant 0xCE4B.
func LegacyPasswordHash(password string) uint16 {
	var hash uint16
	b := []byte(password)
	for i := len(b) - 1; i >= 0; i-- {
		hash = ((hash >> 14) & 0x01) | ((hash << 1) & 0x7fff)
		hash ^= uint16(b[i])
	}
	hash = ((hash >> 14) & 0x01) | ((hash << 1) & 0x7fff)
	hash ^= uint16(len(b))
	hash ^= 0xCE4B
	return hash
}

// appendXML renders the sheetProtection element. Allowed actions are
// serialised as attribute="0": in the schema a protection attribute defaults
// to blocked, and 0 re-enables the action.
func (p *ProtectionOptions) appendXML(buf []byte) []byte {
	buf = append(buf, `<sheetProtection sheet="1"`...)
	if p.Password != "" {
		buf = append(buf, ` password="`...)
		buf = append(buf, fmt.Sprintf("%04X", LegacyPasswordHash(p.Password))...)
		buf = append(buf, '"')
	}
	flags := []struct {
		name  string
		allow bool
	}{
		{"selectLockedCells", p.AllowSelectLockedCells},
		{"selectUnlockedCells", p.AllowSelectUnlockedCells},
		{"formatCells", p.AllowFormatCells},
		{"formatColumns", p.AllowFormatColumns},
		{"formatRows", p.AllowFormatRows},
		{"insertColumns", p.AllowInsertColumns},
		{"insertRows", p.AllowInsertRows},
		{"deleteColumns", p.AllowDeleteColumns},
		{"deleteRows", p.AllowDeleteRows},
		{"sort", p.AllowSort},
		{"autoFilter", p.AllowAutoFilter},
	}
	for _, f := range flags {
		if f.allow {
			buf = append(buf, ' ')
			buf = append(buf, f.name...)
			buf = append(buf, `="0"`...)
		}
	}
	return append(buf, `/>`...)
}
