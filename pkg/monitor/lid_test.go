package monitor

import "testing"

func TestLidStateString(t *testing.T) {
	if got := LidOpen.String(); got != "open" {
		t.Errorf("LidOpen.String() = %q", got)
	}
	if got := LidClosed.String(); got != "closed" {
		t.Errorf("LidClosed.String() = %q", got)
	}
}

func TestParseACPILidState(t *testing.T) {
	tests := []struct {
		name    string
		content string
		state   LidState
		ok      bool
	}{
		{"open", "state:      open\n", LidOpen, true},
		{"closed", "state:      closed\n", LidClosed, true},
		{"bare closed", "closed", LidClosed, true},
		{"garbage", "state:      unknown\n", LidOpen, false},
		{"empty", "", LidOpen, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs, root := newFakeFS(t)
			writeAttr(t, root, "proc/acpi/button/lid/LID0/state", tt.content)

			state, ok := parseACPILidState(fs, "/proc/acpi/button/lid/LID0/state")
			if state != tt.state || ok != tt.ok {
				t.Errorf("parseACPILidState(%q) = %v, %v; want %v, %v",
					tt.content, state, ok, tt.state, tt.ok)
			}
		})
	}
}

func TestParseACPILidStateMissingFile(t *testing.T) {
	fs, _ := newFakeFS(t)
	if _, ok := parseACPILidState(fs, "/proc/acpi/button/lid/LID0/state"); ok {
		t.Error("parseACPILidState() reported ok for a missing file")
	}
}

func TestLidReaderACPI(t *testing.T) {
	fs, root := newFakeFS(t)
	writeAttr(t, root, "proc/acpi/button/lid/LID0/state", "state:      closed\n")

	r := NewLidReader(fs, true)
	if got := r.State(); got != LidClosed {
		t.Errorf("State() = %v, want closed", got)
	}

	writeAttr(t, root, "proc/acpi/button/lid/LID0/state", "state:      open\n")
	if got := r.State(); got != LidOpen {
		t.Errorf("State() after reopen = %v, want open", got)
	}
}

func TestLidReaderACPIVariantName(t *testing.T) {
	fs, root := newFakeFS(t)
	// Firmware-specific directory name not in the preferred list; found by glob.
	writeAttr(t, root, "proc/acpi/button/lid/LID1/state", "state:      closed\n")

	r := NewLidReader(fs, true)
	if got := r.State(); got != LidClosed {
		t.Errorf("State() = %v, want closed via glob fallback", got)
	}
}

func TestLidReaderACPIDisabled(t *testing.T) {
	fs, root := newFakeFS(t)
	writeAttr(t, root, "proc/acpi/button/lid/LID0/state", "state:      closed\n")

	r := NewLidReader(fs, false)
	if got := r.State(); got != LidOpen {
		t.Errorf("State() with ACPI disabled = %v, want fail-safe open", got)
	}
}

func TestLidReaderNoSource(t *testing.T) {
	fs, _ := newFakeFS(t)

	r := NewLidReader(fs, true)
	if got := r.State(); got != LidOpen {
		t.Errorf("State() with no source = %v, want fail-safe open", got)
	}
}
