package settings

import "testing"

func TestMaskKey(t *testing.T) {
	tests := []struct {
		name string
		key  string
		want string
	}{
		{"empty", "", ""},
		{"short fully starred", "abc", "***"},
		{"twelve chars fully starred", "123456789012", "************"},
		{"thirteen chars partially shown", "1234567890123", "12345678*0123"},
		{"typical key", "sk-ant-REDACTED", "sk-ant-a**********************rial"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MaskKey(tt.key); got != tt.want {
				t.Errorf("MaskKey(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestProviderUpdatesEmpty(t *testing.T) {
	if !(ProviderUpdates{}).Empty() {
		t.Error("zero-value updates should be empty")
	}
	model := "gpt-4o"
	if (ProviderUpdates{Model: &model}).Empty() {
		t.Error("updates with a field set should not be empty")
	}
}
