package videos

import "testing"

func TestChatImageKey(t *testing.T) {
	tests := []struct {
		name    string
		param   string
		wantKey string
		wantOK  bool
	}{
		{"plain key", "/abc-123/promo.png", "images/abc-123/promo.png", true},
		{"no leading slash", "abc-123/promo.png", "images/abc-123/promo.png", true},
		{"empty", "/", "", false},
		{"traversal", "/../videos/secret.mp4", "", false},
		{"embedded traversal", "/a/../../b.png", "", false},
		{"double slash", "/a//b.png", "", false},
		{"bare dotdot", "..", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, ok := chatImageKey(tt.param)
			if ok != tt.wantOK || key != tt.wantKey {
				t.Errorf("chatImageKey(%q) = (%q, %v), want (%q, %v)",
					tt.param, key, ok, tt.wantKey, tt.wantOK)
			}
		})
	}
}
