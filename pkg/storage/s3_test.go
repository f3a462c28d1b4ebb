package storage

import "testing"

func TestValidateVideoType(t *testing.T) {
	tests := []struct {
		contentType string
		want        bool
	}{
		{"video/mp4", true},
		{"VIDEO/MP4", true},
		{"video/quicktime", true},
		{"video/webm", true},
		{"video/x-msvideo", false},
		{"image/png", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := ValidateVideoType(tt.contentType); got != tt.want {
			t.Errorf("ValidateVideoType(%q) = %v, want %v", tt.contentType, got, tt.want)
		}
	}
}

func TestValidateImageFilename(t *testing.T) {
	tests := []struct {
		filename string
		want     bool
	}{
		{"promo.png", true},
		{"photo.JPG", true},
		{"banner.webp", true},
		{"anim.gif", true},
		{"clip.mp4", false},
		{"noext", false},
	}
	for _, tt := range tests {
		if got := ValidateImageFilename(tt.filename); got != tt.want {
			t.Errorf("ValidateImageFilename(%q) = %v, want %v", tt.filename, got, tt.want)
		}
	}
}

func TestContentTypeForImage(t *testing.T) {
	if got := ContentTypeForImage("a/b/pic.jpeg"); got != "image/jpeg" {
		t.Errorf("ContentTypeForImage(jpeg) = %q", got)
	}
	if got := ContentTypeForImage("file.bin"); got != "application/octet-stream" {
		t.Errorf("ContentTypeForImage(bin) = %q", got)
	}
}

func TestObjectKeys(t *testing.T) {
	if got := VideoKey("w1", "/tmp/session.mp4"); got != "videos/w1/session.mp4" {
		t.Errorf("VideoKey = %q", got)
	}
	if got := ImageKey("w1", "../sneaky.png"); got != "images/w1/sneaky.png" {
		t.Errorf("ImageKey = %q, want base name only", got)
	}
}
