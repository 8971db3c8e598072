package storage

import (
	"regexp"
	"strings"
	"testing"
)

func TestObjectKeyShape(t *testing.T) {
	key := ObjectKey("job-42", CategoryFinal, "/tmp/work/final.mp4")

	if !strings.HasPrefix(key, "jobs/job-42/final/") {
		t.Errorf("key = %q, want the jobs/<id>/<category>/ prefix", key)
	}
	// Timestamp suffix keeps re-uploads distinct.
	matched, err := regexp.MatchString(`^jobs/job-42/final/final_\d{8}T\d{6}\.mp4$`, key)
	if err != nil {
		t.Fatal(err)
	}
	if !matched {
		t.Errorf("key = %q does not match the expected pattern", key)
	}
}

func TestObjectKeyStripsDirectories(t *testing.T) {
	key := ObjectKey("j", CategoryAudio, "../../etc/voiceover.mp3")
	if strings.Contains(key, "..") {
		t.Errorf("key %q must not keep path traversal", key)
	}
	if !strings.HasPrefix(key, "jobs/j/audio/voiceover_") {
		t.Errorf("key = %q", key)
	}
}

func TestContentTypeFor(t *testing.T) {
	tests := map[string]string{
		"a.mp4":  "video/mp4",
		"b.MP3":  "audio/mpeg",
		"c.srt":  "text/plain",
		"d.png":  "image/png",
		"e.bin":  "application/octet-stream",
		"f.jpeg": "image/jpeg",
	}
	for path, want := range tests {
		if got := contentTypeFor(path); got != want {
			t.Errorf("contentTypeFor(%q) = %q, want %q", path, got, want)
		}
	}
}
