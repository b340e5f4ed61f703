package storage

import (
	"regexp"
	"testing"
)

func TestDocumentKey(t *testing.T) {
	key := DocumentKey("front", 42, "photo.PNG")
	if !regexp.MustCompile(`^cedula-front-42-\d+\.PNG$`).MatchString(key) {
		t.Errorf("Unexpected key %q", key)
	}

	key = DocumentKey("back", 7, "scan.jpeg")
	if !regexp.MustCompile(`^cedula-back-7-\d+\.jpeg$`).MatchString(key) {
		t.Errorf("Unexpected key %q", key)
	}

	// Files without an extension fall back to jpg.
	key = DocumentKey("front", 1, "upload")
	if !regexp.MustCompile(`^cedula-front-1-\d+\.jpg$`).MatchString(key) {
		t.Errorf("Unexpected key %q", key)
	}
}
