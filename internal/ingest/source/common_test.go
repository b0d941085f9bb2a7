package source

import (
	"strings"
	"testing"
)

func TestBuildSearchURL(t *testing.T) {
	url := buildSearchURL("https://www.indeed.com", "golang developer", "New York, NY", 20)
	if !strings.HasPrefix(url, "https://www.indeed.com/jobs?") {
		t.Fatalf("unexpected url prefix: %s", url)
	}
	for _, part := range []string{"q=golang+developer", "l=New+York%2C+NY", "start=20"} {
		if !strings.Contains(url, part) {
			t.Errorf("url %s missing %s", url, part)
		}
	}
}

func TestBuildSearchURLOmitsEmptyParams(t *testing.T) {
	url := buildSearchURL("https://remoteok.com", "golang", "", 0)
	if strings.Contains(url, "l=") {
		t.Errorf("empty location should be omitted: %s", url)
	}
	if strings.Contains(url, "start=") {
		t.Errorf("zero offset should be omitted: %s", url)
	}
}
