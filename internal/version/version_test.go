// ABOUTME: Tests for version constants
// ABOUTME: Pins the identity strings used by banners and mDNS advertisements
package version

import (
	"strings"
	"testing"
)

func TestIdentityConstants(t *testing.T) {
	if Product != "MeshTime" {
		t.Errorf("expected product MeshTime, got %q", Product)
	}
	if Manufacturer != "MeshTime Protocol" {
		t.Errorf("expected manufacturer MeshTime Protocol, got %q", Manufacturer)
	}
}

func TestVersionIsSemver(t *testing.T) {
	parts := strings.Split(Version, ".")
	if len(parts) != 3 {
		t.Fatalf("expected a major.minor.patch version, got %q", Version)
	}
	for _, part := range parts {
		if part == "" {
			t.Errorf("empty component in version %q", Version)
		}
	}
}
