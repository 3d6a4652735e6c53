// ABOUTME: Version constants for MeshTime binaries
// ABOUTME: Identifies the product in banners and mDNS advertisements
package version

const (
	Version      = "0.3.0"
	Product      = "MeshTime"
	Manufacturer = "MeshTime Protocol"
)
