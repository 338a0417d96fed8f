// Package branding centralizes user-facing product naming so surfaces
// stay consistent.
package branding

// AppName is the product name shown on user-facing surfaces.
const AppName = "Lapel Pin"
