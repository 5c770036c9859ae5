// Package blogstat provides a scraping service that measures blog posts and
// resolves people to LinkedIn profile URLs.
// It renders pages in a headless browser, locates the block holding the
// article text, counts its words, and rebuilds the heading outline.
//
// This package contains domain types, interfaces and the pure algorithms
// following Ben Johnson's Standard Package Layout. Implementations live in
// subdirectories named after their primary dependency (e.g., rod/, goquery/).
package blogstat
