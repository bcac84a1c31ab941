// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the records and configuration shared by the
// prospectus pipeline stages: raw and expanded course records, the parser
// grammar, and the store, timeout and logging settings.
package types
