// Package storage keeps uploaded files in S3-compatible object storage.
//
// Inspect reads an upload into memory under a size cap and identifies its
// type from magic bytes, never from the client-supplied name or header.
// NewKey builds collision-free object keys. S3 is the production backend;
// Memory serves local development and tests.
package storage
