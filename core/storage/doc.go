// Package storage provides object storage connectivity for published
// artifacts (normalized data tree, CDN manifest) and mirrored images.
//
// It wraps the Minio S3-compatible client behind a small Client interface so
// features can be tested against the mock in storage/mocks without a live
// bucket.
//
// # Operations
//
//   - BucketExists / MakeBucket: deployment bootstrap (see EnsureBucket)
//   - PutObject: artifact publish and image mirror uploads
//   - ListObjects: single-pass listing used to skip already-mirrored images
//
// All operations take a context; the underlying HTTP transport carries strict
// connection timeouts from Config.
package storage
