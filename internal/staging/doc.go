// Package staging keeps bulk transfer payloads on disk, encrypted with a
// per-file key, while they are being received and read back.
//
// A File has exactly one writer and any number of tailing Readers. The
// writer appends through Write and ends with SetSuccess; readers may start at
// any time and see bytes in write order, never past the committed size.
//
//	              Write ...            SetSuccess(true)
//	DOWNLOADING ───────────► DOWNLOADING ───────────────► COMPLETED
//	                                     └── SetSuccess(false) ─► FAILED
//
// A File never deletes its backing file. The Store does that once the
// reference count of a finished file drops back to zero.
package staging
