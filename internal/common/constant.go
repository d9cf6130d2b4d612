// Package common contains shared constants, sentinel errors and small helpers
// used across gophterm components.
package common

// AppName is used for the default staging directory and log prefixes.
const AppName = "gophterm"

// BulkURLScheme is the scheme of the logical URL assigned to every staged
// bulk file, e.g. "bulk://6f1c...".
const BulkURLScheme = "bulk"
