package blob

import "context"

// Object is a blob to be stored, with the metadata needed to serve it back.
type Object struct {
	Bucket      string // logical grouping, e.g. "payment-slips"
	Name        string // object name within the bucket
	ContentType string
	Data        []byte
}

// StoredObject describes a persisted blob.
type StoredObject struct {
	Name string
	URL  string // public URL the object is served from
	Size int
}

// Store persists opaque blobs and returns public URLs for them.
// Registrations reference slips by URL only; blobs are never modeled further.
type Store interface {
	Put(ctx context.Context, obj Object) (StoredObject, error)
}
