package orchestrators

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"regdesk/internal/adapters/blob"
	"regdesk/internal/domain/slip"
)

// UploadSlipInput carries a standalone payment-slip upload.
type UploadSlipInput struct {
	FileName    string
	ContentType string
	DataURI     string
	// Raw holds already-decoded bytes from a multipart upload. When set,
	// DataURI is ignored.
	Raw []byte
}

// UploadSlipDeps holds dependencies for ExecuteUploadSlip.
type UploadSlipDeps struct {
	BlobStore BlobStore
}

// ExecuteUploadSlip validates a payment slip and stores it, returning the
// stored object so callers can hand the URL back to the client.
// PRE: Exactly one of input.DataURI or input.Raw is populated
// POST: Slip stored under a collision-free name, or ErrValidation / a storage error
func ExecuteUploadSlip(ctx context.Context, input UploadSlipInput, deps UploadSlipDeps) (blob.StoredObject, error) {
	if deps.BlobStore == nil {
		return blob.StoredObject{}, errors.New("payment slip upload is not configured")
	}

	fileName := input.FileName
	if fileName == "" {
		fileName = "payment-slip"
	}

	var parsed slip.Slip
	if len(input.Raw) > 0 {
		if !slip.AllowedType(input.ContentType) {
			return blob.StoredObject{}, fmt.Errorf("%w: %v", ErrValidation, slip.ErrUnsupportedType)
		}
		if len(input.Raw) > slip.MaxSizeBytes {
			return blob.StoredObject{}, fmt.Errorf("%w: %v", ErrValidation, slip.ErrTooLarge)
		}
		parsed = slip.Slip{FileName: fileName, ContentType: input.ContentType, Data: input.Raw}
	} else {
		var err error
		parsed, err = slip.ParseDataURI(input.DataURI, fileName, input.ContentType)
		if err != nil {
			return blob.StoredObject{}, fmt.Errorf("%w: %v", ErrValidation, err)
		}
	}

	stored, err := deps.BlobStore.Put(ctx, blob.Object{
		Bucket:      "payment-slips",
		Name:        uuid.NewString() + slip.Extension(parsed.ContentType),
		ContentType: parsed.ContentType,
		Data:        parsed.Data,
	})
	if err != nil {
		return blob.StoredObject{}, fmt.Errorf("failed to store payment slip: %w", err)
	}
	return stored, nil
}
