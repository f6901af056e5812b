package lookup

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"sync"

	"gocloud.dev/blob"
)

// lookupExtensions are the reference-table encodings a BlobLookerUpper
// knows how to hand off to its append functions.
var lookupExtensions = map[string]bool{
	".csv":     true,
	".geojson": true,
	".json":    true,
}

// BlobLookerUpper reads reference-table documents out of a
// gocloud.dev/blob.Bucket instance.
type BlobLookerUpper struct {
	LookerUpper
	bucket *blob.Bucket
}

func NewBlobLookerUpper(ctx context.Context, uri string) (LookerUpper, error) {

	bucket, err := blob.OpenBucket(ctx, uri)

	if err != nil {
		return nil, err
	}

	return NewBlobLookerUpperWithBucket(ctx, bucket)
}

func NewBlobLookerUpperWithBucket(ctx context.Context, bucket *blob.Bucket) (LookerUpper, error) {

	l := &BlobLookerUpper{
		bucket: bucket,
	}

	return l, nil
}

func (l *BlobLookerUpper) Append(ctx context.Context, lu *sync.Map, append_funcs ...AppendLookupFunc) error {

	bucket_iter := l.bucket.List(nil)

	for {
		obj, err := bucket_iter.Next(ctx)

		if err == io.EOF {
			break
		}

		if err != nil {
			return err
		}

		if !lookupExtensions[filepath.Ext(obj.Key)] {
			continue
		}

		fh, err := l.bucket.NewReader(ctx, obj.Key, nil)

		if err != nil {
			return err
		}

		defer fh.Close()

		body, err := io.ReadAll(fh)

		if err != nil {
			return err
		}

		for _, f := range append_funcs {

			br := bytes.NewReader(body)
			fh := io.NopCloser(br)

			err := f(ctx, lu, fh)

			if err != nil {
				return err
			}
		}

	}

	return nil
}
