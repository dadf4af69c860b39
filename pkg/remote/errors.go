package remote

import "fmt"

// PathErrorReason classifies why an S3 path was rejected.
type PathErrorReason string

const (
	ReasonWrongScheme       PathErrorReason = "wrong scheme, the path must start with s3://"
	ReasonNoBucketName      PathErrorReason = "no bucket name"
	ReasonNoSuchBucket      PathErrorReason = "bucket not found"
	ReasonInvalidBucketName PathErrorReason = "invalid bucket name"
	ReasonNoObjectFound     PathErrorReason = "no object found"
)

// InvalidPathError is returned when a given S3 path is invalid or does not
// resolve to any remote object.
type InvalidPathError struct {
	Path   string
	Reason PathErrorReason
}

func (e *InvalidPathError) Error() string {
	return fmt.Sprintf("invalid path %q: %s", e.Path, e.Reason)
}
