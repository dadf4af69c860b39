package remote

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3"
)

// manifestNames are the manifest file names probed under a dataset prefix,
// in order of preference.
var manifestNames = []string{"sriracha__manifest.yml", "manifest.yml"}

// FindManifest looks for a dataset manifest under an s3://bucket/prefix path
// and returns the key of the first one found together with its raw body.
// Returns an InvalidPathError with ReasonNoObjectFound when no manifest
// exists.
func (c *Client) FindManifest(ctx context.Context, s3Path string) (string, []byte, error) {
	parsed, err := url.Parse(strings.TrimRight(s3Path, "/"))
	if err != nil {
		return "", nil, fmt.Errorf("remote: can't parse path %q: %w", s3Path, err)
	}
	if parsed.Scheme != "s3" {
		return "", nil, &InvalidPathError{Path: s3Path, Reason: ReasonWrongScheme}
	}
	if parsed.Host == "" {
		return "", nil, &InvalidPathError{Path: s3Path, Reason: ReasonNoBucketName}
	}

	prefix := strings.Trim(parsed.Path, "/")
	for _, name := range manifestNames {
		key := name
		if prefix != "" {
			key = prefix + "/" + name
		}
		out, err := c.api.GetObjectWithContext(ctx, &s3.GetObjectInput{
			Bucket: aws.String(parsed.Host),
			Key:    aws.String(key),
		})
		if err != nil {
			if isNotFound(err) {
				continue
			}
			return "", nil, fmt.Errorf("remote: can't read s3://%s/%s: %w", parsed.Host, key, err)
		}
		body, err := io.ReadAll(out.Body)
		out.Body.Close()
		if err != nil {
			return "", nil, err
		}
		return key, body, nil
	}

	return "", nil, &InvalidPathError{Path: s3Path, Reason: ReasonNoObjectFound}
}
