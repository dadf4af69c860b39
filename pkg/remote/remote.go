// Package remote mirrors S3 objects and prefixes into a local sync
// directory. Downloads are skipped when the local copy already matches the
// remote object according to the chosen DownloadMode, so repeated runs over
// large datasets only transfer what changed.
package remote

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/google/uuid"

	"github.com/seglab/sriracha/internal/log"
)

// Client performs S3-to-local synchronization.
type Client struct {
	api     s3iface.S3API
	syncDir string
}

// NewClient builds a client using the ambient AWS configuration (environment,
// shared config and credentials files). syncDir is the root of the local
// mirror.
func NewClient(syncDir string) (*Client, error) {
	sess, err := session.NewSessionWithOptions(session.Options{
		SharedConfigState: session.SharedConfigEnable,
	})
	if err != nil {
		return nil, fmt.Errorf("remote: can't create AWS session: %w", err)
	}
	return &Client{api: s3.New(sess), syncDir: syncDir}, nil
}

// NewClientWithAPI builds a client around an existing S3 API implementation.
func NewClientWithAPI(api s3iface.S3API, syncDir string) *Client {
	return &Client{api: api, syncDir: syncDir}
}

// S3ToLocal maps an s3:// path to its location under the sync directory and
// downloads whatever the mode requires. A path with no scheme is assumed to
// be local already and is returned unchanged. Include patterns restrict
// directory syncs to matching relative keys and are rejected for single-file
// downloads.
func (c *Client) S3ToLocal(ctx context.Context, s3Path string, mode DownloadMode, includePatterns []string) (string, error) {
	if !mode.Valid() {
		return "", fmt.Errorf("remote: wrong value for download mode: %d", int(mode))
	}
	if c.syncDir == "" {
		return "", fmt.Errorf("remote: local sync directory not configured")
	}

	parsed, err := url.Parse(s3Path)
	if err != nil {
		return "", fmt.Errorf("remote: can't parse path %q: %w", s3Path, err)
	}
	if parsed.Scheme == "" {
		if parsed.Host != "" {
			return "", fmt.Errorf("remote: %q must be an S3 path or a local path", s3Path)
		}
		return s3Path, nil
	}
	if parsed.Scheme != "s3" {
		return "", &InvalidPathError{Path: s3Path, Reason: ReasonWrongScheme}
	}

	bucket := parsed.Host
	if bucket == "" {
		return "", &InvalidPathError{Path: s3Path, Reason: ReasonNoBucketName}
	}
	key := strings.Trim(parsed.Path, "/")
	localPath := filepath.Join(c.syncDir, bucket, filepath.FromSlash(key))

	if mode == NeverDownload {
		return localPath, nil
	}

	if key == "" {
		// Bucket root: sync the whole bucket as a directory.
		if err := c.syncPrefix(ctx, localPath, s3Path, bucket, key, mode, includePatterns); err != nil {
			return "", err
		}
		return localPath, nil
	}

	_, err = c.api.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	switch {
	case err == nil:
		if includePatterns != nil {
			return "", fmt.Errorf("remote: include patterns are only allowed for directories")
		}
		if err := c.downloadFile(ctx, localPath, s3Path, bucket, key, mode); err != nil {
			return "", err
		}
	case isNotFound(err):
		// No object at the exact key: treat the path as a prefix.
		if err := c.syncPrefix(ctx, localPath, s3Path, bucket, key, mode, includePatterns); err != nil {
			return "", err
		}
	default:
		return "", fmt.Errorf("remote: can't stat s3://%s/%s: %w", bucket, key, err)
	}

	return localPath, nil
}

// downloadFile fetches one object, honoring the mode's skip heuristics. The
// object is written to a temporary file and renamed into place, and its
// modification time is set to the remote LastModified so later
// SizeAndTimestamp runs can skip it.
func (c *Client) downloadFile(ctx context.Context, localPath, s3Path, bucket, key string, mode DownloadMode) error {
	if mode == NeverDownload {
		return nil
	}

	stat, statErr := os.Stat(localPath)
	exists := statErr == nil

	if mode == FileDoesNotExist && exists {
		return nil
	}

	if exists && (mode == SizeOnly || mode == SizeAndTimestamp) {
		head, err := c.api.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(key),
		})
		if err == nil && head.ContentLength != nil && *head.ContentLength == stat.Size() {
			if mode == SizeOnly {
				return nil
			}
			if head.LastModified != nil && head.LastModified.Equal(stat.ModTime()) {
				return nil
			}
		}
	}

	out, err := c.api.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return &InvalidPathError{Path: s3Path, Reason: ReasonNoObjectFound}
		}
		return fmt.Errorf("remote: can't download s3://%s/%s: %w", bucket, key, err)
	}
	defer out.Body.Close()

	if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
		return err
	}

	tmpPath := fmt.Sprintf("%s.tmp-%s", localPath, uuid.NewString())
	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, out.Body); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("remote: download of s3://%s/%s failed: %w", bucket, key, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, localPath); err != nil {
		os.Remove(tmpPath)
		return err
	}

	if out.LastModified != nil {
		mtime := out.LastModified.UTC()
		if err := os.Chtimes(localPath, time.Now(), mtime); err != nil {
			log.Warnf("can't set modification time of %s: %v", localPath, err)
		}
	}
	return nil
}

// syncPrefix mirrors every object under an S3 prefix into localPath,
// applying the per-file skip heuristics. Modes that only make sense for a
// single file fall back to SizeAndTimestamp with a warning.
func (c *Client) syncPrefix(ctx context.Context, localPath, s3Path, bucket, prefix string, mode DownloadMode, includePatterns []string) error {
	if mode == AlwaysDownload || mode == FileDoesNotExist {
		log.Warnf("download mode %s is not valid for directories; falling back to %s",
			mode, SizeAndTimestamp)
		mode = SizeAndTimestamp
	}

	listPrefix := prefix
	if listPrefix != "" {
		listPrefix += "/"
	}

	found := false
	var downloadErr error
	err := c.api.ListObjectsV2PagesWithContext(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(listPrefix),
	}, func(page *s3.ListObjectsV2Output, lastPage bool) bool {
		for _, obj := range page.Contents {
			key := aws.StringValue(obj.Key)
			if strings.HasSuffix(key, "/") {
				continue
			}
			found = true

			rel := strings.TrimPrefix(key, listPrefix)
			if !matchesAny(includePatterns, rel) {
				continue
			}

			dest := filepath.Join(localPath, filepath.FromSlash(rel))
			if skipObject(dest, obj, mode) {
				continue
			}
			if err := c.downloadFile(ctx, dest, s3Path, bucket, key, AlwaysDownload); err != nil {
				downloadErr = err
				return false
			}
		}
		return true
	})
	if err != nil {
		if aerr, ok := err.(awserr.Error); ok {
			switch aerr.Code() {
			case s3.ErrCodeNoSuchBucket:
				return &InvalidPathError{Path: s3Path, Reason: ReasonNoSuchBucket}
			case "InvalidBucketName":
				return &InvalidPathError{Path: s3Path, Reason: ReasonInvalidBucketName}
			}
		}
		return fmt.Errorf("remote: can't list s3://%s/%s: %w", bucket, listPrefix, err)
	}
	if downloadErr != nil {
		return downloadErr
	}
	if !found {
		return &InvalidPathError{Path: s3Path, Reason: ReasonNoObjectFound}
	}
	return nil
}

// skipObject applies the size / size-and-timestamp heuristics using the
// listing metadata, avoiding a HeadObject per file.
func skipObject(dest string, obj *s3.Object, mode DownloadMode) bool {
	stat, err := os.Stat(dest)
	if err != nil {
		return false
	}
	if obj.Size == nil || *obj.Size != stat.Size() {
		return false
	}
	if mode == SizeOnly {
		return true
	}
	return obj.LastModified != nil && obj.LastModified.Equal(stat.ModTime())
}

// matchesAny reports whether the relative key matches one of the include
// patterns. No patterns means everything matches. Patterns match either the
// full relative key or its base name.
func matchesAny(patterns []string, rel string) bool {
	if len(patterns) == 0 {
		return true
	}
	for _, p := range patterns {
		if ok, _ := path.Match(p, rel); ok {
			return true
		}
		if ok, _ := path.Match(p, path.Base(rel)); ok {
			return true
		}
	}
	return false
}

// isNotFound reports whether an AWS error means the object does not exist.
func isNotFound(err error) bool {
	if aerr, ok := err.(awserr.Error); ok {
		switch aerr.Code() {
		case s3.ErrCodeNoSuchKey, "NotFound":
			return true
		}
		if reqErr, ok := aerr.(awserr.RequestFailure); ok && reqErr.StatusCode() == 404 {
			return true
		}
	}
	return false
}
