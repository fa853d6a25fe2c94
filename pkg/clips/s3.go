package clips

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

// clipContentType is set on every uploaded object; the archive only ever
// holds processed WAV clips.
const clipContentType = "audio/wav"

// S3Client is the subset of the S3 API the archive calls. The concrete
// [s3.Client] satisfies it; tests substitute a fake.
type S3Client interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

// S3Archive keeps clips in Amazon S3 or any S3-compatible object store
// (MinIO, R2). Clip paths become object keys under an optional prefix.
//
// Credentials, region, and endpoint belong to the injected client; the
// archive never constructs one itself.
type S3Archive struct {
	client S3Client
	bucket string
	prefix string
}

// NewS3 creates an archive storing clips in bucket. A non-empty prefix
// namespaces the keys, so several deployments can share one bucket.
func NewS3(client S3Client, bucket, prefix string) *S3Archive {
	return &S3Archive{client: client, bucket: bucket, prefix: prefix}
}

func (a *S3Archive) object(name string) (*string, *string) {
	return aws.String(a.bucket), aws.String(path.Join(a.prefix, name))
}

// Read streams the named clip via GetObject. A missing key surfaces as
// an error wrapping os.ErrNotExist, matching the Local backend.
func (a *S3Archive) Read(ctx context.Context, name string) (io.ReadCloser, error) {
	bucket, key := a.object(name)
	out, err := a.client.GetObject(ctx, &s3.GetObjectInput{Bucket: bucket, Key: key})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("clips: read %s: %w", name, os.ErrNotExist)
		}
		return nil, err
	}
	return out.Body, nil
}

// Write returns a writer whose bytes stream into a PutObject call running
// in a background goroutine. Close flushes the upload and reports its
// error; the clip is not durable until Close returns nil.
func (a *S3Archive) Write(ctx context.Context, name string) (io.WriteCloser, error) {
	bucket, key := a.object(name)
	pr, pw := io.Pipe()
	errc := make(chan error, 1)
	go func() {
		_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      bucket,
			Key:         key,
			Body:        pr,
			ContentType: aws.String(clipContentType),
		})
		// A failed upload must also release any writer blocked on the pipe.
		pr.CloseWithError(err)
		errc <- err
	}()
	return &s3Upload{pw: pw, errc: errc}, nil
}

// Delete removes the named clip. DeleteObject succeeds for absent keys,
// so Delete is idempotent like the Local backend.
func (a *S3Archive) Delete(ctx context.Context, name string) error {
	bucket, key := a.object(name)
	_, err := a.client.DeleteObject(ctx, &s3.DeleteObjectInput{Bucket: bucket, Key: key})
	return err
}

// Exists probes the named clip with HeadObject.
func (a *S3Archive) Exists(ctx context.Context, name string) (bool, error) {
	bucket, key := a.object(name)
	_, err := a.client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: bucket, Key: key})
	switch {
	case err == nil:
		return true, nil
	case isNotFound(err):
		return false, nil
	default:
		return false, err
	}
}

// s3Upload feeds the background PutObject through an io.Pipe.
type s3Upload struct {
	pw   *io.PipeWriter
	errc chan error
}

func (u *s3Upload) Write(p []byte) (int, error) { return u.pw.Write(p) }

// Close signals EOF to the upload and waits for it to finish.
func (u *s3Upload) Close() error {
	u.pw.Close()
	return <-u.errc
}

// isNotFound reports whether err is an S3 missing-object response.
func isNotFound(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey":
			return true
		}
	}
	return false
}

var (
	_ Archive = (*S3Archive)(nil)
	_ Archive = (*Local)(nil)
)
