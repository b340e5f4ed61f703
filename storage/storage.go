package storage

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

// DocumentStore holds the identity-document images. Uploads and deletes
// are best-effort from the caller's point of view: a failure must never
// fail the request the document belongs to.
type DocumentStore interface {
	Upload(file io.Reader, key, contentType string) (string, error)
	Delete(fileURL string) error
}

// DocumentKey builds the object key for a cedula image, e.g.
// cedula-front-42-1712000000000.jpg.
func DocumentKey(side string, athleteID int, fileName string) string {
	ext := strings.TrimPrefix(path.Ext(fileName), ".")
	if ext == "" {
		ext = "jpg"
	}
	return fmt.Sprintf("cedula-%s-%d-%d.%s", side, athleteID, time.Now().UnixMilli(), ext)
}

// S3Store keeps documents in a single public-read bucket.
type S3Store struct {
	svc    *s3.S3
	bucket string
	region string
}

// NewS3Store reads AWS credentials from the environment. Returns an
// error when they are not configured; the caller decides whether to run
// without document storage.
func NewS3Store() (*S3Store, error) {
	accessKey := os.Getenv("AWS_ACCESS_KEY_ID")
	secretKey := os.Getenv("AWS_SECRET_ACCESS_KEY")
	region := os.Getenv("AWS_REGION")
	bucket := os.Getenv("AWS_DOCUMENTS_BUCKET")
	if bucket == "" {
		bucket = "athlete-documents"
	}

	if accessKey == "" || secretKey == "" || region == "" {
		return nil, fmt.Errorf("AWS credentials or region not set in environment")
	}

	sess, err := session.NewSession(&aws.Config{
		Region:      aws.String(region),
		Credentials: credentials.NewStaticCredentials(accessKey, secretKey, ""),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %v", err)
	}

	return &S3Store{svc: s3.New(sess), bucket: bucket, region: region}, nil
}

func (s *S3Store) Upload(file io.Reader, key, contentType string) (string, error) {
	buf := new(bytes.Buffer)
	if _, err := io.Copy(buf, file); err != nil {
		return "", fmt.Errorf("failed to read file buffer: %v", err)
	}

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(buf.Bytes()),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := s.svc.PutObject(input); err != nil {
		return "", fmt.Errorf("failed to upload file to S3: %v", err)
	}

	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key), nil
}

func (s *S3Store) Delete(fileURL string) error {
	prefix := fmt.Sprintf("https://%s.s3.%s.amazonaws.com/", s.bucket, s.region)
	key := strings.TrimPrefix(fileURL, prefix)
	if key == fileURL {
		// URLs written by older deployments used a different host
		// layout; fall back to the last path segment.
		parts := strings.Split(fileURL, "/")
		key = parts[len(parts)-1]
	}
	if key == "" {
		return fmt.Errorf("cannot derive object key from %q", fileURL)
	}

	_, err := s.svc.DeleteObject(&s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete file from S3: %v", err)
	}
	return nil
}
