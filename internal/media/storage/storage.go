// Package storage keeps site media (hero, menu and product images) in an S3-compatible bucket.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	"lighthouse-restaurant/backend/internal/config"
)

// Media folders.
const (
	FolderHero     = "hero"
	FolderMenu     = "menu"
	FolderProducts = "products"
)

// Folders lists the folders managed from the back office, in display order.
var Folders = []string{FolderHero, FolderMenu, FolderProducts}

const (
	// MaxUploadBytes is the largest accepted upload.
	MaxUploadBytes = 10 << 20
	listLimit      = 100
	defaultExt     = ".jpg"
)

var (
	ErrEmptyFile   = errors.New("no file provided")
	ErrTooLarge    = errors.New("file exceeds upload limit")
	ErrNotImage    = errors.New("file is not an image")
	ErrInvalidPath = errors.New("invalid object path")
)

var (
	folderUnsafe = regexp.MustCompile(`[^a-zA-Z0-9/_-]`)
	baseUnsafe   = regexp.MustCompile(`[^a-zA-Z0-9_-]`)
	stampPrefix  = regexp.MustCompile(`^\d+_`)
)

// API is the part of the S3 client used by Store.
type API interface {
	HeadBucket(ctx context.Context, in *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	CreateBucket(ctx context.Context, in *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
	PutBucketPolicy(ctx context.Context, in *s3.PutBucketPolicyInput, optFns ...func(*s3.Options)) (*s3.PutBucketPolicyOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

var loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

// NewS3Client builds an S3 client from cfg. Static credentials and a custom endpoint (MinIO) are used
// when configured; otherwise the default AWS credential chain applies.
func NewS3Client(ctx context.Context, cfg *config.Config) (*s3.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.S3Region)}
	if cfg.S3AccessKey != "" && cfg.S3SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, "")))
	}
	awsCfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage: load aws config: %w", err)
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// Object is a stored media file.
type Object struct {
	Name         string // key without folder
	Path         string // full key
	URL          string
	DisplayName  string
	Size         int64
	LastModified time.Time
}

// Store manages objects in one bucket.
type Store struct {
	api        API
	bucket     string
	publicBase string
	nowF       func() time.Time
}

// NewStore returns a Store for bucket whose objects are publicly served under publicBase.
func NewStore(api API, bucket, publicBase string) *Store {
	return &Store{
		api:        api,
		bucket:     bucket,
		publicBase: strings.TrimRight(publicBase, "/"),
		nowF:       time.Now,
	}
}

// EnsureBucket creates the bucket with a public-read policy if it does not exist.
func (s *Store) EnsureBucket(ctx context.Context) error {
	_, err := s.api.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	if err == nil {
		return nil
	}
	if !isNotFound(err) {
		return fmt.Errorf("storage: head bucket: %w", err)
	}
	if _, err := s.api.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(s.bucket)}); err != nil {
		return fmt.Errorf("storage: create bucket: %w", err)
	}
	policy := fmt.Sprintf(`{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Principal":"*","Action":["s3:GetObject"],"Resource":["arn:aws:s3:::%s/*"]}]}`, s.bucket)
	if _, err := s.api.PutBucketPolicy(ctx, &s3.PutBucketPolicyInput{Bucket: aws.String(s.bucket), Policy: aws.String(policy)}); err != nil {
		return fmt.Errorf("storage: set bucket policy: %w", err)
	}
	return nil
}

// HealthCheck reports whether the bucket is reachable.
func (s *Store) HealthCheck(ctx context.Context) error {
	if _, err := s.api.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)}); err != nil {
		return fmt.Errorf("storage: head bucket: %w", err)
	}
	return nil
}

func isNotFound(err error) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.ErrorCode() {
	case "NotFound", "NoSuchBucket":
		return true
	}
	return false
}

// Upload stores body under <folder>/<unix-millis>_<base><ext>, where base and ext come from filename.
func (s *Store) Upload(ctx context.Context, folder, filename, contentType string, body io.Reader, size int64) (Object, error) {
	if body == nil || size == 0 {
		return Object{}, ErrEmptyFile
	}
	if size > MaxUploadBytes {
		return Object{}, ErrTooLarge
	}
	if contentType == "" {
		contentType = "image/jpeg"
	}
	if !strings.HasPrefix(contentType, "image/") {
		return Object{}, ErrNotImage
	}
	key := s.objectKey(folder, filename)
	in := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	}
	if size > 0 {
		in.ContentLength = aws.Int64(size)
	}
	if _, err := s.api.PutObject(ctx, in); err != nil {
		return Object{}, fmt.Errorf("storage: put %s: %w", key, err)
	}
	return s.object(key, size, s.nowF()), nil
}

func (s *Store) objectKey(folder, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	if ext == "" {
		ext = defaultExt
	}
	base := strings.TrimSuffix(path.Base(strings.ReplaceAll(filename, `\`, "/")), path.Ext(filename))
	if base == "" || base == "." || base == "/" {
		base = "image"
	}
	base = baseUnsafe.ReplaceAllString(base, "_")
	name := fmt.Sprintf("%d_%s%s", s.nowF().UnixMilli(), base, ext)
	if f := SanitizeFolder(folder); f != "" {
		return f + "/" + name
	}
	return name
}

// SanitizeFolder replaces characters outside [a-zA-Z0-9/_-] and trims surrounding slashes.
func SanitizeFolder(folder string) string {
	return strings.Trim(folderUnsafe.ReplaceAllString(folder, "_"), "/")
}

// List returns up to 100 objects directly under folder, sorted by name.
func (s *Store) List(ctx context.Context, folder string) ([]Object, error) {
	prefix := SanitizeFolder(folder)
	if prefix != "" {
		prefix += "/"
	}
	out, err := s.api.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:    aws.String(s.bucket),
		Prefix:    aws.String(prefix),
		Delimiter: aws.String("/"),
		MaxKeys:   aws.Int32(listLimit),
	})
	if err != nil {
		return nil, fmt.Errorf("storage: list %q: %w", folder, err)
	}
	objects := make([]Object, 0, len(out.Contents))
	for _, o := range out.Contents {
		key := aws.ToString(o.Key)
		if key == "" || strings.HasSuffix(key, "/") {
			continue
		}
		objects = append(objects, s.object(key, aws.ToInt64(o.Size), aws.ToTime(o.LastModified)))
	}
	sort.Slice(objects, func(i, j int) bool { return objects[i].Name < objects[j].Name })
	return objects, nil
}

// Delete removes the object at key.
func (s *Store) Delete(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "..") {
		return ErrInvalidPath
	}
	if _, err := s.api.DeleteObject(ctx, &s3.DeleteObjectInput{Bucket: aws.String(s.bucket), Key: aws.String(key)}); err != nil {
		return fmt.Errorf("storage: delete %s: %w", key, err)
	}
	return nil
}

// PublicURL returns the public URL of key.
func (s *Store) PublicURL(key string) string {
	return s.publicBase + "/" + strings.TrimLeft(key, "/")
}

func (s *Store) object(key string, size int64, modified time.Time) Object {
	name := path.Base(key)
	return Object{
		Name:         name,
		Path:         key,
		URL:          s.PublicURL(key),
		DisplayName:  DisplayName(name),
		Size:         size,
		LastModified: modified,
	}
}

// DisplayName turns a stored file name into a caption: timestamp prefix and extension removed,
// underscores shown as spaces.
func DisplayName(name string) string {
	name = stampPrefix.ReplaceAllString(name, "")
	name = strings.TrimSuffix(name, path.Ext(name))
	return strings.TrimSpace(strings.ReplaceAll(name, "_", " "))
}
