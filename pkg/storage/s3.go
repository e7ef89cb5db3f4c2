package storage

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"os"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
)

const (
	// FolderTestimonials is the S3 prefix for testimonial video objects.
	FolderTestimonials = "testimonials"
	// TokenLength is the length of the random token in testimonial object names.
	TokenLength = 6
)

const tokenAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// Allowed testimonial video MIME types and extensions.
var (
	AllowedVideoTypes = map[string]string{
		"video/webm":      ".webm",
		"video/mp4":       ".mp4",
		"video/quicktime": ".mov",
	}
	AllowedVideoExtensions = map[string]string{
		".webm": "video/webm",
		".mp4":  "video/mp4",
		".mov":  "video/quicktime",
	}
)

// S3Config holds S3 client configuration.
type S3Config struct {
	Region               string
	AccessKeyID          string
	SecretAccessKey      string
	Endpoint             string
	TestimonialsBucket   string
	PresignExpireMinutes int
}

// S3 provides S3 operations for testimonial videos.
type S3 struct {
	client   *s3.Client
	uploader *manager.Uploader
	cfg      S3Config
	logger   *zap.Logger
}

// NewS3 creates an S3 client using credentials from config or the environment.
func NewS3(ctx context.Context, cfg S3Config, logger *zap.Logger) (*S3, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	accessKey := cfg.AccessKeyID
	secretKey := cfg.SecretAccessKey
	if accessKey == "" || secretKey == "" {
		accessKey = os.Getenv("AWS_ACCESS_KEY_ID")
		secretKey = os.Getenv("AWS_SECRET_ACCESS_KEY")
	}
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}
	if accessKey != "" && secretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			accessKey, secretKey, "",
		)))
		logger.Info("S3 client using static credentials", zap.String("region", cfg.Region), zap.String("bucket", cfg.TestimonialsBucket))
	} else {
		logger.Warn("S3 client using default credential chain")
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	uploader := manager.NewUploader(client, func(u *manager.Uploader) {
		u.PartSize = 5 * 1024 * 1024
	})
	return &S3{
		client:   client,
		uploader: uploader,
		cfg:      cfg,
		logger:   logger,
	}, nil
}

// ValidateVideoFileType returns true if the content type or extension is an accepted video format.
func ValidateVideoFileType(contentType, filename string) bool {
	if contentType != "" {
		ct := strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
		if _, ok := AllowedVideoTypes[ct]; ok {
			return true
		}
	}
	ext := strings.ToLower(path.Ext(filename))
	if ext != "" {
		if _, ok := AllowedVideoExtensions[ext]; ok {
			return true
		}
	}
	return false
}

// VideoExtension picks the object extension for an upload: the filename's if
// accepted, else the one mapped from the content type, else ".webm".
func VideoExtension(contentType, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	if _, ok := AllowedVideoExtensions[ext]; ok {
		return ext
	}
	ct := strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	if e, ok := AllowedVideoTypes[ct]; ok {
		return e
	}
	return ".webm"
}

// ContentTypeForExtension returns the MIME type for a video extension.
func ContentTypeForExtension(ext string) string {
	if ct, ok := AllowedVideoExtensions[strings.ToLower(ext)]; ok {
		return ct
	}
	return "application/octet-stream"
}

// TestimonialKey returns testimonials/{unix_millis}_{token}{ext}.
func TestimonialKey(now time.Time, token, ext string) string {
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return path.Join(FolderTestimonials, fmt.Sprintf("%d_%s%s", now.UnixMilli(), token, ext))
}

// RandomToken returns TokenLength lowercase base-36 characters.
func RandomToken() (string, error) {
	var b strings.Builder
	base := big.NewInt(int64(len(tokenAlphabet)))
	for i := 0; i < TokenLength; i++ {
		n, err := rand.Int(rand.Reader, base)
		if err != nil {
			return "", fmt.Errorf("random token: %w", err)
		}
		b.WriteByte(tokenAlphabet[n.Int64()])
	}
	return b.String(), nil
}

// GeneratePresignedDownloadURL returns a pre-signed GET URL for download.
func (s *S3) GeneratePresignedDownloadURL(ctx context.Context, bucket, key string, expires time.Duration) (string, error) {
	presignClient := s3.NewPresignClient(s.client)
	req, err := presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = expires
	})
	if err != nil {
		return "", fmt.Errorf("presign get: %w", err)
	}
	return req.URL, nil
}

// PresignExpire returns the configured presign duration.
func (s *S3) PresignExpire() time.Duration {
	if s.cfg.PresignExpireMinutes <= 0 {
		return 15 * time.Minute
	}
	return time.Duration(s.cfg.PresignExpireMinutes) * time.Minute
}

// TestimonialsBucket returns the testimonials bucket name.
func (s *S3) TestimonialsBucket() string { return s.cfg.TestimonialsBucket }

// PublicObjectURL returns the unsigned URL of an object.
func (s *S3) PublicObjectURL(bucket, key string) string {
	if s.cfg.Endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", strings.TrimRight(s.cfg.Endpoint, "/"), bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", bucket, s.cfg.Region, key)
}

// Upload streams a reader to S3 and returns the object's retrieval URL.
func (s *S3) Upload(ctx context.Context, bucket, key, contentType string, body io.Reader, contentLength int64) (string, error) {
	var contentLengthPtr *int64
	if contentLength > 0 {
		contentLengthPtr = &contentLength
	}
	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentType:   aws.String(contentType),
		ContentLength: contentLengthPtr,
	})
	if err != nil {
		return "", fmt.Errorf("upload: %w", err)
	}
	return s.PublicObjectURL(bucket, key), nil
}

// UploadTestimonial uploads a testimonial clip into the testimonials bucket.
func (s *S3) UploadTestimonial(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error) {
	bucket := s.TestimonialsBucket()
	s.logger.Info("S3 upload starting", zap.String("bucket", bucket), zap.String("key", key), zap.Int64("size", size))
	return s.Upload(ctx, bucket, key, contentType, body, size)
}

// PresignTestimonial returns a time-limited GET URL for a testimonial object.
func (s *S3) PresignTestimonial(ctx context.Context, key string) (string, time.Duration, error) {
	expire := s.PresignExpire()
	url, err := s.GeneratePresignedDownloadURL(ctx, s.TestimonialsBucket(), key, expire)
	if err != nil {
		return "", 0, err
	}
	return url, expire, nil
}
