package services

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/BradenHooton/conecta/internal/config"
	"github.com/BradenHooton/conecta/internal/models"
	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// Upload kinds accepted by PresignUpload.
const (
	UploadKindEvent   = "event"
	UploadKindProfile = "profile"
)

// Upload is a presigned slot the client PUTs an image into. PublicURL is
// the value to store in imageUri or imageUrl once the upload succeeds.
type Upload struct {
	Key       string    `json:"key"`
	UploadURL string    `json:"uploadUrl"`
	PublicURL string    `json:"publicUrl"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// PresignAPI is the subset of the S3 presign client used here.
type PresignAPI interface {
	PresignPutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// MediaService hands out presigned S3 upload URLs for event and profile
// images. A service without a bucket is disabled.
type MediaService struct {
	presigner PresignAPI
	bucket    string
	expiry    time.Duration
	logger    *slog.Logger
	now       func() time.Time
}

// NewMediaService builds an S3 client from cfg. Static credentials and a
// custom endpoint are used when set, so MinIO works as a drop-in.
func NewMediaService(ctx context.Context, cfg config.MediaConfig, logger *slog.Logger) (*MediaService, error) {
	if !cfg.Enabled() {
		return &MediaService{logger: logger, now: time.Now}, nil
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return NewMediaServiceWithPresigner(s3.NewPresignClient(client), cfg.Bucket, cfg.UploadExpiry, logger), nil
}

func NewMediaServiceWithPresigner(presigner PresignAPI, bucket string, expiry time.Duration, logger *slog.Logger) *MediaService {
	return &MediaService{
		presigner: presigner,
		bucket:    bucket,
		expiry:    expiry,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *MediaService) Enabled() bool {
	return s.presigner != nil && s.bucket != ""
}

// PresignUpload reserves a fresh object key under kind and returns a PUT URL
// for it. It returns models.ErrNotFound when uploads are disabled.
func (s *MediaService) PresignUpload(ctx context.Context, kind string) (*Upload, error) {
	if !s.Enabled() {
		return nil, models.ErrNotFound
	}
	if kind != UploadKindEvent && kind != UploadKindProfile {
		return nil, models.NewValidationError("kind", "must be one of: event profile")
	}

	now := s.now().UTC()
	key := fmt.Sprintf("%ss/%d/%02d/%s", kind, now.Year(), now.Month(), uuid.New())

	req, err := s.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.expiry))
	if err != nil {
		s.logger.Error("failed to presign upload", slog.String("kind", kind), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return &Upload{
		Key:       key,
		UploadURL: req.URL,
		PublicURL: stripQuery(req.URL),
		ExpiresAt: now.Add(s.expiry),
	}, nil
}

func stripQuery(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}
