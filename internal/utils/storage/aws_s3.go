package storage

import (
	"Foodgram-Backend/internal/utils"
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gabriel-vasile/mimetype"
	"github.com/pkg/errors"
)

var AllowImage = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

var ErrFileTypeNotAllowed = errors.New("file type is not allowed")

type (
	AwsS3 interface {
		UploadFile(ctx context.Context, fileName string, data []byte, folder string, allowed ...string) (string, error)
		DeleteFile(ctx context.Context, objectKey string) error
		GetPublicLinkKey(objectKey string) string
		GetObjectKeyFromLink(link string) string
	}

	awsS3 struct {
		client   *s3.Client
		bucket   string
		region   string
		endpoint string
	}
)

func NewAwsS3() (AwsS3, error) {
	region := utils.GetConfig("AWS_S3_REGION")
	endpoint := strings.TrimRight(utils.GetConfig("AWS_S3_ENDPOINT"), "/")

	cfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithRegion(region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			utils.GetConfig("AWS_ACCESS_KEY"),
			utils.GetConfig("AWS_SECRET_KEY"),
			"",
		)),
	)
	if err != nil {
		return nil, errors.Wrap(err, "load aws config")
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	return &awsS3{
		client:   client,
		bucket:   utils.GetConfig("AWS_S3_BUCKET"),
		region:   region,
		endpoint: endpoint,
	}, nil
}

// UploadFile stores data under folder/fileName plus an extension derived
// from the sniffed MIME type, and returns the object key.
func (a *awsS3) UploadFile(ctx context.Context, fileName string, data []byte, folder string, allowed ...string) (string, error) {
	mtype := mimetype.Detect(data)
	if len(allowed) > 0 && !mimetype.EqualsAny(mtype.String(), allowed...) {
		return "", errors.Wrapf(ErrFileTypeNotAllowed, "got %s", mtype.String())
	}

	objectKey := fmt.Sprintf("%s/%s%s", folder, fileName, mtype.Extension())
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(objectKey),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(mtype.String()),
	})
	if err != nil {
		return "", errors.Wrapf(err, "put object %s", objectKey)
	}
	return objectKey, nil
}

func (a *awsS3) DeleteFile(ctx context.Context, objectKey string) error {
	_, err := a.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(objectKey),
	})
	return errors.Wrapf(err, "delete object %s", objectKey)
}

func (a *awsS3) GetPublicLinkKey(objectKey string) string {
	return a.publicPrefix() + objectKey
}

func (a *awsS3) GetObjectKeyFromLink(link string) string {
	prefix := a.publicPrefix()
	if !strings.HasPrefix(link, prefix) {
		return ""
	}
	return strings.TrimPrefix(link, prefix)
}

func (a *awsS3) publicPrefix() string {
	if a.endpoint != "" {
		return fmt.Sprintf("%s/%s/", a.endpoint, a.bucket)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/", a.bucket, a.region)
}
