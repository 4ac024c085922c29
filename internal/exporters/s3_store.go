package exporters

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

// S3Store persists rendered export artifacts in an S3-compatible bucket and
// hands back a shareable URL.
type S3Store struct {
	Bucket string
	client *s3.S3
}

// NewS3Store dials an S3-compatible endpoint with static credentials.
func NewS3Store(endpoint, region, bucket, accessKey, secretKey string) (*S3Store, error) {
	sess, err := session.NewSession(&aws.Config{
		Region:      aws.String(region),
		Endpoint:    aws.String(endpoint),
		Credentials: credentials.NewStaticCredentials(accessKey, secretKey, ""),
	})
	if err != nil {
		return nil, fmt.Errorf("open s3 session: %w", err)
	}
	return &S3Store{Bucket: bucket, client: s3.New(sess)}, nil
}

// Put uploads the artifact under exports/<organization>/<file> and returns
// its URL.
func (s *S3Store) Put(ctx context.Context, orgID, fileName, contentType string, body []byte) (string, error) {
	key := fmt.Sprintf("exports/%s/%s", orgID, fileName)
	_, err := s.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("upload export artifact: %w", err)
	}
	return s.objectURL(key), nil
}

func (s *S3Store) objectURL(key string) string {
	endpoint := aws.StringValue(s.client.Config.Endpoint)
	if endpoint == "" {
		region := aws.StringValue(s.client.Config.Region)
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.Bucket, region, key)
	}
	endpoint = strings.TrimPrefix(endpoint, "https://")
	return fmt.Sprintf("https://%s/%s/%s", endpoint, s.Bucket, key)
}
