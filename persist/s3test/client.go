// Package s3test provides S3 clients for tests. By default each client
// talks to its own in-process gofakes3 server; setting
// TINYX_TEST_S3_ENDPOINT points clients at a real S3-compatible service
// instead, using the usual AWS_* credential variables.
package s3test

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http/httptest"
	"os"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/johannesboyne/gofakes3"
	"github.com/johannesboyne/gofakes3/backend/s3mem"
)

const (
	endpointEnv = "TINYX_TEST_S3_ENDPOINT"
	noRegion    = "not-using-AWS"
)

// Client returns an S3 client, the name of a freshly created bucket, and a
// function that empties and removes the bucket and stops any fake server.
func Client() (*s3.S3, string, func()) {
	var (
		cfg  *aws.Config
		stop = func() {}
	)
	if endpoint := os.Getenv(endpointEnv); endpoint != "" {
		cfg = endpointConfig(endpoint)
	} else {
		cfg, stop = fakeConfig()
	}
	sess, err := session.NewSession(cfg)
	if err != nil {
		stop()
		panic(fmt.Errorf("s3 session: %w", err))
	}
	client := s3.New(sess)

	bucket := newBucketName()
	if _, err := client.CreateBucket(&s3.CreateBucketInput{Bucket: aws.String(bucket)}); err != nil {
		stop()
		panic(fmt.Errorf("create bucket %s: %w", bucket, err))
	}
	return client, bucket, func() {
		defer stop()
		iter := s3manager.NewDeleteListIterator(client, &s3.ListObjectsInput{Bucket: aws.String(bucket)})
		if err := s3manager.NewBatchDeleteWithClient(client).Delete(aws.BackgroundContext(), iter); err != nil {
			fmt.Printf("s3test: emptying %s: %v\n", bucket, err)
			return
		}
		client.DeleteBucket(&s3.DeleteBucketInput{Bucket: aws.String(bucket)})
	}
}

func fakeConfig() (*aws.Config, func()) {
	ts := httptest.NewServer(gofakes3.New(s3mem.New()).Server())
	return &aws.Config{
		Credentials:      credentials.NewStaticCredentials("TINYX-TEST-KEY", "TINYX-TEST-SECRET", ""),
		Endpoint:         aws.String(ts.URL),
		Region:           aws.String("ca-west-1"),
		DisableSSL:       aws.Bool(true),
		S3ForcePathStyle: aws.Bool(true),
	}, ts.Close
}

// endpointConfig targets a real service. A real AWS region lets the SDK
// resolve the endpoint itself; otherwise (min.io and the like) any
// non-empty region will do.
func endpointConfig(endpoint string) *aws.Config {
	region := lookupEnv("AWS_REGION", noRegion)
	cfg := &aws.Config{
		Credentials: credentials.NewStaticCredentials(
			mustEnv("AWS_ACCESS_KEY_ID"),
			mustEnv("AWS_SECRET_ACCESS_KEY"),
			lookupEnv("AWS_SESSION_TOKEN", ""),
		),
		Region:           aws.String(region),
		S3ForcePathStyle: aws.Bool(true),
	}
	if region == noRegion {
		cfg.Endpoint = aws.String(endpoint)
	}
	return cfg
}

func mustEnv(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		panic(fmt.Sprintf("%s is set but %s is not", endpointEnv, key))
	}
	return v
}

func lookupEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func newBucketName() string {
	b := make([]byte, 6)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return "tinyx-" + hex.EncodeToString(b)
}
