package objectstore

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/clinic-ledger/internal/domain"
	"github.com/jhoicas/clinic-ledger/pkg/config"
)

// fakeS3 transporte HTTP en memoria: responde PutObject y guarda el cuerpo.
type fakeS3 struct {
	status  int
	objects map[string][]byte
	types   map[string]string
}

func (f *fakeS3) RoundTrip(req *http.Request) (*http.Response, error) {
	if f.status != 0 {
		return &http.Response{StatusCode: f.status, Body: io.NopCloser(strings.NewReader("")), Header: http.Header{}, Request: req}, nil
	}
	body, _ := io.ReadAll(req.Body)
	key := strings.TrimPrefix(req.URL.Path, "/")
	f.objects[key] = body
	f.types[key] = req.Header.Get("Content-Type")
	h := http.Header{}
	h.Set("ETag", `"etag"`)
	return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader("")), Header: h, Request: req}, nil
}

func newTestSink(t *testing.T, rt *fakeS3) *S3Sink {
	t.Helper()
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion("us-east-1"),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("AKIA", "SECRET", "")),
	)
	require.NoError(t, err)
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.HTTPClient = &http.Client{Transport: rt}
		o.UsePathStyle = true
		o.BaseEndpoint = aws.String("https://mock.s3.local")
		o.RetryMaxAttempts = 1
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		o.ResponseChecksumValidation = aws.ResponseChecksumValidationWhenRequired
	})
	return &S3Sink{client: client, bucket: "exports"}
}

func TestPut_SubeObjeto(t *testing.T) {
	rt := &fakeS3{objects: map[string][]byte{}, types: map[string]string{}}
	sink := newTestSink(t, rt)

	body := []byte(`{"log_id":"a"}` + "\n")
	require.NoError(t, sink.Put(context.Background(), "audit/C1/x.ndjson", body))

	assert.Equal(t, body, rt.objects["exports/audit/C1/x.ndjson"])
	assert.Equal(t, contentTypeNDJSON, rt.types["exports/audit/C1/x.ndjson"])
}

func TestPut_FallaDelBackend(t *testing.T) {
	sink := newTestSink(t, &fakeS3{status: http.StatusInternalServerError})
	err := sink.Put(context.Background(), "audit/x.ndjson", []byte("{}"))
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}

func TestNewS3Sink_BucketObligatorio(t *testing.T) {
	_, err := NewS3Sink(context.Background(), config.S3Config{Region: "us-east-1"})
	assert.Error(t, err)
}
