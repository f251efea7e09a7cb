package excelstream

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// mockS3Client implements S3API for tests.
type mockS3Client struct {
	createMultipartUploadFunc func(ctx context.Context, params *s3.CreateMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.CreateMultipartUploadOutput, error)
	uploadPartFunc            func(ctx context.Context, params *s3.UploadPartInput, optFns ...func(*s3.Options)) (*s3.UploadPartOutput, error)
	completeMultipartUpload   func(ctx context.Context, params *s3.CompleteMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.CompleteMultipartUploadOutput, error)
	abortMultipartUploadFunc  func(ctx context.Context, params *s3.AbortMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.AbortMultipartUploadOutput, error)
}

func (m *mockS3Client) CreateMultipartUpload(ctx context.Context, params *s3.CreateMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.CreateMultipartUploadOutput, error) {
	if m.createMultipartUploadFunc != nil {
		return m.createMultipartUploadFunc(ctx, params, optFns...)
	}
	return &s3.CreateMultipartUploadOutput{UploadId: aws.String("test-upload-id")}, nil
}

func (m *mockS3Client) UploadPart(ctx context.Context, params *s3.UploadPartInput, optFns ...func(*s3.Options)) (*s3.UploadPartOutput, error) {
	if m.uploadPartFunc != nil {
		return m.uploadPartFunc(ctx, params, optFns...)
	}
	return &s3.UploadPartOutput{ETag: aws.String("test-etag")}, nil
}

func (m *mockS3Client) CompleteMultipartUpload(ctx context.Context, params *s3.CompleteMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.CompleteMultipartUploadOutput, error) {
	if m.completeMultipartUpload != nil {
		return m.completeMultipartUpload(ctx, params, optFns...)
	}
	return &s3.CompleteMultipartUploadOutput{}, nil
}

func (m *mockS3Client) AbortMultipartUpload(ctx context.Context, params *s3.AbortMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.AbortMultipartUploadOutput, error) {
	if m.abortMultipartUploadFunc != nil {
		return m.abortMultipartUploadFunc(ctx, params, optFns...)
	}
	return &s3.AbortMultipartUploadOutput{}, nil
}

func TestS3SinkPartSizeValidation(t *testing.T) {
	ctx := context.Background()
	client := &mockS3Client{}

	tests := []struct {
		name        string
		partSize    int64
		shouldError bool
	}{
		{"Valid 5MB", 5 * 1024 * 1024, false},
		{"Valid 32MB", 32 * 1024 * 1024, false},
		{"Invalid 4MB", 4 * 1024 * 1024, true},
		{"Invalid 0", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultS3Options()
			opts.PartSize = tt.partSize
			sink, err := NewS3Sink(ctx, client, "test-bucket", "test-key", opts)
			if tt.shouldError {
				if !errors.Is(err, ErrInvalidValue) {
					t.Errorf("Expected ErrInvalidValue for part size %d, got %v", tt.partSize, err)
				}
			} else {
				if err != nil {
					t.Errorf("Unexpected error for part size %d: %v", tt.partSize, err)
				}
				if sink != nil {
					_ = sink.Abort()
				}
			}
		})
	}
}

func TestS3SinkCreateMultipartUploadFailure(t *testing.T) {
	client := &mockS3Client{
		createMultipartUploadFunc: func(ctx context.Context, params *s3.CreateMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.CreateMultipartUploadOutput, error) {
			return nil, fmt.Errorf("access denied")
		},
	}
	sink, err := NewS3Sink(context.Background(), client, "test-bucket", "test-key")
	if err == nil {
		t.Error("Expected error when CreateMultipartUpload fails")
	}
	if sink != nil {
		t.Error("Sink should be nil when initialization fails")
	}
}

func TestS3SinkMultipartUploadFlow(t *testing.T) {
	uploadedParts := 0
	completeCalled := false

	client := &mockS3Client{
		uploadPartFunc: func(ctx context.Context, params *s3.UploadPartInput, optFns ...func(*s3.Options)) (*s3.UploadPartOutput, error) {
			uploadedParts++
			return &s3.UploadPartOutput{ETag: aws.String(fmt.Sprintf("etag-%d", uploadedParts))}, nil
		},
		completeMultipartUpload: func(ctx context.Context, params *s3.CompleteMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.CompleteMultipartUploadOutput, error) {
			completeCalled = true
			if len(params.MultipartUpload.Parts) != uploadedParts {
				t.Errorf("Expected %d parts in complete request, got %d", uploadedParts, len(params.MultipartUpload.Parts))
			}
			return &s3.CompleteMultipartUploadOutput{}, nil
		},
	}

	opts := DefaultS3Options()
	opts.PartSize = 5 * 1024 * 1024
	sink, err := NewS3Sink(context.Background(), client, "test-bucket", "test-key", opts)
	if err != nil {
		t.Fatalf("Failed to create sink: %v", err)
	}

	// 12MB in 1MB writes: two full parts plus a 2MB tail shipped on Close.
	totalBytes := 12 * 1024 * 1024
	chunk := bytes.Repeat([]byte("x"), 1024*1024)
	for written := 0; written < totalBytes; written += len(chunk) {
		if _, err := sink.Write(chunk); err != nil {
			t.Fatalf("Write failed at %d bytes: %v", written, err)
		}
	}
	if uploadedParts != 2 {
		t.Errorf("Expected 2 parts uploaded before close, got %d", uploadedParts)
	}

	if err := sink.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if uploadedParts != 3 {
		t.Errorf("Expected 3 parts total, got %d", uploadedParts)
	}
	if !completeCalled {
		t.Error("CompleteMultipartUpload should have been called")
	}
	if sink.TotalBytes() != int64(totalBytes) {
		t.Errorf("Expected %d total bytes, got %d", totalBytes, sink.TotalBytes())
	}
	if sink.PartCount() != 3 {
		t.Errorf("Expected 3 parts, got %d", sink.PartCount())
	}
}

func TestS3SinkUploadPartFailure(t *testing.T) {
	client := &mockS3Client{
		uploadPartFunc: func(ctx context.Context, params *s3.UploadPartInput, optFns ...func(*s3.Options)) (*s3.UploadPartOutput, error) {
			return nil, fmt.Errorf("network error")
		},
	}
	opts := DefaultS3Options()
	opts.PartSize = 5 * 1024 * 1024
	sink, err := NewS3Sink(context.Background(), client, "test-bucket", "test-key", opts)
	if err != nil {
		t.Fatalf("Failed to create sink: %v", err)
	}
	defer sink.Abort()

	if _, err := sink.Write(bytes.Repeat([]byte("x"), 6*1024*1024)); err == nil {
		t.Error("Expected error when UploadPart fails")
	}
}

func TestS3SinkCompleteFailureAborts(t *testing.T) {
	abortCalled := false
	client := &mockS3Client{
		completeMultipartUpload: func(ctx context.Context, params *s3.CompleteMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.CompleteMultipartUploadOutput, error) {
			return nil, fmt.Errorf("internal error")
		},
		abortMultipartUploadFunc: func(ctx context.Context, params *s3.AbortMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.AbortMultipartUploadOutput, error) {
			abortCalled = true
			return &s3.AbortMultipartUploadOutput{}, nil
		},
	}
	sink, err := NewS3Sink(context.Background(), client, "test-bucket", "test-key")
	if err != nil {
		t.Fatalf("Failed to create sink: %v", err)
	}
	if _, err := sink.Write([]byte("test data")); err != nil {
		t.Fatalf("Failed to write: %v", err)
	}
	if err := sink.Close(); err == nil {
		t.Error("Expected error when CompleteMultipartUpload fails")
	}
	if !abortCalled {
		t.Error("A failed completion must abort the upload")
	}
}

func TestS3SinkOptionsArePassed(t *testing.T) {
	var got *s3.CreateMultipartUploadInput
	client := &mockS3Client{
		createMultipartUploadFunc: func(ctx context.Context, params *s3.CreateMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.CreateMultipartUploadOutput, error) {
			got = params
			return &s3.CreateMultipartUploadOutput{UploadId: aws.String("id")}, nil
		},
	}

	opts := &S3Options{
		PartSize:             10 * 1024 * 1024,
		ContentType:          "application/custom",
		ACL:                  types.ObjectCannedACLPublicRead,
		StorageClass:         types.StorageClassGlacier,
		ServerSideEncryption: types.ServerSideEncryptionAes256,
		Metadata:             map[string]string{"origin": "unit-test"},
	}
	sink, err := NewS3Sink(context.Background(), client, "test-bucket", "test-key", opts)
	if err != nil {
		t.Fatalf("Failed to create sink: %v", err)
	}
	defer sink.Abort()

	if aws.ToString(got.ContentType) != "application/custom" {
		t.Errorf("ContentType not passed, got %v", got.ContentType)
	}
	if got.ACL != types.ObjectCannedACLPublicRead {
		t.Error("ACL not passed")
	}
	if got.StorageClass != types.StorageClassGlacier {
		t.Error("StorageClass not passed")
	}
	if got.ServerSideEncryption != types.ServerSideEncryptionAes256 {
		t.Error("ServerSideEncryption not passed")
	}
	if got.Metadata["origin"] != "unit-test" {
		t.Error("Metadata not passed")
	}
}

func TestWorkbookToS3Sink(t *testing.T) {
	uploaded := &bytes.Buffer{}
	client := &mockS3Client{
		uploadPartFunc: func(ctx context.Context, params *s3.UploadPartInput, optFns ...func(*s3.Options)) (*s3.UploadPartOutput, error) {
			data, _ := io.ReadAll(params.Body)
			uploaded.Write(data)
			return &s3.UploadPartOutput{ETag: aws.String("etag")}, nil
		},
	}
	sink, err := NewS3Sink(context.Background(), client, "test-bucket", "reports/out.xlsx")
	if err != nil {
		t.Fatalf("Failed to create sink: %v", err)
	}

	w, err := NewWorkbook(sink)
	if err != nil {
		t.Fatalf("Failed to create workbook: %v", err)
	}
	if err := w.AddSheet("Report"); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteRow([]string{"region", "total"}); err != nil {
		t.Fatal(err)
	}
	if _, err := w.Close(); err != nil {
		t.Fatalf("Failed to close workbook: %v", err)
	}

	// The uploaded bytes form a readable archive.
	data := uploaded.Bytes()
	if len(data) == 0 {
		t.Fatal("No data reached the sink")
	}
	if !bytes.HasPrefix(data, []byte{0x50, 0x4b, 0x03, 0x04}) {
		t.Error("Upload does not start with a local file header")
	}
}
